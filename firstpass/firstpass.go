// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package firstpass implements the assembler's first pass: it walks
// the expanded (".am") source once, validating syntax, collecting
// every label into a symbol table, and producing a partial encoding
// of the code and data segments that the second pass later resolves.
package firstpass

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"asm12/diag"
	"asm12/isa"
	"asm12/lex"
	"asm12/symtab"
)

// Word is one 12-bit machine word together with its relocation
// marking.
type Word struct {
	Value int
	ARE   isa.ARE
}

// State is everything the first pass produces and the second pass
// consumes.
type State struct {
	Symbols *symtab.Table
	Code    []Word // indexed by address - isa.ICStart
	Data    []Word // indexed by dc
	IC      int
	DC      int
}

type pass struct {
	classifier *lex.Classifier
	state      *State
	bag        *diag.Bag

	memoryOverflowReported bool
}

// Run scans src, an expanded ".am" source, and returns the resulting
// State. If any line reported an error the returned error is non-nil
// and the state must not be used by the second pass.
func Run(src io.Reader) (*State, error) {
	p := &pass{
		classifier: lex.NewClassifier(),
		state: &State{
			Symbols: symtab.New(),
			IC:      isa.ICStart,
		},
		bag: &diag.Bag{},
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		ln := lex.NewLine(lineNum, scanner.Text())
		if len(ln.Text) > isa.MaxLine {
			p.bag.Errorf(ln, "line exceeds %d characters", isa.MaxLine)
			continue
		}
		p.line(ln)
	}

	p.fixupDataAddresses()

	if p.bag.HasErrors() {
		return nil, p.bag.Err()
	}
	return p.state, nil
}

// RunString is a convenience wrapper over Run for in-memory sources.
func RunString(src string) (*State, error) {
	return Run(strings.NewReader(src))
}

func (p *pass) fixupDataAddresses() {
	finalIC := p.state.IC
	p.state.Symbols.ForEach(func(s *symtab.Symbol) {
		if s.Kind == symtab.Data {
			s.Address += finalIC
		}
	})
}

func (p *pass) hasMemory(additional int) bool {
	return p.state.IC+p.state.DC+additional <= isa.MaxMemory
}

func (p *pass) reportMemoryOverflow(ln lex.Line) {
	if p.memoryOverflowReported {
		return
	}
	p.memoryOverflowReported = true
	p.bag.Errorf(ln, "memory overflow")
}

func (p *pass) line(ln lex.Line) {
	ln = ln.StripComment()
	if ln.IsEmpty() {
		return
	}

	tok, rest := ln.GetToken()

	var label string
	hasLabel := false
	if strings.HasSuffix(tok, ":") {
		name := tok[:len(tok)-1]
		if !p.validLabel(ln, name) {
			return
		}
		if p.state.Symbols.Contains(name) {
			p.bag.Errorf(ln, "label %q already defined", name)
			return
		}
		label = name
		hasLabel = true
		tok, rest = rest.GetToken()
	}

	if strings.HasPrefix(tok, ".") {
		p.directive(ln, tok, rest, label, hasLabel)
		return
	}

	if lex.IsEmpty(tok) {
		return
	}

	p.instruction(ln, tok, rest, label, hasLabel)
}

func (p *pass) validLabel(ln lex.Line, name string) bool {
	if len(name) > isa.MaxLabel {
		p.bag.Errorf(ln, "label %q is too long", name)
		return false
	}
	if name == "" || !lex.IsLabelStart(name[0]) {
		p.bag.Errorf(ln, "label %q must start with a letter", name)
		return false
	}
	for i := 0; i < len(name); i++ {
		if !lex.IsLabelChar(name[i]) {
			p.bag.Errorf(ln, "label %q contains an invalid character", name)
			return false
		}
	}
	if _, reserved := p.classifier.Reserved(name); reserved {
		p.bag.Errorf(ln, "label %q is a reserved word", name)
		return false
	}
	return true
}

// validLabelSyntax is the shape check applied to a Direct/Relative
// operand, without reporting a diagnostic of its own (the caller
// reports a single "invalid operand" error for any shape failure).
func (p *pass) validLabelSyntax(name string) bool {
	if name == "" || len(name) > isa.MaxLabel || !lex.IsLabelStart(name[0]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !lex.IsLabelChar(name[i]) {
			return false
		}
	}
	_, reserved := p.classifier.Reserved(name)
	return !reserved
}

// addSymbol mirrors add_symbol's extern/local collision handling.
// It returns false if the line should be abandoned (the error, if
// any, has already been recorded).
func (p *pass) addSymbol(ln lex.Line, name string, address int, kind symtab.Kind) bool {
	if existing, ok := p.state.Symbols.Lookup(name); ok {
		if kind != symtab.External || existing.Kind != symtab.External {
			if kind == symtab.External || existing.Kind == symtab.External {
				p.bag.Errorf(ln, "symbol %q declared extern and defined locally", name)
			} else {
				p.bag.Errorf(ln, "symbol %q already defined", name)
			}
			return false
		}
		return true
	}
	p.state.Symbols.Insert(&symtab.Symbol{Name: name, Address: address, Kind: kind})
	return true
}

func (p *pass) directive(ln lex.Line, directive string, rest lex.Line, label string, hasLabel bool) {
	switch directive {
	case ".data":
		p.dataDirective(ln, rest, label, hasLabel)
	case ".string":
		p.stringDirective(ln, rest, label, hasLabel)
	case ".entry":
		// Resolved in the second pass.
	case ".extern":
		p.externDirective(ln, rest, hasLabel)
	default:
		p.bag.Errorf(ln, "unknown directive %q", directive)
	}
}

func (p *pass) dataDirective(ln lex.Line, rest lex.Line, label string, hasLabel bool) {
	if hasLabel {
		if !p.addSymbol(ln, label, p.state.DC, symtab.Data) {
			return
		}
	}

	if rest.IsEmpty() {
		p.bag.Errorf(ln, "%s: missing numbers", ".data")
		return
	}

	rest = rest.SkipWhitespace()
	if strings.HasPrefix(rest.Text, ",") {
		p.bag.Errorf(ln, "%s: illegal comma", ".data")
		return
	}

	for !rest.IsEmpty() {
		n, tail, ok := parseSignedInt(rest.Text)
		if !ok {
			p.bag.Errorf(ln, "%s: invalid number", ".data")
			return
		}
		rest = rest.With(tail)
		if n < isa.MinImmediate || n > isa.MaxImmediate {
			p.bag.Errorf(ln, "number %d out of range", n)
			return
		}
		if !p.hasMemory(1) {
			p.reportMemoryOverflow(ln)
			return
		}
		p.state.Data = append(p.state.Data, Word{Value: n, ARE: isa.Absolute})
		p.state.DC++

		rest = rest.SkipWhitespace()
		if strings.HasPrefix(rest.Text, ",") {
			rest = rest.With(rest.Text[1:]).SkipWhitespace()
			if strings.HasPrefix(rest.Text, ",") {
				p.bag.Errorf(ln, "%s: extra comma", ".data")
				return
			}
			if rest.IsEmpty() {
				p.bag.Errorf(ln, "%s: illegal comma", ".data")
				return
			}
		} else if !rest.IsEmpty() {
			p.bag.Errorf(ln, "%s: expected comma between numbers", ".data")
			return
		}
	}
}

func (p *pass) stringDirective(ln lex.Line, rest lex.Line, label string, hasLabel bool) {
	if hasLabel {
		if !p.addSymbol(ln, label, p.state.DC, symtab.Data) {
			return
		}
	}

	rest = rest.SkipWhitespace()
	if rest.IsEmpty() {
		p.bag.Errorf(ln, "%s: missing string", ".string")
		return
	}
	if rest.Text[0] != '"' {
		p.bag.Errorf(ln, "%s: invalid string", ".string")
		return
	}
	text := rest.Text[1:]

	i := 0
	for i < len(text) && text[i] != '"' {
		if !p.hasMemory(1) {
			p.reportMemoryOverflow(ln)
			return
		}
		p.state.Data = append(p.state.Data, Word{Value: int(text[i]), ARE: isa.Absolute})
		p.state.DC++
		i++
	}
	if i >= len(text) || text[i] != '"' {
		p.bag.Errorf(ln, "%s: invalid string", ".string")
		return
	}
	if !p.hasMemory(1) {
		p.reportMemoryOverflow(ln)
		return
	}
	p.state.Data = append(p.state.Data, Word{Value: 0, ARE: isa.Absolute})
	p.state.DC++
}

func (p *pass) externDirective(ln lex.Line, rest lex.Line, hasLabel bool) {
	if hasLabel {
		p.bag.Warnf(ln, "label before .extern is ignored")
	}

	name, rest := rest.GetToken()
	if name == "" {
		p.bag.Errorf(ln, "%s: invalid symbol", ".extern")
		return
	}
	if !p.validLabel(ln, name) {
		return
	}
	if !rest.IsEmpty() {
		p.bag.Errorf(ln, "extra text after %s", ".extern")
		return
	}

	p.addSymbol(ln, name, 0, symtab.External)
}

// operand is a parsed operand together with its inferred addressing
// mode.
type operand struct {
	text string
	mode isa.Mode
}

func (p *pass) instruction(ln lex.Line, mnemonic string, rest lex.Line, label string, hasLabel bool) {
	in, ok := isa.Lookup(mnemonic)
	if !ok {
		p.bag.Errorf(ln, "unknown instruction %q", mnemonic)
		return
	}

	if hasLabel {
		if !p.addSymbol(ln, label, p.state.IC, symtab.Code) {
			return
		}
	}

	var ops []operand
	switch in.Operands {
	case 0:
		if !rest.IsEmpty() {
			p.bag.Errorf(ln, "too many operands")
			return
		}
	case 1:
		tok, tail := rest.GetToken()
		if tok == "" {
			p.bag.Errorf(ln, "missing operand")
			return
		}
		tail = tail.SkipWhitespace()
		if strings.HasPrefix(tok, ",") || strings.HasSuffix(tok, ",") || strings.HasPrefix(tail.Text, ",") {
			p.bag.Errorf(ln, "illegal comma")
			return
		}
		if !tail.IsEmpty() {
			p.bag.Errorf(ln, "too many operands")
			return
		}
		ops = []operand{{text: tok, mode: isa.AddressingModeOf(tok)}}
	case 2:
		rest = rest.SkipWhitespace()
		idx := strings.IndexByte(rest.Text, ',')
		if idx < 0 {
			p.bag.Errorf(ln, "expected comma between operands")
			return
		}
		if idx == 0 {
			p.bag.Errorf(ln, "illegal comma")
			return
		}
		op1 := lex.TrimTrailingWhitespace(rest.Text[:idx])
		tail := rest.With(rest.Text[idx+1:]).SkipWhitespace()
		if strings.HasPrefix(tail.Text, ",") {
			p.bag.Errorf(ln, "extra comma")
			return
		}
		op2, tail := tail.GetToken()
		if op1 == "" || op2 == "" {
			p.bag.Errorf(ln, "missing operand")
			return
		}
		tail = tail.SkipWhitespace()
		if strings.HasSuffix(op2, ",") || strings.HasPrefix(tail.Text, ",") {
			p.bag.Errorf(ln, "illegal comma")
			return
		}
		if !tail.IsEmpty() {
			p.bag.Errorf(ln, "too many operands")
			return
		}
		ops = []operand{{text: op1, mode: isa.AddressingModeOf(op1)}, {text: op2, mode: isa.AddressingModeOf(op2)}}
	}

	masks := []byte{in.SrcMask, in.DestMask}
	if in.Operands == 1 {
		masks = []byte{in.DestMask}
	}
	for i, op := range ops {
		if !p.validAddressingModeShape(op) {
			p.bag.Errorf(ln, "invalid operand syntax %q", op.text)
			return
		}
		if op.mode == isa.Immediate {
			n, _ := strconv.Atoi(strings.TrimPrefix(op.text, "#"))
			if n < isa.MinImmediate || n > isa.MaxImmediate {
				p.bag.Errorf(ln, "number %d out of range", n)
				return
			}
		}
		if !isa.Allows(masks[i], op.mode) {
			which := "destination"
			if in.Operands == 2 && i == 0 {
				which = "source"
			}
			p.bag.Errorf(ln, "invalid addressing mode for %s operand", which)
			return
		}
	}

	length := 1 + in.Operands
	if !p.hasMemory(length) {
		p.reportMemoryOverflow(ln)
		return
	}

	var src, dest isa.Mode
	if in.Operands == 1 {
		dest = ops[0].mode
	} else if in.Operands == 2 {
		src, dest = ops[0].mode, ops[1].mode
	}

	idx := p.state.IC - isa.ICStart
	p.ensureCodeLen(idx + length)
	p.state.Code[idx] = Word{Value: int(isa.Opcode(in, src, dest)), ARE: isa.Absolute}
	for i, op := range ops {
		p.state.Code[idx+1+i] = encodeOperand(op)
	}

	p.state.IC += length
}

func (p *pass) ensureCodeLen(n int) {
	for len(p.state.Code) < n {
		p.state.Code = append(p.state.Code, Word{})
	}
}

func (p *pass) validAddressingModeShape(op operand) bool {
	switch op.mode {
	case isa.Immediate:
		lit := op.text[1:]
		if lit == "" {
			return false
		}
		if lit[0] == '+' || lit[0] == '-' {
			lit = lit[1:]
		}
		return lex.IsNumber(lit)
	case isa.Relative:
		return p.validLabelSyntax(op.text[1:])
	case isa.Register:
		_, ok := lex.IsRegister(op.text)
		return ok
	default: // Direct
		return p.validLabelSyntax(op.text)
	}
}

func encodeOperand(op operand) Word {
	switch op.mode {
	case isa.Immediate:
		n, _ := strconv.Atoi(strings.TrimPrefix(op.text, "#"))
		return Word{Value: n, ARE: isa.Absolute}
	case isa.Register:
		n, _ := lex.IsRegister(op.text)
		return Word{Value: int(isa.RegisterOperand(n)), ARE: isa.Absolute}
	default: // Direct, Relative: resolved in the second pass.
		return Word{Value: 0, ARE: isa.Absolute}
	}
}

// parseSignedInt parses a leading optionally-signed decimal integer
// from s, returning its value and the unconsumed remainder. ok is
// false if s does not begin with a valid integer.
func parseSignedInt(s string) (n int, rest string, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, s, false
	}
	v, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, s, false
	}
	return v, s[i:], true
}
