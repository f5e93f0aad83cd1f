// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package secondpass implements the assembler's second pass: it
// re-scans the expanded source the first pass already validated,
// resolving every Direct and Relative operand against the completed
// symbol table, marking .entry symbols, and recording external
// references in emission order.
//
// Run must only be called with a State produced by a first pass that
// returned a nil error; a State carrying unresolved errors is not a
// runtime case this package guards against, matching the contract of
// the tool it is grounded on.
package secondpass

import (
	"bufio"
	"io"
	"strings"

	"asm12/diag"
	"asm12/firstpass"
	"asm12/isa"
	"asm12/lex"
	"asm12/symtab"
)

// ExternalRef is one use of an external symbol in direct addressing.
type ExternalRef struct {
	Name    string
	Address int
}

// Result is the output of a successful second pass.
type Result struct {
	Externals []ExternalRef
}

// Run resolves the symbols left unresolved by the first pass, writing
// final values directly into st.Code.
func Run(src io.Reader, st *firstpass.State) (*Result, error) {
	var bag diag.Bag
	result := &Result{}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	lineNum := 0
	codeIndex := 0
	for scanner.Scan() {
		lineNum++
		ln := lex.NewLine(lineNum, scanner.Text()).StripComment()
		if ln.IsEmpty() {
			continue
		}

		tok, rest := ln.GetToken()
		if strings.HasSuffix(tok, ":") {
			tok, rest = rest.GetToken()
		}

		switch {
		case tok == ".entry":
			name, _ := rest.GetToken()
			if name == "" {
				bag.Errorf(ln, "%s: invalid symbol", ".entry")
				continue
			}
			sym, ok := st.Symbols.Lookup(name)
			if !ok {
				bag.Errorf(ln, "symbol %q in .entry not defined", name)
				continue
			}
			if sym.Kind == symtab.External {
				bag.Errorf(ln, "symbol %q in .entry is extern", name)
				continue
			}
			sym.IsEntry = true

		case strings.HasPrefix(tok, "."):
			// .data / .string / .extern carry no operand words to resolve here.

		case tok != "":
			in, ok := isa.Lookup(tok)
			if !ok {
				continue // first pass already reported this line
			}
			codeIndex++ // opcode word

			for _, op := range splitOperands(rest, in.Operands) {
				resolveOperand(&bag, ln, st, op, codeIndex, result)
				codeIndex++
			}
		}
	}

	if bag.HasErrors() {
		return nil, bag.Err()
	}
	return result, nil
}

// resolveOperand patches st.Code[codeIndex] in place for a Direct or
// Relative operand; Immediate and Register operands were already
// fully encoded by the first pass and are left untouched. It returns
// false if the line has already been reported as an error (the
// caller still advances codeIndex so later operands on the same
// instruction stay aligned).
func resolveOperand(bag *diag.Bag, ln lex.Line, st *firstpass.State, op string, codeIndex int, result *Result) bool {
	mode := isa.AddressingModeOf(op)
	if mode != isa.Direct && mode != isa.Relative {
		return true
	}

	name := op
	if mode == isa.Relative {
		name = op[1:]
	}

	sym, ok := st.Symbols.Lookup(name)
	if !ok {
		bag.Errorf(ln, "symbol %q not found", name)
		return false
	}

	if mode == isa.Relative {
		if sym.Kind == symtab.External {
			bag.Errorf(ln, "relative addressing to external symbol %q", name)
			return false
		}
		st.Code[codeIndex] = firstpass.Word{
			Value: sym.Address - (isa.ICStart + codeIndex),
			ARE:   isa.Absolute,
		}
		return true
	}

	// Direct.
	if sym.Kind == symtab.External {
		st.Code[codeIndex] = firstpass.Word{Value: 0, ARE: isa.External}
		result.Externals = append(result.Externals, ExternalRef{Name: name, Address: isa.ICStart + codeIndex})
		return true
	}
	st.Code[codeIndex] = firstpass.Word{Value: sym.Address, ARE: isa.Relocatable}
	return true
}

// RunString is a convenience wrapper over Run for in-memory sources.
func RunString(src string, st *firstpass.State) (*Result, error) {
	return Run(strings.NewReader(src), st)
}

// splitOperands re-derives the operand texts for an instruction that
// the first pass has already validated, so no grammar error can occur
// here.
func splitOperands(rest lex.Line, count int) []string {
	rest = rest.SkipWhitespace()
	switch count {
	case 0:
		return nil
	case 1:
		tok, _ := rest.GetToken()
		return []string{tok}
	case 2:
		idx := strings.IndexByte(rest.Text, ',')
		if idx < 0 {
			return nil
		}
		op1 := lex.TrimTrailingWhitespace(rest.Text[:idx])
		tail := rest.With(rest.Text[idx+1:]).SkipWhitespace()
		op2, _ := tail.GetToken()
		return []string{op1, op2}
	}
	return nil
}
