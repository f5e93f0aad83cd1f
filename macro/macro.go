// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package macro implements the assembler's macro pre-processor: a
// single pass over a ".as" source file that validates and expands
// "mcro"/"mcroend" blocks into flat ".am" source text, returned in
// memory (no ".am" file is written).
package macro

import (
	"bufio"
	"io"
	"strings"

	"asm12/diag"
	"asm12/lex"
)

// Macro is a named, verbatim block of source lines.
type Macro struct {
	Name  string
	Lines []string
}

// Result is the output of a successful pre-processing pass.
type Result struct {
	// Expanded is the ".am" source: every macro invocation replaced
	// by its recorded body, "mcro"/"mcroend" lines removed, every
	// other line copied verbatim.
	Expanded string
}

// Expand reads src, a ".as" source, and produces its expansion.
// Unlike the two assembly passes, it stops at the first validation
// error it finds: a macro error is always fatal to the translation
// unit and no partial ".am" is usable, so the returned aggregate
// error carries only that first problem, matching the original
// tool's "first failure aborts pre-assembly" contract.
//
// The macro name table is a plain map, like the one Classifier uses,
// not a prefixtree: a macro invocation must name a macro exactly, the same way a
// label may never collide with an abbreviation of one (spec: "the
// first token equals a known macro name"). prefixtree resolves
// unambiguous prefixes, which is right for the teacher's interactive
// command abbreviations but wrong here — it would let a label or
// invocation that merely prefixes a longer macro name silently match
// it.
func Expand(src io.Reader) (*Result, error) {
	var bag diag.Bag

	macros := make(map[string]*Macro)
	labels := make(map[string]struct{})
	classifier := lex.NewClassifier()

	var out strings.Builder
	var current *Macro
	inMacro := false
	var macroStart lex.Line
	lineNum := 0

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	for scanner.Scan() {
		lineNum++
		ln := lex.NewLine(lineNum, scanner.Text())

		tok, rest := ln.GetToken()

		if tok != "" && strings.HasSuffix(tok, ":") {
			label := tok[:len(tok)-1]
			if _, exists := macros[label]; exists {
				bag.Errorf(ln, "label %q conflicts with a macro name", label)
				return nil, bag.Err()
			}
			labels[label] = struct{}{}
		}

		switch {
		case tok == "mcro":
			name, afterName := rest.GetToken()
			if name == "" {
				bag.Errorf(ln, "macro declaration has no name")
				return nil, bag.Err()
			}
			if _, reserved := classifier.Reserved(name); reserved {
				bag.Errorf(ln, "macro name %q is a reserved word", name)
				return nil, bag.Err()
			}
			if extra, _ := afterName.GetToken(); extra != "" {
				bag.Errorf(ln, "extra text after macro name")
				return nil, bag.Err()
			}
			if _, exists := macros[name]; exists {
				bag.Errorf(ln, "macro %q already defined", name)
				return nil, bag.Err()
			}
			if _, isLabel := labels[name]; isLabel {
				bag.Errorf(ln, "macro name %q conflicts with a label", name)
				return nil, bag.Err()
			}
			current = &Macro{Name: name}
			macros[name] = current
			inMacro = true
			macroStart = ln

		case tok == "mcroend":
			if !inMacro {
				bag.Errorf(ln, "mcroend without matching mcro")
				return nil, bag.Err()
			}
			if extra, _ := rest.GetToken(); extra != "" {
				bag.Errorf(ln, "extra text after mcroend")
				return nil, bag.Err()
			}
			inMacro = false
			current = nil

		case inMacro:
			current.Lines = append(current.Lines, ln.Text)

		default:
			if m, exists := macros[tok]; exists {
				for _, l := range m.Lines {
					out.WriteString(l)
					out.WriteByte('\n')
				}
			} else {
				out.WriteString(ln.Text)
				out.WriteByte('\n')
			}
		}
	}
	if err := scanner.Err(); err != nil {
		bag.FileErrorf("", "%v", err)
		return nil, bag.Err()
	}

	if inMacro {
		bag.Errorf(macroStart, "mcro without matching mcroend")
		return nil, bag.Err()
	}

	return &Result{Expanded: out.String()}, nil
}

// ExpandString is a convenience wrapper over Expand for callers (and
// tests) that already hold the source in memory.
func ExpandString(src string) (*Result, error) {
	return Expand(strings.NewReader(src))
}
