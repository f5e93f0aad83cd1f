// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lex

// Kind classifies a reserved word recognized by the assembler.
type Kind byte

const (
	KindInstruction Kind = iota
	KindRegister
	KindDirective
)

var instructionNames = []string{
	"mov", "cmp", "add", "sub", "lea", "clr", "not", "inc", "dec",
	"jmp", "bne", "jsr", "red", "prn", "rts", "stop",
}

var registerNames = []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}

var directiveNames = []string{".data", ".string", ".entry", ".extern", "mcro", "mcroend"}

// Classifier recognizes the assembler's reserved words: instruction
// mnemonics, register names, and directives. It is built once and
// shared by every pass.
//
// This is a plain map, not a prefixtree.Tree like the teacher's
// abbreviated settings/command lookups (host/settings.go,
// debugger/command.go): those resolve a user-typed unambiguous
// prefix on purpose, but a reserved word here must never be
// recognized from an abbreviation of it — a label or macro name that
// merely prefixes "inc" or "mcroend" is a distinct identifier, not a
// collision. A prefix tree would wrongly treat "in" as the reserved
// word it is the unique prefix of.
type Classifier struct {
	reserved map[string]Kind
}

// NewClassifier builds the fixed reserved-word classifier.
func NewClassifier() *Classifier {
	c := &Classifier{reserved: make(map[string]Kind, len(instructionNames)+len(registerNames)+len(directiveNames))}
	for _, n := range instructionNames {
		c.reserved[n] = KindInstruction
	}
	for _, n := range registerNames {
		c.reserved[n] = KindRegister
	}
	for _, n := range directiveNames {
		c.reserved[n] = KindDirective
	}
	return c
}

// Reserved reports whether name exactly matches a reserved word and,
// if so, which kind it is.
func (c *Classifier) Reserved(name string) (Kind, bool) {
	k, ok := c.reserved[name]
	return k, ok
}

// IsRegister parses a register operand of the form "rN" where N is a
// single decimal digit, returning its index. It does not check the
// 0..7 range; isa.AddressingModeOf only infers Register for r0-r7.
func IsRegister(s string) (n int, ok bool) {
	if len(s) != 2 || s[0] != 'r' || !decimal(s[1]) {
		return 0, false
	}
	n = int(s[1] - '0')
	return n, true
}
