// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the fixed properties of the 12-bit target
// machine: its memory layout, its addressing modes, and its
// instruction table.
package isa

// Size limits imposed by the target machine and its assembler.
const (
	// ICStart is the address of the first instruction word.
	ICStart = 100
	// MaxMemory is the number of addressable 12-bit words, code and
	// data combined.
	MaxMemory = 4096
	// MaxLine is the longest source line the assembler will scan.
	MaxLine = 80
	// MaxLabel is the longest label name, excluding a trailing colon.
	MaxLabel = 31
	// MinImmediate and MaxImmediate bound a signed 12-bit literal.
	MinImmediate = -2048
	MaxImmediate = 2047
)

// ARE marks how a machine word's address should be treated by a
// linker: self-contained, relocatable within this unit, or resolved
// externally.
type ARE byte

const (
	Absolute ARE = iota
	Relocatable
	External
)

func (a ARE) String() string {
	switch a {
	case Absolute:
		return "A"
	case Relocatable:
		return "R"
	case External:
		return "E"
	default:
		return "?"
	}
}

// Mode identifies one of the four operand addressing modes.
type Mode byte

const (
	Immediate Mode = iota
	Direct
	Relative
	Register
)

// modeMask turns a Mode into its bit within an addressing-mode mask.
func modeMask(m Mode) byte { return 1 << m }

// Allows reports whether mask permits the given addressing mode.
func Allows(mask byte, m Mode) bool { return mask&modeMask(m) != 0 }

// Instruction is one row of the static instruction table: a mnemonic
// and the bit patterns and operand shape the first pass needs to
// encode it.
type Instruction struct {
	Mnemonic  string
	Opcode    byte
	Funct     byte
	Operands  int
	SrcMask   byte
	DestMask  byte
}

// maskOf ORs together the mode bits named by ms.
func maskOf(ms ...Mode) byte {
	var m byte
	for _, x := range ms {
		m |= modeMask(x)
	}
	return m
}

// instructions is the complete, immutable 12-bit instruction table.
// Sixteen entries is small enough that a linear scan beats any
// lookup structure's setup cost, matching the original C
// implementation's get_instruction_info.
var instructions = []Instruction{
	{"mov", 0, 0, 2, maskOf(Immediate, Direct, Register), maskOf(Direct, Register)},
	{"cmp", 1, 0, 2, maskOf(Immediate, Direct, Register), maskOf(Immediate, Direct, Register)},
	{"add", 2, 10, 2, maskOf(Immediate, Direct, Register), maskOf(Direct, Register)},
	{"sub", 2, 11, 2, maskOf(Immediate, Direct, Register), maskOf(Direct, Register)},
	{"lea", 4, 0, 2, maskOf(Direct), maskOf(Direct, Register)},
	{"clr", 5, 10, 1, 0, maskOf(Direct, Register)},
	{"not", 5, 11, 1, 0, maskOf(Direct, Register)},
	{"inc", 5, 12, 1, 0, maskOf(Direct, Register)},
	{"dec", 5, 13, 1, 0, maskOf(Direct, Register)},
	{"jmp", 9, 10, 1, 0, maskOf(Direct, Relative)},
	{"bne", 9, 11, 1, 0, maskOf(Direct, Relative)},
	{"jsr", 9, 12, 1, 0, maskOf(Direct, Relative)},
	{"red", 12, 0, 1, 0, maskOf(Direct, Register)},
	{"prn", 13, 0, 1, 0, maskOf(Immediate, Direct, Register)},
	{"rts", 14, 0, 0, 0, 0},
	{"stop", 15, 0, 0, 0, 0},
}

// Lookup returns the Instruction for mnemonic and true if it exists.
func Lookup(mnemonic string) (Instruction, bool) {
	for _, in := range instructions {
		if in.Mnemonic == mnemonic {
			return in, true
		}
	}
	return Instruction{}, false
}

// IsMnemonic reports whether name names a known instruction.
func IsMnemonic(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// Opcode encodes the first word of an instruction: opcode, funct, and
// the addressing modes chosen for its source and destination
// operands.
func Opcode(in Instruction, src, dest Mode) uint16 {
	return uint16(in.Opcode)<<8 | uint16(in.Funct)<<4 | uint16(src)<<2 | uint16(dest)
}

// RegisterOperand returns the one-hot encoding of register n (0-7).
func RegisterOperand(n int) uint16 { return 1 << uint(n) }

// AddressingModeOf infers an operand's addressing mode from its
// leading character, shared by both assembly passes so a symbol's
// mode is never computed two different ways.
func AddressingModeOf(operand string) Mode {
	switch {
	case len(operand) > 0 && operand[0] == '#':
		return Immediate
	case len(operand) > 0 && operand[0] == '%':
		return Relative
	case len(operand) == 2 && operand[0] == 'r' && operand[1] >= '0' && operand[1] <= '7':
		return Register
	default:
		return Direct
	}
}
