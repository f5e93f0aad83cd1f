package firstpass

import (
	"testing"

	"asm12/isa"
	"asm12/symtab"
)

func wordAt(t *testing.T, st *State, addr int) Word {
	t.Helper()
	idx := addr - isa.ICStart
	if idx < 0 || idx >= len(st.Code) {
		t.Fatalf("address %d out of range (code len %d)", addr, len(st.Code))
	}
	return st.Code[idx]
}

func TestStopOnly(t *testing.T) {
	st, err := RunString("stop\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := wordAt(t, st, isa.ICStart)
	if w.Value != 0x0F00 || w.ARE != isa.Absolute {
		t.Errorf("got %+v", w)
	}
}

func TestMovRegisterToRegister(t *testing.T) {
	st, err := RunString("mov r3, r5\nstop\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := wordAt(t, st, isa.ICStart)
	if first.Value != 0x0F {
		t.Errorf("opcode word: got %#x want %#x", first.Value, 0x0F)
	}
	src := wordAt(t, st, isa.ICStart+1)
	dst := wordAt(t, st, isa.ICStart+2)
	if src.Value != 1<<3 || dst.Value != 1<<5 {
		t.Errorf("operands: got src=%d dst=%d", src.Value, dst.Value)
	}
}

func TestDataSymbolFixup(t *testing.T) {
	st, err := RunString("X: .data 1, -2, 2047\nstop\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, ok := st.Symbols.Lookup("X")
	if !ok {
		t.Fatal("X not found")
	}
	if sym.Kind != symtab.Data {
		t.Errorf("X kind = %v, want Data", sym.Kind)
	}
	wantAddr := isa.ICStart + 1 // one instruction word emitted before end of pass
	if sym.Address != wantAddr {
		t.Errorf("X address = %d, want %d", sym.Address, wantAddr)
	}
	if len(st.Data) != 3 || st.Data[0].Value != 1 || st.Data[1].Value != -2 || st.Data[2].Value != 2047 {
		t.Errorf("data = %+v", st.Data)
	}
}

func TestExternSymbol(t *testing.T) {
	st, err := RunString(".extern K\njmp K\nstop\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sym, ok := st.Symbols.Lookup("K")
	if !ok || sym.Kind != symtab.External || sym.Address != 0 {
		t.Errorf("K symbol: %+v ok=%v", sym, ok)
	}
	placeholder := wordAt(t, st, isa.ICStart+1)
	if placeholder.Value != 0 {
		t.Errorf("placeholder for external operand should be 0, got %d", placeholder.Value)
	}
}

func TestStringDirective(t *testing.T) {
	st, err := RunString("A: .string \"ab\"\nstop\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Data) != 3 || st.Data[0].Value != 'a' || st.Data[1].Value != 'b' || st.Data[2].Value != 0 {
		t.Errorf("data = %+v", st.Data)
	}
}

func TestUnknownDirectiveIsError(t *testing.T) {
	if _, err := RunString(".bogus 1\n"); err == nil {
		t.Fatal("expected error for unknown directive")
	}
}

func TestUnknownInstructionIsError(t *testing.T) {
	if _, err := RunString("frobnicate r1\n"); err == nil {
		t.Fatal("expected error for unknown instruction")
	}
}

func TestImmediateOutOfRangeIsError(t *testing.T) {
	if _, err := RunString("mov #5000, r1\n"); err == nil {
		t.Fatal("expected error for out-of-range immediate")
	}
}

func TestDuplicateLabelIsError(t *testing.T) {
	if _, err := RunString("X: .data 1\nX: .data 2\n"); err == nil {
		t.Fatal("expected error for duplicate label")
	}
}

func TestExternAndLocalCollision(t *testing.T) {
	if _, err := RunString(".extern X\nX: .data 1\n"); err == nil {
		t.Fatal("expected error: extern symbol also defined locally")
	}
}

func TestDataCommaGrammar(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"leading comma", "X: .data , 1\n"},
		{"trailing comma", "X: .data 1,\n"},
		{"double comma", "X: .data 1, , 2\n"},
		{"missing comma", "X: .data 1 2\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := RunString(c.source); err == nil {
				t.Fatalf("%s: expected error, got none", c.name)
			}
		})
	}
}

func TestOperandCommaGrammar(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"leading comma", "mov , r1\n"},
		{"trailing comma", "mov r1,\n"},
		{"double comma", "mov r1, , r2\n"},
		{"missing comma", "mov r1 r2\n"},
		{"illegal comma on one-operand instruction", "inc ,r1\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := RunString(c.source); err == nil {
				t.Fatalf("%s: expected error, got none", c.name)
			}
		})
	}
}

func TestAddressingModeMaskViolations(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"lea forbids immediate source", "lea #5, r1\n"},
		{"lea forbids register source", "lea r2, r1\n"},
		{"jmp forbids register operand", "jmp r1\n"},
		{"jmp forbids immediate operand", "jmp #5\n"},
		{"prn allows immediate (control)", "prn #5\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := RunString(c.source)
			wantErr := c.name != "prn allows immediate (control)"
			if wantErr && err == nil {
				t.Fatalf("%s: expected error, got none", c.name)
			}
			if !wantErr && err != nil {
				t.Fatalf("%s: unexpected error: %v", c.name, err)
			}
		})
	}
}
