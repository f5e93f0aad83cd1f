package diag

import (
	"testing"

	"asm12/lex"
)

func TestBagHasErrors(t *testing.T) {
	var b Bag
	if b.HasErrors() {
		t.Error("empty bag should have no errors")
	}

	b.Warnf(lex.NewLine(3, ""), "label before .extern is ignored")
	if b.HasErrors() {
		t.Error("a warning alone should not count as an error")
	}

	b.Errorf(lex.NewLine(5, ""), "unknown directive %q", ".foo")
	if !b.HasErrors() {
		t.Error("expected HasErrors after Errorf")
	}

	err := b.Err()
	if err == nil {
		t.Fatal("expected non-nil error")
	}
	if got := err.Error(); got == "" {
		t.Error("expected non-empty message")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: Error, Line: 7, Message: "boom"}
	if got, want := d.String(), "Error on line 7: boom"; got != want {
		t.Errorf("got %q want %q", got, want)
	}

	f := Diagnostic{Severity: Error, Path: "prog.as", Message: "cannot open file"}
	if got, want := f.String(), "Error: cannot open file 'prog.as'"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}
