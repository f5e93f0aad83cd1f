package macro

import "testing"

func TestExpandInvocation(t *testing.T) {
	src := "mcro M\ninc r1\nmcroend\nM\nstop\n"
	res, err := ExpandString(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "inc r1\nstop\n"
	if res.Expanded != want {
		t.Errorf("got %q want %q", res.Expanded, want)
	}
}

func TestExpandVerbatimWhenNoMacro(t *testing.T) {
	src := "mov r1, r2\nstop\n"
	res, err := ExpandString(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Expanded != src {
		t.Errorf("got %q want %q", res.Expanded, src)
	}
}

func TestUnclosedMacroIsError(t *testing.T) {
	src := "mcro M\ninc r1\n"
	if _, err := ExpandString(src); err == nil {
		t.Fatal("expected error for unclosed macro")
	}
}

func TestMcroendWithoutMcroIsError(t *testing.T) {
	src := "mcroend\n"
	if _, err := ExpandString(src); err == nil {
		t.Fatal("expected error for mcroend without mcro")
	}
}

func TestDuplicateMacroIsError(t *testing.T) {
	src := "mcro M\nstop\nmcroend\nmcro M\nstop\nmcroend\n"
	if _, err := ExpandString(src); err == nil {
		t.Fatal("expected error for duplicate macro definition")
	}
}

func TestReservedMacroNameIsError(t *testing.T) {
	src := "mcro mov\nstop\nmcroend\n"
	if _, err := ExpandString(src); err == nil {
		t.Fatal("expected error for reserved macro name")
	}
}

func TestLabelMacroCollision(t *testing.T) {
	src := "mcro M\nstop\nmcroend\nM: stop\n"
	if _, err := ExpandString(src); err == nil {
		t.Fatal("expected error: label collides with macro name")
	}
}

func TestInvocationRequiresExactName(t *testing.T) {
	// "Mx" merely begins with the macro name "M" and must be copied
	// verbatim, not expanded as an invocation of "M" — macro lookup is
	// exact-match, not prefix-matching.
	src := "mcro M\ninc r1\nmcroend\nMx\nstop\n"
	res, err := ExpandString(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Mx\nstop\n"
	if res.Expanded != want {
		t.Errorf("got %q want %q: \"Mx\" must not be treated as an invocation of macro \"M\"", res.Expanded, want)
	}
}
