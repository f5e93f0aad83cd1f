// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diag accumulates the per-line diagnostics produced by the
// macro pre-processor and the two assembly passes, and renders them
// the way the assembler this package is modeled on does.
package diag

import (
	"fmt"
	"strings"

	"asm12/lex"
)

// Severity distinguishes a fatal per-line problem from an advisory
// one; only Error diagnostics cause a pass to fail.
type Severity byte

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Warning"
	}
	return "Error"
}

// Diagnostic is one reported problem, tied to the source line it was
// found on. Line is 0 for file-level problems (e.g. a file that could
// not be opened), in which case Path is set instead.
type Diagnostic struct {
	Severity Severity
	Line     int
	Path     string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s '%s'", d.Severity, d.Message, d.Path)
	}
	return fmt.Sprintf("%s on line %d: %s", d.Severity, d.Line, d.Message)
}

// Bag collects diagnostics for a single pass over a single file.
type Bag struct {
	items []Diagnostic
}

// Errorf records a fatal diagnostic at line's position. Taking a
// lex.Line rather than a bare line number means the position always
// comes from the same cursor the caller scanned with, never from a
// separately threaded counter that could drift out of sync with it.
func (b *Bag) Errorf(line lex.Line, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Severity: Error, Line: line.Num, Message: fmt.Sprintf(format, args...)})
}

// Warnf records an advisory diagnostic at line's position.
func (b *Bag) Warnf(line lex.Line, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Severity: Warning, Line: line.Num, Message: fmt.Sprintf(format, args...)})
}

// FileErrorf records a file-level diagnostic, not tied to a line.
func (b *Bag) FileErrorf(path, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Severity: Error, Path: path, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any Error-severity diagnostic was
// recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Items returns every diagnostic recorded so far, in report order.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Err returns nil if no Error-severity diagnostic was recorded, or an
// aggregate *Err wrapping all diagnostics otherwise.
func (b *Bag) Err() error {
	if !b.HasErrors() {
		return nil
	}
	return &Err{Diagnostics: append([]Diagnostic(nil), b.items...)}
}

// Err is an aggregate error over every diagnostic a pass produced.
type Err struct {
	Diagnostics []Diagnostic
}

func (e *Err) Error() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}
