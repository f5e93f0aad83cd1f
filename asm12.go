// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm12 assembles programs written for a small educational
// 12-bit machine. It drives the three-stage pipeline — macro
// pre-expansion, first pass, second pass — over a translation unit
// and returns the data an output writer needs to serialize the
// resulting object image.
package asm12

import (
	"fmt"
	"io"
	"os"
	"strings"

	"asm12/diag"
	"asm12/firstpass"
	"asm12/isa"
	"asm12/macro"
	"asm12/secondpass"
	"asm12/symtab"
)

// CodeWord is one word of the final code image.
type CodeWord struct {
	Address int
	Value   int
	ARE     isa.ARE
}

// DataWord is one word of the final data image.
type DataWord struct {
	Value int
	ARE   isa.ARE
}

// EntryRecord names a symbol exported from this translation unit.
type EntryRecord struct {
	Name    string
	Address int
}

// ExternalRecord names one use of an externally-defined symbol.
type ExternalRecord struct {
	Name    string
	Address int
}

// Result is everything an output writer needs to serialize a
// successfully assembled translation unit.
type Result struct {
	Code      []CodeWord
	Data      []DataWord
	Entries   []EntryRecord
	Externals []ExternalRecord
	IC        int
	DC        int
}

type options struct {
	trace  io.Writer
	source io.Reader
}

// Option configures a call to Assemble.
type Option func(*options)

// WithTrace enables a verbose trace of each pipeline stage, written
// to w, the way the teacher package's verbose assembler logs to an
// injected writer instead of directly to stdout.
func WithTrace(w io.Writer) Option {
	return func(o *options) { o.trace = w }
}

// WithSource supplies the ".as" source from r instead of opening
// base+".as" from disk. Tests use this to assemble in-memory strings.
func WithSource(r io.Reader) Option {
	return func(o *options) { o.source = r }
}

// Assemble runs the full pipeline for the translation unit named
// base: macro pre-expansion, first pass, second pass. It returns a
// non-nil error, and a nil *Result, the moment any stage fails.
func Assemble(base string, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	src := o.source
	if src == nil {
		path := base + ".as"
		f, err := os.Open(path)
		if err != nil {
			var bag diag.Bag
			bag.FileErrorf(path, "cannot open file")
			return nil, bag.Err()
		}
		defer f.Close()
		src = f
	}

	trace(o.trace, "Pre-processing macros")
	expanded, err := macro.Expand(src)
	if err != nil {
		return nil, err
	}

	trace(o.trace, "First pass")
	state, err := firstpass.RunString(expanded.Expanded)
	if err != nil {
		return nil, err
	}

	trace(o.trace, "Second pass")
	// Second pass only ever runs once the first pass reports no
	// errors; it is never handed a State that might carry unresolved
	// diagnostics.
	second, err := secondpass.RunString(expanded.Expanded, state)
	if err != nil {
		return nil, err
	}

	return buildResult(state, second), nil
}

func buildResult(state *firstpass.State, second *secondpass.Result) *Result {
	r := &Result{IC: state.IC, DC: state.DC}

	r.Code = make([]CodeWord, len(state.Code))
	for i, w := range state.Code {
		r.Code[i] = CodeWord{Address: isa.ICStart + i, Value: w.Value, ARE: w.ARE}
	}

	r.Data = make([]DataWord, len(state.Data))
	for i, w := range state.Data {
		r.Data[i] = DataWord{Value: w.Value, ARE: w.ARE}
	}

	for _, ref := range second.Externals {
		r.Externals = append(r.Externals, ExternalRecord{Name: ref.Name, Address: ref.Address})
	}

	state.Symbols.ForEach(func(s *symtab.Symbol) {
		if s.IsEntry {
			r.Entries = append(r.Entries, EntryRecord{Name: s.Name, Address: s.Address})
		}
	})

	return r
}

func trace(w io.Writer, section string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "=== %s ===\n", strings.TrimSpace(section))
}
