// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lex provides the low-level string scanning primitives
// shared by the macro pre-processor and the two assembly passes.
package lex

// SkipWhitespace returns s with any leading spaces or tabs removed.
func SkipWhitespace(s string) string {
	i := 0
	for i < len(s) && whitespace(s[i]) {
		i++
	}
	return s[i:]
}

// GetToken skips leading whitespace, then returns the next maximal
// run of non-whitespace bytes as tok, along with the unconsumed
// remainder of s.
func GetToken(s string) (tok, rest string) {
	s = SkipWhitespace(s)
	i := 0
	for i < len(s) && wordChar(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// IsNumber reports whether s is a non-empty run of decimal digits.
func IsNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !decimal(s[i]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether s contains nothing but whitespace.
func IsEmpty(s string) bool {
	return SkipWhitespace(s) == ""
}

// TrimTrailingWhitespace returns s with trailing spaces and tabs
// removed.
func TrimTrailingWhitespace(s string) string {
	i := len(s)
	for i > 0 && whitespace(s[i-1]) {
		i--
	}
	return s[:i]
}

// StripComment returns the portion of s before the first ';', or s
// unchanged if it has none.
func StripComment(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			return s[:i]
		}
	}
	return s
}

func whitespace(c byte) bool { return c == ' ' || c == '\t' }
func wordChar(c byte) bool   { return !whitespace(c) }
func alpha(c byte) bool      { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func decimal(c byte) bool    { return c >= '0' && c <= '9' }
func alnum(c byte) bool      { return alpha(c) || decimal(c) }

// IsLabelStart reports whether c may begin a label.
func IsLabelStart(c byte) bool { return alpha(c) }

// IsLabelChar reports whether c may appear anywhere in a label.
func IsLabelChar(c byte) bool { return alnum(c) }

// Line is a source line's remaining text, tagged with the 1-based
// line number it came from. Every substring derived from a Line keeps
// that same number, the way fstring keeps row fixed across consume
// and trunc: a diagnostic is always reported from the Line in hand,
// never from a line counter threaded separately alongside it.
type Line struct {
	Num  int
	Text string
}

// NewLine tags text with line number num.
func NewLine(num int, text string) Line { return Line{Num: num, Text: text} }

// With returns a Line with the same number as l but different text,
// for scan steps that compute a new remainder from l.Text directly.
func (l Line) With(text string) Line { return Line{Num: l.Num, Text: text} }

func (l Line) IsEmpty() bool { return IsEmpty(l.Text) }

func (l Line) StripComment() Line { return l.With(StripComment(l.Text)) }

func (l Line) SkipWhitespace() Line { return l.With(SkipWhitespace(l.Text)) }

func (l Line) TrimTrailingWhitespace() Line { return l.With(TrimTrailingWhitespace(l.Text)) }

// GetToken returns the next token of l.Text and the remaining Line,
// both tagged with l's line number.
func (l Line) GetToken() (tok string, rest Line) {
	tok, r := GetToken(l.Text)
	return tok, l.With(r)
}
