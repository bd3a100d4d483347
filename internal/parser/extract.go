// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parser turns pattern strings into typed expression tokens.
//
// A pattern is literal text interleaved with {{...}} expressions. The
// extractor handles nested braces (an expression may quote a sub-pattern
// containing {{ }}) and the escapes \{{ and \}}, which stay literal.
package parser

import "strings"

// Segment is one run of a split pattern: either literal text (already
// unescaped) or the inner body of a {{...}} expression.
type Segment struct {
	Text string
	Expr bool
}

// Extract splits a pattern into literal runs and expression bodies.
// An unclosed {{ is lenient: it is kept as literal text.
func Extract(pattern string) []Segment {
	var segs []Segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(pattern) {
		// Escaped braces stay out of extraction and are unescaped here.
		if pattern[i] == '\\' && i+2 < len(pattern) &&
			(pattern[i+1:i+3] == "{{" || pattern[i+1:i+3] == "}}") {
			lit.WriteString(pattern[i+1 : i+3])
			i += 3
			continue
		}
		if strings.HasPrefix(pattern[i:], "{{") {
			end := matchBraces(pattern, i)
			if end < 0 {
				// Unclosed expression: treat the marker as literal.
				lit.WriteString("{{")
				i += 2
				continue
			}
			flush()
			segs = append(segs, Segment{Text: pattern[i+2 : end], Expr: true})
			i = end + 2
			continue
		}
		lit.WriteByte(pattern[i])
		i++
	}
	flush()
	return segs
}

// matchBraces returns the index of the }} closing the {{ at start,
// tracking nesting depth and skipping escaped braces. Returns -1 when
// the expression never closes.
func matchBraces(pattern string, start int) int {
	depth := 0
	i := start
	for i < len(pattern) {
		if pattern[i] == '\\' && i+2 < len(pattern) &&
			(pattern[i+1:i+3] == "{{" || pattern[i+1:i+3] == "}}") {
			i += 3
			continue
		}
		if strings.HasPrefix(pattern[i:], "{{") {
			depth++
			i += 2
			continue
		}
		if strings.HasPrefix(pattern[i:], "}}") {
			depth--
			if depth == 0 {
				return i
			}
			i += 2
			continue
		}
		i++
	}
	return -1
}

// Reassemble is the inverse of Extract: literal runs are re-escaped and
// expression bodies re-wrapped, reproducing the original pattern.
func Reassemble(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Expr {
			sb.WriteString("{{")
			sb.WriteString(s.Text)
			sb.WriteString("}}")
			continue
		}
		text := strings.ReplaceAll(s.Text, "{{", `\{{`)
		text = strings.ReplaceAll(text, "}}", `\}}`)
		sb.WriteString(text)
	}
	return sb.String()
}
