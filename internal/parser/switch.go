// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"fmt"
	"strings"

	"nickandperla.net/rollscript/internal/token"
)

// ParseError reports malformed switch syntax. Parse errors are raised when
// the expression is classified, before any evaluation begins.
type ParseError struct {
	Expr string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Expr, e.Msg)
}

// parseSwitchChain parses `switch[cond:result].switch[...]...else[...]`
// starting at s[pos]. The chain must contain at least one clause.
func parseSwitchChain(expr, s string, pos int) (*token.Switch, int, error) {
	sw := &token.Switch{}
	i := pos
	for {
		var keyword string
		switch {
		case strings.HasPrefix(s[i:], "switch["):
			keyword = "switch"
		case strings.HasPrefix(s[i:], "else["):
			keyword = "else"
		default:
			return nil, i, &ParseError{Expr: expr, Msg: fmt.Sprintf("expected switch[ or else[ at %q", s[i:])}
		}
		open := i + len(keyword)
		closeIdx := matchBracket(s, open)
		if closeIdx < 0 {
			return nil, i, &ParseError{Expr: expr, Msg: "unterminated [" + keyword + " clause"}
		}
		body := s[open+1 : closeIdx]

		if keyword == "else" {
			sw.Else = body
			sw.HasElse = true
			i = closeIdx + 1
			break // else terminates the chain
		}

		cond, result, ok := splitClause(body)
		if !ok {
			return nil, i, &ParseError{Expr: expr, Msg: fmt.Sprintf("switch clause %q has no colon", body)}
		}
		sw.Clauses = append(sw.Clauses, token.SwitchClause{Cond: cond, Result: result})
		i = closeIdx + 1

		if i < len(s) && s[i] == '.' &&
			(strings.HasPrefix(s[i+1:], "switch[") || strings.HasPrefix(s[i+1:], "else[")) {
			i++
			continue
		}
		break
	}
	if len(sw.Clauses) == 0 {
		return nil, i, &ParseError{Expr: expr, Msg: "switch with empty clause list"}
	}
	return sw, i, nil
}

// matchBracket returns the index of the ] matching the [ at open. Brackets
// and colons inside quoted strings do not count; nested brackets are
// tracked so a clause result may itself contain [ ].
func matchBracket(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitClause splits a clause body at the first colon that is neither
// quoted nor nested in brackets or braces.
func splitClause(body string) (cond, result string, ok bool) {
	depth := 0
	var quote byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ':':
			if depth == 0 {
				return strings.TrimSpace(body[:i]), strings.TrimSpace(body[i+1:]), true
			}
		}
	}
	return "", "", false
}

// findModifierStart locates the first `.switch[` or `.else[` that sits
// outside quotes and brackets, marking where trailing modifiers begin.
// Returns -1 when the expression carries no modifiers.
func findModifierStart(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case '.':
			if depth == 0 &&
				(strings.HasPrefix(s[i+1:], "switch[") || strings.HasPrefix(s[i+1:], "else[")) {
				return i
			}
		}
	}
	return -1
}
