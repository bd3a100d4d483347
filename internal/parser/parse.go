// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"strconv"
	"strings"

	"nickandperla.net/rollscript/internal/dice"
	"nickandperla.net/rollscript/internal/token"
)

// ParsePattern splits a pattern and classifies every expression body.
func ParsePattern(pattern string) ([]token.Token, error) {
	segs := Extract(pattern)
	toks := make([]token.Token, 0, len(segs))
	for _, seg := range segs {
		if !seg.Expr {
			toks = append(toks, token.Token{Kind: token.LITERAL, Literal: seg.Text, Raw: seg.Text})
			continue
		}
		t, err := Parse(seg.Text)
		if err != nil {
			return nil, err
		}
		toks = append(toks, *t)
	}
	return toks, nil
}

// Parse classifies one expression body into a typed token. Classification
// order follows a fixed precedence; anything unrecognized falls back to a
// table/template reference (lenient).
func Parse(body string) (*token.Token, error) {
	raw := body
	s := strings.TrimSpace(body)

	// Standalone switch comes before everything else.
	if strings.HasPrefix(s, "switch[") || s == "switch" {
		sw, _, err := parseSwitchChain(raw, s, 0)
		if err != nil {
			return nil, err
		}
		return &token.Token{Kind: token.SWITCH, Raw: raw, Switch: sw}, nil
	}

	// Trailing .switch[...].else[...] modifiers attach to any token.
	var mods *token.Switch
	if idx := findModifierStart(s); idx >= 0 {
		sw, _, err := parseSwitchChain(raw, s, idx+1)
		if err != nil {
			return nil, err
		}
		mods = sw
		s = strings.TrimSpace(s[:idx])
	}

	tok := classify(raw, s)
	tok.Modifiers = mods
	return tok, nil
}

func classify(raw, s string) *token.Token {
	switch {
	case s == "":
		return &token.Token{Kind: token.LITERAL, Raw: raw}

	case strings.HasPrefix(s, "collect:"):
		if t := parseCollect(raw, strings.TrimPrefix(s, "collect:")); t != nil {
			return t
		}

	case containsCapturePipe(s):
		if t := parseCaptureRoll(raw, s); t != nil {
			return t
		}

	case strings.HasPrefix(s, "$") && looksLikeCaptureAccess(s):
		if t := parseCaptureAccess(raw, s); t != nil {
			return t
		}

	case strings.HasPrefix(s, "dice:"):
		return parseDice(raw, strings.TrimPrefix(s, "dice:"))

	case strings.HasPrefix(s, "math:"):
		return &token.Token{Kind: token.MATH, Raw: raw, Math: strings.TrimSpace(strings.TrimPrefix(s, "math:"))}

	case strings.HasPrefix(s, "$") && isVarName(s[1:]):
		return &token.Token{Kind: token.VARIABLE, Raw: raw, Variable: s[1:]}

	case strings.HasPrefix(s, "@"):
		return &token.Token{Kind: token.PLACEHOLDER, Raw: raw, Placeholder: parsePropPath(s[1:])}
	}

	if t := parseAgain(raw, s); t != nil {
		return t
	}
	if t := parseInstance(raw, s); t != nil {
		return t
	}
	if t := parseMultiRoll(raw, s); t != nil {
		return t
	}
	return parseTableRef(raw, s)
}

// containsCapturePipe reports a `>> $name` capture target in the body.
func containsCapturePipe(s string) bool {
	idx := strings.Index(s, ">>")
	return idx >= 0 && strings.HasPrefix(strings.TrimSpace(s[idx+2:]), "$")
}

// looksLikeCaptureAccess distinguishes indexed/property capture reads from
// a plain $name variable.
func looksLikeCaptureAccess(s string) bool {
	rest := s[1:]
	if strings.ContainsAny(rest, "[|") {
		return true
	}
	if strings.Contains(rest, ".@") {
		return true
	}
	for _, terminal := range []string{".count", ".value", ".description"} {
		if strings.HasSuffix(rest, terminal) {
			return true
		}
	}
	return false
}

func parseCollect(raw, rest string) *token.Token {
	parts := splitTop(rest, '|')
	target := strings.TrimSpace(parts[0])
	if !strings.HasPrefix(target, "$") {
		return nil
	}
	name, prop, ok := strings.Cut(target[1:], ".")
	if !ok || name == "" || prop == "" {
		return nil
	}
	c := &token.Collect{Var: name, Prop: strings.TrimPrefix(prop, "@")}
	for _, flag := range parts[1:] {
		flag = strings.TrimSpace(flag)
		if flag == "unique" {
			c.Unique = true
		} else if sep, ok := unquote(flag); ok {
			c.Sep, c.SepSet = sep, true
		}
	}
	return &token.Token{Kind: token.COLLECT, Raw: raw, Collect: c}
}

func parseCaptureRoll(raw, s string) *token.Token {
	idx := strings.Index(s, ">>")
	left := strings.TrimSpace(s[:idx])
	right := strings.TrimSpace(s[idx+2:])

	rep := parseRepeatSpec(left)
	if rep == nil || rep.Ref == "" {
		return nil
	}
	parts := splitTop(right, '|')
	target := strings.TrimSpace(parts[0])
	if !strings.HasPrefix(target, "$") || len(target) < 2 {
		return nil
	}
	c := &token.CaptureRoll{Repeat: *rep, Var: target[1:]}
	for _, flag := range parts[1:] {
		flag = strings.TrimSpace(flag)
		if flag == "silent" {
			c.Silent = true
		} else if sep, ok := unquote(flag); ok {
			c.Sep, c.SepSet = sep, true
		}
	}
	return &token.Token{Kind: token.CAPTURE_ROLL, Raw: raw, Capture: c}
}

func parseCaptureAccess(raw, s string) *token.Token {
	rest := s[1:]
	a := &token.CaptureAccess{}

	// Optional trailing |"sep".
	parts := splitTop(rest, '|')
	rest = strings.TrimSpace(parts[0])
	for _, flag := range parts[1:] {
		if sep, ok := unquote(strings.TrimSpace(flag)); ok {
			a.Sep, a.SepSet = sep, true
		}
	}

	// Variable name runs to the first [ or . delimiter.
	end := strings.IndexAny(rest, "[.")
	if end < 0 {
		a.Var = rest
	} else {
		a.Var = rest[:end]
		rest = rest[end:]
	}
	if a.Var == "" {
		return nil
	}
	if end < 0 {
		return &token.Token{Kind: token.CAPTURE_ACCESS, Raw: raw, Access: a}
	}

	if strings.HasPrefix(rest, "[") {
		closeIdx := strings.IndexByte(rest, ']')
		if closeIdx < 0 {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest[1:closeIdx]))
		if err != nil {
			return nil
		}
		a.HasIndex, a.Index = true, n
		rest = rest[closeIdx+1:]
	}
	if strings.HasPrefix(rest, ".") {
		path := parsePropPath("_" + rest) // reuse: leading segment is a dummy name
		a.Props = path.Props
	}
	return &token.Token{Kind: token.CAPTURE_ACCESS, Raw: raw, Access: a}
}

// parseDice handles dice:EXPR, re-checking for an embedded multi-roll such
// as dice:1d4*goblin (a dice-counted roll of the goblin table).
func parseDice(raw, rest string) *token.Token {
	rest = strings.TrimSpace(rest)
	segs := splitTop(rest, '*')
	if len(segs) >= 2 {
		last := strings.TrimSpace(segs[len(segs)-1])
		parts := splitTop(last, '|')
		ref := strings.TrimSpace(parts[0])
		if isIdentRef(ref) && ref != "unique" {
			rep := &token.Repeat{Count: token.Count{Dice: strings.TrimSpace(segs[0])}, Ref: ref}
			for _, mid := range segs[1 : len(segs)-1] {
				if strings.TrimSpace(mid) == "unique" {
					rep.Unique = true
				}
			}
			for _, flag := range parts[1:] {
				if sep, ok := unquote(strings.TrimSpace(flag)); ok {
					rep.Sep, rep.SepSet = sep, true
				}
			}
			return &token.Token{Kind: token.MULTI_ROLL, Raw: raw, Repeat: rep}
		}
	}
	return &token.Token{Kind: token.DICE, Raw: raw, Dice: rest}
}

func parseAgain(raw, s string) *token.Token {
	parts := splitTop(s, '|')
	core := strings.TrimSpace(parts[0])
	if core != "again" && !strings.HasSuffix(core, "*again") {
		return nil
	}
	rep := &token.Repeat{Count: token.Count{Literal: 1}}
	if core != "again" {
		spec := parseRepeatSpec(core)
		if spec == nil || spec.Ref != "again" {
			return nil
		}
		rep.Count, rep.Unique = spec.Count, spec.Unique
	}
	for _, flag := range parts[1:] {
		if sep, ok := unquote(strings.TrimSpace(flag)); ok {
			rep.Sep, rep.SepSet = sep, true
		}
	}
	return &token.Token{Kind: token.AGAIN, Raw: raw, Repeat: rep}
}

// parseInstance matches table#name, but only when # precedes any pipe.
func parseInstance(raw, s string) *token.Token {
	hash := strings.IndexByte(s, '#')
	if hash <= 0 {
		return nil
	}
	if pipe := strings.IndexByte(s, '|'); pipe >= 0 && pipe < hash {
		return nil
	}
	name := strings.TrimSpace(s[hash+1:])
	ref := strings.TrimSpace(s[:hash])
	if name == "" || ref == "" {
		return nil
	}
	return &token.Token{Kind: token.INSTANCE, Raw: raw, Instance: &token.Instance{Ref: ref, Name: name}}
}

func parseMultiRoll(raw, s string) *token.Token {
	parts := splitTop(s, '|')
	rep := parseRepeatSpec(strings.TrimSpace(parts[0]))
	if rep == nil || rep.Ref == "" {
		return nil
	}
	for _, flag := range parts[1:] {
		if sep, ok := unquote(strings.TrimSpace(flag)); ok {
			rep.Sep, rep.SepSet = sep, true
		}
	}
	return &token.Token{Kind: token.MULTI_ROLL, Raw: raw, Repeat: rep}
}

// parseRepeatSpec parses `COUNT*[unique*]ref` where COUNT is a literal
// number, a $variable (optionally with a .count suffix), or dice:EXPR.
// Returns nil when the shape does not match.
func parseRepeatSpec(core string) *token.Repeat {
	segs := splitTop(core, '*')
	if len(segs) < 2 || len(segs) > 3 {
		return nil
	}
	countPart := strings.TrimSpace(segs[0])
	var count token.Count
	switch {
	case strings.HasPrefix(countPart, "$"):
		count.Var = countPart[1:]
	case strings.HasPrefix(countPart, "dice:"):
		count.Dice = strings.TrimSpace(strings.TrimPrefix(countPart, "dice:"))
	case dice.Looks(countPart):
		count.Dice = countPart
	default:
		n, err := strconv.Atoi(countPart)
		if err != nil {
			return nil
		}
		count.Literal = n
	}
	rep := &token.Repeat{Count: count}
	if len(segs) == 3 {
		if strings.TrimSpace(segs[1]) != "unique" {
			return nil
		}
		rep.Unique = true
	}
	rep.Ref = strings.TrimSpace(segs[len(segs)-1])
	return rep
}

// parseTableRef decomposes the fallback reference form: dotted namespace
// or alias segments followed by an optional @prop chain.
func parseTableRef(raw, s string) *token.Token {
	segs := strings.Split(s, ".")
	ref := make([]string, 0, len(segs))
	var props []token.Prop
	inProps := false
	for _, seg := range segs {
		if strings.HasPrefix(seg, "@") {
			inProps = true
		}
		if inProps {
			props = append(props, token.Prop{Name: strings.TrimPrefix(seg, "@"), Nested: true})
		} else {
			ref = append(ref, seg)
		}
	}
	return &token.Token{Kind: token.TABLE_REF, Raw: raw, Table: &token.TableRef{
		Ref:   strings.Join(ref, "."),
		Props: props,
	}}
}

// parsePropPath parses name.prop.@nested... into a placeholder reference.
// A bare dotted segment is a plain property; an @-prefixed one continues a
// chained walk through captured results.
func parsePropPath(s string) *token.PlaceholderRef {
	segs := strings.Split(s, ".")
	ref := &token.PlaceholderRef{Name: segs[0]}
	for _, seg := range segs[1:] {
		ref.Props = append(ref.Props, token.Prop{
			Name:   strings.TrimPrefix(seg, "@"),
			Nested: strings.HasPrefix(seg, "@"),
		})
	}
	return ref
}

// isVarName reports whether s is a plain dotted identifier ($name or
// $alias.name), with no indexing, pipes, or property-walk markers.
func isVarName(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
		for _, r := range seg {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return false
			}
		}
	}
	return true
}

// isIdentRef reports whether s looks like a table/template reference
// rather than a number or dice notation.
func isIdentRef(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	return !dice.Looks(s)
}

// splitTop splits on sep at top level: separators inside quotes or
// brackets are kept.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
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
		case '[', '{', '(':
			depth++
		case ']', '}', ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// unquote strips matching single or double quotes; ok is false when the
// string is not quoted.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}
