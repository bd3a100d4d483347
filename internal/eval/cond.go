// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"regexp"
	"strconv"
	"strings"

	"nickandperla.net/rollscript/internal/token"
)

// EvaluateWhenClause evaluates a switch condition. Malformed conditions
// fail closed: false, with a diagnostic.
func (e *Evaluator) EvaluateWhenClause(expr string, ctx *Context) bool {
	toks := condTokens(expr)
	v, ok := e.evalCondExpr(toks, ctx)
	if !ok {
		ctx.Diagf(Warn, "bad condition %q", expr)
		return false
	}
	return v
}

type condTok struct {
	val    string
	quoted bool
}

func (t condTok) is(s string) bool { return !t.quoted && t.val == s }

// condTokens splits a condition into quoted strings, operators, and bare
// values. Bare values keep dots and @ markers so variable paths survive.
func condTokens(s string) []condTok {
	var toks []condTok
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '\'' || c == '"':
			// Backslash escapes survive quoting of the base value in
			// attached switches, so honor them here.
			var sb strings.Builder
			j := i + 1
			for j < len(s) && s[j] != c {
				ch := s[j]
				if ch == '\\' && j+1 < len(s) {
					j++
					switch s[j] {
					case 'n':
						ch = '\n'
					case 't':
						ch = '\t'
					default:
						ch = s[j]
					}
				}
				sb.WriteByte(ch)
				j++
			}
			toks = append(toks, condTok{val: sb.String(), quoted: true})
			if j >= len(s) {
				return toks
			}
			i = j + 1
		case strings.HasPrefix(s[i:], "==") || strings.HasPrefix(s[i:], "!=") ||
			strings.HasPrefix(s[i:], ">=") || strings.HasPrefix(s[i:], "<=") ||
			strings.HasPrefix(s[i:], "&&") || strings.HasPrefix(s[i:], "||"):
			toks = append(toks, condTok{val: s[i : i+2]})
			i += 2
		case c == '(' || c == ')' || c == '!' || c == '<' || c == '>':
			toks = append(toks, condTok{val: string(c)})
			i++
		default:
			j := i
			for j < len(s) && !strings.ContainsRune(" \t()!<>=&|'\"", rune(s[j])) {
				j++
			}
			toks = append(toks, condTok{val: s[i:j]})
			i = j
		}
	}
	return toks
}

// findTopCond locates the leftmost occurrence of op outside parentheses.
func findTopCond(toks []condTok, op string) int {
	depth := 0
	for i, t := range toks {
		if t.quoted {
			continue
		}
		switch t.val {
		case "(":
			depth++
		case ")":
			depth--
		case op:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// evalCondExpr evaluates recursively: || binds loosest, then &&, then
// unary not, parentheses, comparisons, and finally bare truthiness.
func (e *Evaluator) evalCondExpr(toks []condTok, ctx *Context) (bool, bool) {
	if len(toks) == 0 {
		return false, false
	}
	if idx := findTopCond(toks, "||"); idx >= 0 {
		if l, ok := e.evalCondExpr(toks[:idx], ctx); !ok {
			return false, false
		} else if l {
			return true, true
		}
		return e.evalCondExpr(toks[idx+1:], ctx)
	}
	if idx := findTopCond(toks, "&&"); idx >= 0 {
		if l, ok := e.evalCondExpr(toks[:idx], ctx); !ok {
			return false, false
		} else if !l {
			return false, true
		}
		return e.evalCondExpr(toks[idx+1:], ctx)
	}
	if toks[0].is("!") {
		v, ok := e.evalCondExpr(toks[1:], ctx)
		return !v, ok
	}
	if toks[0].is("(") && matchingParen(toks, 0) == len(toks)-1 {
		return e.evalCondExpr(toks[1:len(toks)-1], ctx)
	}
	for _, op := range []string{"==", "!=", ">=", "<=", ">", "<", "contains", "matches"} {
		if idx := findTopCond(toks, op); idx >= 0 {
			if idx == 0 || idx == len(toks)-1 {
				return false, false
			}
			return e.compare(toks[:idx], op, toks[idx+1:], ctx)
		}
	}
	if len(toks) == 1 {
		return truthy(e.condValue(toks[0], ctx)), true
	}
	return false, false
}

func matchingParen(toks []condTok, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		if toks[i].quoted {
			continue
		}
		switch toks[i].val {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (e *Evaluator) compare(left []condTok, op string, right []condTok, ctx *Context) (bool, bool) {
	if len(left) != 1 || len(right) != 1 {
		return false, false
	}
	l := e.condValue(left[0], ctx)
	r := e.condValue(right[0], ctx)
	switch op {
	case "==":
		return l == r, true
	case "!=":
		return l != r, true
	case "contains":
		return strings.Contains(strings.ToLower(l), strings.ToLower(r)), true
	case "matches":
		re, err := regexp.Compile("(?i)" + r)
		if err != nil {
			ctx.Diagf(Warn, "bad pattern %q: %v", r, err)
			return false, true
		}
		return re.MatchString(l), true
	}
	ln, lerr := strconv.ParseFloat(strings.TrimSpace(l), 64)
	rn, rerr := strconv.ParseFloat(strings.TrimSpace(r), 64)
	if lerr != nil || rerr != nil {
		ctx.Diagf(Info, "non-numeric comparison %q %s %q", l, op, r)
		return false, true
	}
	switch op {
	case ">":
		return ln > rn, true
	case "<":
		return ln < rn, true
	case ">=":
		return ln >= rn, true
	case "<=":
		return ln <= rn, true
	}
	return false, false
}

// condValue resolves one operand: quoted strings are literal, $ and @
// prefixes resolve against the context, anything else is its own value.
func (e *Evaluator) condValue(t condTok, ctx *Context) string {
	if t.quoted {
		return t.val
	}
	s := t.val
	switch {
	case strings.HasPrefix(s, "$"):
		name := s[1:]
		if base, rest, ok := strings.Cut(name, "."); ok {
			if cv := e.captureFor(base, ctx); cv != nil {
				if rest == "count" {
					return strconv.Itoa(cv.Count)
				}
				if len(cv.Items) == 0 {
					return ""
				}
				return e.walkCapture(cv.Items[0], propPath(rest), ctx)
			}
		}
		if v, ok := e.lookupVariableText(name, ctx); ok {
			return v
		}
		ctx.Diagf(Warn, "unresolved variable $%s", name)
		return ""
	case strings.HasPrefix(s, "@"):
		segs := strings.Split(s[1:], ".")
		ref := &token.PlaceholderRef{Name: segs[0], Props: propPath(strings.Join(segs[1:], "."))}
		return e.evalPlaceholder(ref, ctx)
	}
	return s
}

func propPath(path string) []token.Prop {
	if path == "" {
		return nil
	}
	segs := strings.Split(path, ".")
	props := make([]token.Prop, len(segs))
	for i, seg := range segs {
		props[i] = token.Prop{
			Name:   strings.TrimPrefix(seg, "@"),
			Nested: strings.HasPrefix(seg, "@"),
		}
	}
	return props
}

// truthy: empty, "false" and "0" are false; everything else is true.
func truthy(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, "false") && v != "0"
}
