// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"strconv"
	"strings"

	"nickandperla.net/rollscript/internal/token"
)

// applySwitch tries the clause conditions in order and evaluates the first
// matching result. For an attached switch (trailing modifiers) a bare $
// in a condition stands for the base value, and no match passes the base
// value through; a standalone switch with no match yields "".
func (e *Evaluator) applySwitch(sw *token.Switch, base string, attached bool, ctx *Context, col string) (string, error) {
	for _, cl := range sw.Clauses {
		cond, err := e.prepareCond(cl.Cond, base, attached, ctx, col)
		if err != nil {
			return "", err
		}
		if e.EvaluateWhenClause(cond, ctx) {
			return e.evalSwitchResult(cl.Result, ctx, col)
		}
	}
	if sw.HasElse {
		return e.evalSwitchResult(sw.Else, ctx, col)
	}
	if attached {
		return base, nil
	}
	return "", nil
}

// prepareCond runs embedded {{...}} sub-expressions in the condition, then
// substitutes a standalone $ with the quoted base value.
func (e *Evaluator) prepareCond(cond, base string, attached bool, ctx *Context, col string) (string, error) {
	if strings.Contains(cond, "{{") {
		evaluated, err := e.EvaluatePattern(cond, ctx, col)
		if err != nil {
			return "", err
		}
		cond = evaluated
	}
	if attached {
		cond = substituteDollar(cond, strconv.Quote(base))
	}
	return cond, nil
}

// substituteDollar replaces every $ that does not start a variable name.
func substituteDollar(s, quoted string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '$' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) {
			c := s[i+1]
			if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
				sb.WriteByte('$')
				continue
			}
		}
		sb.WriteString(quoted)
	}
	return sb.String()
}

// evalSwitchResult renders a clause result. A quoted result is verbatim
// unless it embeds {{...}}; an unquoted result is treated as a pattern,
// auto-wrapped in braces when it carries none.
func (e *Evaluator) evalSwitchResult(result string, ctx *Context, col string) (string, error) {
	result = strings.TrimSpace(result)
	if q, ok := unquoteResult(result); ok {
		if !strings.Contains(q, "{{") {
			return q, nil
		}
		return e.EvaluatePattern(q, ctx, col)
	}
	if !strings.Contains(result, "{{") {
		result = "{{" + result + "}}"
	}
	return e.EvaluatePattern(result, ctx, col)
}

func unquoteResult(s string) (string, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1], true
	}
	return "", false
}
