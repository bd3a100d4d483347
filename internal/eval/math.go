// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"
	"strconv"
	"strings"

	"nickandperla.net/rollscript/internal/dice"
)

// EvaluateMath evaluates a math: expression to an integer. Division
// truncates toward zero and division by zero yields 0. Unresolvable
// operands coerce to 0 with a diagnostic; only a structurally invalid
// expression makes ok false.
func (e *Evaluator) EvaluateMath(expr string, ctx *Context) (int, bool) {
	p := &mathParser{ev: e, ctx: ctx, input: strings.TrimSpace(expr)}
	v, err := p.expr()
	p.skipSpace()
	if err == nil && p.pos < len(p.input) {
		err = fmt.Errorf("unexpected %q", p.input[p.pos:])
	}
	if err != nil {
		ctx.Diagf(Warn, "math %q: %v", expr, err)
		return 0, false
	}
	return v, true
}

type mathParser struct {
	ev    *Evaluator
	ctx   *Context
	input string
	pos   int
}

// expr → term (('+'|'-') term)*
func (p *mathParser) expr() (int, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left += right
		case '-':
			p.pos++
			right, err := p.term()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

// term → factor (('*'|'/') factor)*
func (p *mathParser) term() (int, error) {
	left, err := p.factor()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch p.peek() {
		case '*':
			p.pos++
			right, err := p.factor()
			if err != nil {
				return 0, err
			}
			left *= right
		case '/':
			p.pos++
			right, err := p.factor()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				left = 0
			} else {
				left /= right
			}
		default:
			return left, nil
		}
	}
}

// factor → '-' factor | '(' expr ')' | operand
func (p *mathParser) factor() (int, error) {
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.factor()
		return -v, err
	case '(':
		p.pos++
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, fmt.Errorf("missing closing paren")
		}
		p.pos++
		return v, nil
	}
	return p.operand()
}

// operand → number | dice:EXPR | $path | @path
func (p *mathParser) operand() (int, error) {
	if strings.HasPrefix(p.input[p.pos:], "dice:") {
		p.pos += len("dice:")
		start := p.pos
		for p.pos < len(p.input) && isDiceChar(p.input[p.pos]) {
			p.pos++
		}
		res, err := dice.Roll(p.input[start:p.pos], p.ev.diceOpts())
		if err != nil {
			return 0, err
		}
		return res.Total, nil
	}

	c := p.peek()
	if c == '$' || c == '@' {
		start := p.pos
		p.pos++
		for p.pos < len(p.input) && isPathChar(p.input[p.pos]) {
			p.pos++
		}
		ref := p.input[start:p.pos]
		text := p.ev.condValue(condTok{val: ref}, p.ctx)
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			// Unresolvable references coerce to 0; only structural
			// problems fail the whole expression.
			p.ctx.Diagf(Warn, "math operand %s is not a number (%q), using 0", ref, text)
			return 0, nil
		}
		return n, nil
	}

	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected a number at %q", p.input[p.pos:])
	}
	n, _ := strconv.Atoi(p.input[start:p.pos])
	return n, nil
}

func isDiceChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c == 'd' || c == 'D' || c == 'k' || c == 'K':
		return true
	case c == 'h' || c == 'H' || c == 'l' || c == 'L' || c == '!':
		return true
	}
	return false
}

func isPathChar(c byte) bool {
	return c == '_' || c == '.' || c == '@' ||
		c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (p *mathParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *mathParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
