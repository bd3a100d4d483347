// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package dice evaluates dice notation such as "2d6+5", "4d6kh3" or "1d6!".
package dice

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Rand is the randomness source. *rand.Rand satisfies it; tests substitute
// a deterministic sequence.
type Rand interface {
	Intn(n int) int
}

// Options configures a roll.
type Options struct {
	Rand             Rand
	MaxExplodingDice int // cap on extra exploding dice per group
}

// Result is the outcome of evaluating a dice expression.
type Result struct {
	Total      int
	Rolls      []int // every die rolled, in roll order
	Kept       []int // dice that counted toward the total
	Expression string
	Breakdown  string // human-readable per-group breakdown
}

// Roll evaluates a dice expression. Arithmetic uses integer math with
// truncation toward zero; division by zero yields 0.
func Roll(expression string, opts Options) (*Result, error) {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	if opts.MaxExplodingDice <= 0 {
		opts.MaxExplodingDice = 100
	}
	p := &diceParser{input: strings.TrimSpace(expression), opts: opts}
	total, err := p.expr()
	if err != nil {
		return nil, fmt.Errorf("dice %q: %w", expression, err)
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("dice %q: unexpected %q", expression, p.input[p.pos:])
	}
	return &Result{
		Total:      total,
		Rolls:      p.rolls,
		Kept:       p.kept,
		Expression: expression,
		Breakdown:  strings.Join(p.groups, " "),
	}, nil
}

type diceParser struct {
	input  string
	pos    int
	opts   Options
	rolls  []int
	kept   []int
	groups []string
}

// expr → term (('+'|'-') term)*
func (p *diceParser) expr() (int, error) {
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
func (p *diceParser) term() (int, error) {
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
				left /= right // Go int division truncates toward zero
			}
		default:
			return left, nil
		}
	}
}

// factor → '(' expr ')' | diceGroup | number
func (p *diceParser) factor() (int, error) {
	p.skipSpace()
	if p.peek() == '(' {
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
	return p.diceOrNumber()
}

func (p *diceParser) diceOrNumber() (int, error) {
	start := p.pos
	count, hasCount := p.number()
	if p.peek() == 'd' || p.peek() == 'D' {
		p.pos++
		if !hasCount {
			count = 1
		}
		sides, ok := p.number()
		if !ok || sides < 1 {
			return 0, fmt.Errorf("bad die at %q", p.input[start:])
		}
		if count < 1 {
			return 0, fmt.Errorf("bad die count at %q", p.input[start:])
		}
		return p.rollGroup(count, sides)
	}
	if !hasCount {
		return 0, fmt.Errorf("expected number or die at %q", p.input[p.pos:])
	}
	return count, nil
}

// rollGroup rolls count dice of the given sides, applying an optional
// exploding flag (!) and keep-highest/lowest suffix (khN/klN).
func (p *diceParser) rollGroup(count, sides int) (int, error) {
	explode := false
	if p.peek() == '!' {
		explode = true
		p.pos++
	}
	keepHigh, keepLow := 0, 0
	if p.peek() == 'k' || p.peek() == 'K' {
		p.pos++
		switch p.peek() {
		case 'h', 'H':
			p.pos++
			n, ok := p.number()
			if !ok {
				return 0, fmt.Errorf("kh requires a count")
			}
			keepHigh = n
		case 'l', 'L':
			p.pos++
			n, ok := p.number()
			if !ok {
				return 0, fmt.Errorf("kl requires a count")
			}
			keepLow = n
		default:
			return 0, fmt.Errorf("expected kh or kl")
		}
	}

	var group []int
	extra := 0
	for i := 0; i < count; i++ {
		v := p.opts.Rand.Intn(sides) + 1
		group = append(group, v)
		// Exploding: a max roll grants another die, up to the cap.
		for explode && v == sides && extra < p.opts.MaxExplodingDice {
			extra++
			v = p.opts.Rand.Intn(sides) + 1
			group = append(group, v)
		}
	}
	p.rolls = append(p.rolls, group...)

	kept := group
	if keepHigh > 0 || keepLow > 0 {
		sorted := append([]int(nil), group...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		if keepHigh > 0 {
			if keepHigh > len(sorted) {
				keepHigh = len(sorted)
			}
			kept = sorted[:keepHigh]
		} else {
			if keepLow > len(sorted) {
				keepLow = len(sorted)
			}
			kept = sorted[len(sorted)-keepLow:]
		}
	}
	p.kept = append(p.kept, kept...)

	sum := 0
	for _, v := range kept {
		sum += v
	}
	p.groups = append(p.groups, fmt.Sprintf("%dd%d%v=%d", count, sides, group, sum))
	return sum, nil
}

func (p *diceParser) number() (int, bool) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, false
	}
	n := 0
	for _, c := range p.input[start:p.pos] {
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (p *diceParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *diceParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// Looks reports whether s plausibly starts with dice notation (used by the
// parser to distinguish "1d4*table" multi-rolls from plain dice).
func Looks(s string) bool {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i >= len(s) || (s[i] != 'd' && s[i] != 'D') {
		return false
	}
	i++
	return i < len(s) && s[i] >= '0' && s[i] <= '9'
}
