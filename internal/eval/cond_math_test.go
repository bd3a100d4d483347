// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import "testing"

const condDoc = `
collections:
  - id: core
    variables:
      hp: "7"
      zero: "0"
      name: Olga the bold
      quip: say "boo"
    tables:
      - id: gem
        entries:
          - text: ruby
            sets:
              worth: "10"
`

func TestEvaluateWhenClause(t *testing.T) {
	e, ctx := setup(t, condDoc)
	run(t, e, ctx, "{{gem}}") // record @gem placeholders

	tests := []struct {
		cond string
		want bool
	}{
		{`$hp > 5`, true},
		{`$hp >= 7`, true},
		{`$hp < 7`, false},
		{`$hp == 7`, true},
		{`$hp != 7`, false},
		{`$hp == "7"`, true},

		{`$name contains "olga"`, true}, // case-insensitive
		{`$name contains "gertrude"`, false},
		{`$name matches "^olga"`, true},
		{`$name matches "bold$"`, true},
		{`$name matches "[invalid"`, false}, // bad pattern fails closed

		{`@gem.worth == 10`, true},

		// && binds tighter than ||.
		{`1 == 1 || 1 == 2 && 3 == 4`, true},
		{`(1 == 1 || 1 == 2) && 3 == 4`, false},
		{`1 == 1 && 2 == 2 && 3 == 3`, true},

		{`!($hp > 5)`, false},
		{`!$missing`, true}, // unresolved operand is falsy

		// Bare truthiness.
		{`$hp`, true},
		{`$zero`, false},
		{`$missing`, false},
		{`"false"`, false},
		{`"anything"`, true},

		// Non-numeric ordered comparison fails closed.
		{`$name > 3`, false},

		// Escaped quotes inside quoted operands.
		{`"say \"boo\"" == "say \"boo\""`, true},
		{`"say \"boo\"" contains "boo"`, true},
	}
	for _, tt := range tests {
		if got := e.EvaluateWhenClause(tt.cond, ctx); got != tt.want {
			t.Errorf("EvaluateWhenClause(%q) = %v, want %v", tt.cond, got, tt.want)
		}
	}
}

func TestSwitchBaseWithQuotes(t *testing.T) {
	e, ctx := setup(t, condDoc)
	// The base value carries a double quote; its quoted substitution must
	// still tokenize as one operand.
	got := run(t, e, ctx, `{{$quip.switch[$ contains "boo": "loud"].else["quiet"]}}`)
	if got != "loud" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluateMath(t *testing.T) {
	e, ctx := setup(t, condDoc)
	run(t, e, ctx, "{{gem}}")

	tests := []struct {
		expr string
		want int
	}{
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"14/3", 4},  // truncation toward zero
		{"-14/3", -4},
		{"5/0", 0}, // division by zero yields 0
		{"$hp + 1", 8},
		{"$hp * $hp", 49},
		{"@gem.worth * 2", 20},
		{"dice:2d6+1", 3}, // minimum rolls

		// Unresolvable operands coerce to 0 instead of failing.
		{"$missing + 5", 5},
		{"$name + 1", 1},
	}
	for _, tt := range tests {
		got, ok := e.EvaluateMath(tt.expr, ctx)
		if !ok {
			t.Errorf("EvaluateMath(%q) failed", tt.expr)
			continue
		}
		if got != tt.want {
			t.Errorf("EvaluateMath(%q) = %d, want %d", tt.expr, got, tt.want)
		}
	}
}

func TestEvaluateMathErrors(t *testing.T) {
	e, ctx := setup(t, condDoc)
	for _, expr := range []string{"", "nope", "1 +", "(1"} {
		if _, ok := e.EvaluateMath(expr, ctx); ok {
			t.Errorf("EvaluateMath(%q) should fail", expr)
		}
	}
	if len(ctx.Diagnostics()) == 0 {
		t.Error("math failures should leave diagnostics")
	}
}

func TestMathPatternOutput(t *testing.T) {
	e, ctx := setup(t, condDoc)
	if got := run(t, e, ctx, "{{math: $hp - 2}}"); got != "5" {
		t.Errorf("got %q", got)
	}
	// An unresolvable operand degrades to 0, keeping the expression alive.
	if got := run(t, e, ctx, "x{{math: $name + 1}}y"); got != "x1y" {
		t.Errorf("got %q", got)
	}
	// A structurally invalid expression is visibly marked in the text.
	if got := run(t, e, ctx, "x{{math: 1 +}}y"); got != "x[math error]y" {
		t.Errorf("got %q", got)
	}
}
