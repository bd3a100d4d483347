// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package dice

import "testing"

// seqRand returns a fixed sequence of Intn results (modulo n).
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func TestRoll(t *testing.T) {
	tests := []struct {
		expr string
		rand []int
		want int
	}{
		{"2d6", []int{2, 4}, 8},          // 3+5
		{"d6", []int{5}, 6},              // bare d means one die
		{"2d6+5", []int{0, 0}, 7},        // 1+1+5
		{"1d4*3", []int{3}, 12},          // 4*3
		{"10/3", nil, 3},                 // integer truncation
		{"7/0", nil, 0},                  // division by zero yields 0
		{"(1d4+1)*2", []int{1}, 6},       // parens
		{"4d6kh3", []int{5, 3, 0, 2}, 13}, // keep 6,4,3 drop 1
		{"4d6kl1", []int{5, 3, 0, 2}, 1},  // keep the single lowest
		{"2-5", nil, -3},
	}
	for _, tt := range tests {
		res, err := Roll(tt.expr, Options{Rand: &seqRand{vals: tt.rand}})
		if err != nil {
			t.Errorf("Roll(%q) failed: %v", tt.expr, err)
			continue
		}
		if res.Total != tt.want {
			t.Errorf("Roll(%q) = %d, want %d", tt.expr, res.Total, tt.want)
		}
	}
}

func TestRollExploding(t *testing.T) {
	// First die hits the max and explodes twice before settling.
	res, err := Roll("1d4!", Options{Rand: &seqRand{vals: []int{3, 3, 1}}})
	if err != nil {
		t.Fatalf("Roll failed: %v", err)
	}
	if res.Total != 10 { // 4+4+2
		t.Errorf("total = %d, want 10", res.Total)
	}
	if len(res.Rolls) != 3 {
		t.Errorf("rolls = %v, want 3 dice", res.Rolls)
	}
}

func TestRollExplodingCap(t *testing.T) {
	// A die that always explodes must stop at the cap.
	res, err := Roll("1d6!", Options{Rand: &seqRand{vals: []int{5}}, MaxExplodingDice: 3})
	if err != nil {
		t.Fatalf("Roll failed: %v", err)
	}
	if len(res.Rolls) != 4 { // original + 3 extras
		t.Errorf("rolls = %v, want 4 dice", res.Rolls)
	}
}

func TestRollErrors(t *testing.T) {
	for _, expr := range []string{"", "d", "2d", "1d6 garbage", "(1d6", "1d0"} {
		if _, err := Roll(expr, Options{Rand: &seqRand{}}); err == nil {
			t.Errorf("Roll(%q) should fail", expr)
		}
	}
}

func TestLooks(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1d6", true},
		{"d6", true},
		{"2d10+5", true},
		{"goblin", false},
		{"3", false},
		{"d", false},
		{"2dx", false},
	}
	for _, tt := range tests {
		if got := Looks(tt.in); got != tt.want {
			t.Errorf("Looks(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
