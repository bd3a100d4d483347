// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []Segment
	}{
		{
			name:    "plain text",
			pattern: "just words",
			want:    []Segment{{Text: "just words"}},
		},
		{
			name:    "single expression",
			pattern: "a {{color}} sky",
			want: []Segment{
				{Text: "a "},
				{Text: "color", Expr: true},
				{Text: " sky"},
			},
		},
		{
			name:    "adjacent expressions",
			pattern: "{{a}}{{b}}",
			want: []Segment{
				{Text: "a", Expr: true},
				{Text: "b", Expr: true},
			},
		},
		{
			name:    "nested braces stay in one body",
			pattern: `{{switch[$x: "{{inner}}"]}}`,
			want: []Segment{
				{Text: `switch[$x: "{{inner}}"]`, Expr: true},
			},
		},
		{
			name:    "escaped braces are literal",
			pattern: `show \{{raw\}} here`,
			want:    []Segment{{Text: "show {{raw}} here"}},
		},
		{
			name:    "unclosed marker is lenient",
			pattern: "oops {{never",
			want:    []Segment{{Text: "oops {{never"}},
		},
		{
			name:    "empty pattern",
			pattern: "",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.pattern)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

func TestReassembleRoundTrip(t *testing.T) {
	patterns := []string{
		"plain",
		"a {{color}} sky",
		`escaped \{{raw\}} text`,
		`{{switch[$x: "{{inner}}"]}}`,
		"{{a}} and {{b}} and {{c}}",
		"",
	}
	for _, p := range patterns {
		if got := Reassemble(Extract(p)); got != p {
			t.Errorf("Reassemble(Extract(%q)) = %q", p, got)
		}
	}
}
