// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package trace

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestRecorderTree(t *testing.T) {
	r := New()
	r.Begin("table", "npc", "npc:0")
	r.Leaf("dice", "2d6", "7")
	r.Begin("table", "weapon", "")
	r.End("axe")
	r.Annotate("collection", "core")
	r.End("Olga")

	want := &Node{
		Kind:  "run",
		Label: "run",
		Children: []*Node{
			{
				Kind:   "table",
				Label:  "npc",
				Input:  "npc:0",
				Output: "Olga",
				Meta:   map[string]string{"collection": "core"},
				Children: []*Node{
					{Kind: "dice", Label: "2d6", Output: "7"},
					{Kind: "table", Label: "weapon", Output: "axe"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, r.Root(), cmpopts.IgnoreFields(Node{}, "ID")); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	if r.RunID == "" || r.Root().ID != r.RunID {
		t.Error("run id should match the root node")
	}
}

func TestRecorderJSON(t *testing.T) {
	r := New()
	r.Begin("table", "color", "")
	r.End("red")

	data, err := r.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	var got Node
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if len(got.Children) != 1 || got.Children[0].Output != "red" {
		t.Errorf("decoded tree = %+v", got)
	}
}

func TestNilRecorderIsInert(t *testing.T) {
	var r *Recorder
	r.Begin("table", "x", "")
	r.Leaf("dice", "1d6", "3")
	r.Annotate("k", "v")
	r.End("out")
	if r.Root() != nil {
		t.Error("nil recorder should have no tree")
	}
	data, err := r.JSON()
	if err != nil || data != nil {
		t.Errorf("nil recorder JSON = %q, %v", data, err)
	}
}

func TestUnbalancedEndIsIgnored(t *testing.T) {
	r := New()
	r.End("stray")
	r.Begin("table", "x", "")
	r.End("ok")
	r.End("stray again")
	if n := len(r.Root().Children); n != 1 {
		t.Errorf("children = %d, want 1", n)
	}
}
