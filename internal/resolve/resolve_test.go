// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package resolve

import (
	"errors"
	"testing"

	"nickandperla.net/rollscript/internal/document"
)

func mustParse(t *testing.T, yaml string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func TestTableResolution(t *testing.T) {
	doc := mustParse(t, `
collections:
  - id: core
    imports:
      - collection: names.fantasy
        alias: nm
    tables:
      - id: goblin
        entries: [{text: snaga}]
  - id: names.fantasy
    tables:
      - id: first
        entries: [{text: Olga}]
`)
	r := New(doc)

	tests := []struct {
		ref     string
		from    string
		wantID  string
		wantCol string
	}{
		{"goblin", "core", "goblin", "core"},              // local
		{"nm.first", "core", "first", "names.fantasy"},    // alias
		{"names.fantasy.first", "core", "first", "names.fantasy"}, // dotted collection id
	}
	for _, tt := range tests {
		tbl, col, err := r.Table(tt.ref, tt.from)
		if err != nil {
			t.Errorf("Table(%q) failed: %v", tt.ref, err)
			continue
		}
		if tbl.ID != tt.wantID || col != tt.wantCol {
			t.Errorf("Table(%q) = %s in %s, want %s in %s", tt.ref, tbl.ID, col, tt.wantID, tt.wantCol)
		}
	}

	if _, _, err := r.Table("ghost", "core"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Table(ghost) error = %v, want ErrNotFound", err)
	}
	if _, _, err := r.Table("goblin", "names.fantasy"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-collection lookup without namespace should fail, got %v", err)
	}
}

func TestTemplateResolution(t *testing.T) {
	doc := mustParse(t, `
collections:
  - id: core
    templates:
      - id: intro
        pattern: "hello"
`)
	r := New(doc)
	tpl, col, err := r.Template("intro", "core")
	if err != nil {
		t.Fatalf("Template failed: %v", err)
	}
	if tpl.ID != "intro" || col != "core" {
		t.Errorf("Template = %s in %s", tpl.ID, col)
	}
}

func TestMergeExtends(t *testing.T) {
	doc := mustParse(t, `
collections:
  - id: c
    tables:
      - id: base
        shared:
          stock: "plain"
          tone: "base tone"
        entries:
          - text: parent1
          - text: parent2
      - id: child
        extends: base
        shared:
          tone: "child tone"
        entries:
          - text: own
`)
	r := New(doc)
	tbl, _, err := r.Table("child", "c")
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}

	// Parent entries come first, child's last.
	if len(tbl.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(tbl.Entries))
	}
	if tbl.Entries[0].Text != "parent1" || tbl.Entries[2].Text != "own" {
		t.Errorf("entry order wrong: %q ... %q", tbl.Entries[0].Text, tbl.Entries[2].Text)
	}

	// Child shared wins on conflict; parent's unique names survive.
	if v, _ := tbl.Shared.Get("tone"); v != "child tone" {
		t.Errorf("tone = %q, want child tone", v)
	}
	if v, _ := tbl.Shared.Get("stock"); v != "plain" {
		t.Errorf("stock = %q, want plain", v)
	}

	// Resolving again returns the cached merge.
	again, _, _ := r.Table("child", "c")
	if again != tbl {
		t.Error("merged table should be cached")
	}
}
