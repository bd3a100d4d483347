// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package resolve maps possibly namespaced or aliased references to
// concrete tables and templates, applying table inheritance.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/rollscript/internal/document"
)

// ErrNotFound reports an unresolvable reference.
var ErrNotFound = errors.New("not found")

// Resolver performs reference lookups against one document.
type Resolver struct {
	doc    *document.Document
	merged map[string]*document.Table // "collection\x00table" -> merged view
}

// New creates a resolver for the document.
func New(doc *document.Document) *Resolver {
	return &Resolver{doc: doc, merged: make(map[string]*document.Table)}
}

// Document returns the underlying document.
func (r *Resolver) Document() *document.Document { return r.doc }

// Collection is a plain collection lookup.
func (r *Resolver) Collection(id string) *document.Collection {
	return r.doc.Collection(id)
}

// Table resolves a reference relative to the current collection and
// returns the merged table plus the collection it lives in.
//
// Resolution order: local id in the current collection, then
// alias.tableId through the collection's imports, then a dotted
// namespace where everything before the last segment is a collection id.
func (r *Resolver) Table(ref, currentCollection string) (*document.Table, string, error) {
	col := r.doc.Collection(currentCollection)
	if col != nil {
		if t := col.TableByID(ref); t != nil {
			return r.merge(col, t), col.ID, nil
		}
	}
	if target, rest, ok := r.splitRef(col, ref); ok {
		if t := target.TableByID(rest); t != nil {
			return r.merge(target, t), target.ID, nil
		}
	}
	return nil, "", fmt.Errorf("table %q (from %q): %w", ref, currentCollection, ErrNotFound)
}

// Template resolves a template reference, same rules as Table.
func (r *Resolver) Template(ref, currentCollection string) (*document.Template, string, error) {
	col := r.doc.Collection(currentCollection)
	if col != nil {
		if t := col.TemplateByID(ref); t != nil {
			return t, col.ID, nil
		}
	}
	if target, rest, ok := r.splitRef(col, ref); ok {
		if t := target.TemplateByID(rest); t != nil {
			return t, target.ID, nil
		}
	}
	return nil, "", fmt.Errorf("template %q (from %q): %w", ref, currentCollection, ErrNotFound)
}

// splitRef resolves the collection half of a dotted reference: an import
// alias first, then the longest collection-id prefix.
func (r *Resolver) splitRef(col *document.Collection, ref string) (*document.Collection, string, bool) {
	segs := strings.Split(ref, ".")
	if len(segs) < 2 {
		return nil, "", false
	}
	if col != nil {
		if target := col.AliasTarget(segs[0]); target != "" {
			if c := r.doc.Collection(target); c != nil {
				return c, strings.Join(segs[1:], "."), true
			}
		}
	}
	// Collection ids may themselves contain dots; prefer the longest match.
	for i := len(segs) - 1; i >= 1; i-- {
		prefix := strings.Join(segs[:i], ".")
		if c := r.doc.Collection(prefix); c != nil {
			return c, strings.Join(segs[i:], "."), true
		}
	}
	return nil, "", false
}

// merge applies table inheritance: ancestor entries come first, shared
// variables are merged with the child taking priority. Results are cached
// per resolver.
func (r *Resolver) merge(col *document.Collection, tbl *document.Table) *document.Table {
	if tbl.Extends == "" {
		return tbl
	}
	key := col.ID + "\x00" + tbl.ID
	if m, ok := r.merged[key]; ok {
		return m
	}

	parent := col.TableByID(tbl.Extends)
	if parent == nil {
		return tbl // validation rejects this; be lenient at runtime
	}
	parent = r.merge(col, parent)

	m := &document.Table{
		ID:          tbl.ID,
		Description: tbl.Description,
		Entries:     append(append([]*document.Entry{}, parent.Entries...), tbl.Entries...),
	}
	seen := map[string]bool{}
	for _, v := range tbl.Shared {
		m.Shared = append(m.Shared, v)
		seen[v.Name] = true
	}
	for _, v := range parent.Shared {
		if !seen[v.Name] {
			m.Shared = append(m.Shared, v)
		}
	}
	r.merged[key] = m
	return m
}
