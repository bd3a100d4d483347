// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval implements the rollscript expression evaluator.
package eval

import (
	"fmt"

	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/trace"
)

// CaptureItem is the unit of capture: a rolled value plus the evaluated
// sets of the entry that produced it. Set values may themselves be
// CaptureItems, forming a tree walkable via $a.@b.@c.
type CaptureItem struct {
	Value       string
	Sets        map[string]SetValue
	Description string
}

// CaptureVariable is an ordered collection of roll results bound by
// `N*table >> $name`.
type CaptureVariable struct {
	Items []*CaptureItem
	Count int
}

// SetValue is an evaluated set entry: a plain string, or a full nested
// roll result when the source expression was a single bare table reference.
type SetValue struct {
	Text string
	Item *CaptureItem
}

// String extracts the raw value, unwrapping a nested item if present.
func (v SetValue) String() string {
	if v.Item != nil {
		return v.Item.Value
	}
	return v.Text
}

// Description is one collected (table, value, description) tuple with the
// recursion depth it was recorded at.
type Description struct {
	Table       string
	Value       string
	Description string
	Depth       int
}

// Level grades a diagnostic.
type Level int

const (
	Info Level = iota
	Warn
)

// Diagnostic is a recoverable-failure signal. The produced text stays
// silent (empty string or zero); tooling reads these instead.
type Diagnostic struct {
	Level   Level
	Message string
}

// Context is the mutable environment threaded through every evaluation.
// Most fields are shared by reference into nested scopes so run-global
// invariants hold across the whole generation; the transient "self"
// fields are per-call and never inherited.
type Context struct {
	// Shared by reference across all scopes.
	Static         map[string]string
	Shared         map[string]*CaptureItem
	docSharedNames map[string]struct{}
	Placeholders   map[string]map[string]SetValue
	Captures       map[string]*CaptureVariable
	depth          *int
	used           map[string]map[string]bool
	instances      map[string]*RollResult
	evaluatingSets map[string]bool
	descriptions   *[]Description
	diags          *[]Diagnostic
	Trace          *trace.Recorder

	// Transient self state for {{again}} and {{@self.*}}; per call.
	currentTable       *document.Table
	currentTableCol    string
	currentEntryID     string
	currentDescription string
}

func newContext(rec *trace.Recorder) *Context {
	depth := 0
	return &Context{
		Static:         make(map[string]string),
		Shared:         make(map[string]*CaptureItem),
		docSharedNames: make(map[string]struct{}),
		Placeholders:   make(map[string]map[string]SetValue),
		Captures:       make(map[string]*CaptureVariable),
		depth:          &depth,
		used:           make(map[string]map[string]bool),
		instances:      make(map[string]*RollResult),
		evaluatingSets: make(map[string]bool),
		descriptions:   &[]Description{},
		diags:          &[]Diagnostic{},
		Trace:          rec,
	}
}

// child copies the context for a nested call: maps stay shared, the
// transient self state is cleared.
func (c *Context) child() *Context {
	nc := *c
	nc.currentTable = nil
	nc.currentTableCol = ""
	nc.currentEntryID = ""
	nc.currentDescription = ""
	return &nc
}

// isolated builds the sub-context for a cross-collection template: the
// placeholder map starts empty and the shared-variable map is a copy with
// the template's own names pre-deleted so they re-evaluate inside the
// boundary. Everything else stays shared so global invariants hold.
func (c *Context) isolated(ownShared []string) *Context {
	nc := c.child()
	nc.Placeholders = make(map[string]map[string]SetValue)
	shared := make(map[string]*CaptureItem, len(c.Shared))
	for k, v := range c.Shared {
		shared[k] = v
	}
	for _, name := range ownShared {
		delete(shared, name)
	}
	nc.Shared = shared
	return nc
}

// Diagf records a recoverable-failure diagnostic.
func (c *Context) Diagf(level Level, format string, args ...any) {
	*c.diags = append(*c.diags, Diagnostic{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Diagnostics returns the diagnostics recorded so far, in order.
func (c *Context) Diagnostics() []Diagnostic { return *c.diags }

// Descriptions returns the collected description log, in order.
func (c *Context) Descriptions() []Description { return *c.descriptions }

// Depth returns the current recursion depth.
func (c *Context) Depth() int { return *c.depth }

// enterDepth increments the shared recursion counter, failing once the
// limit is exceeded. The release func must run on every exit path.
func (c *Context) enterDepth(ref string, max int) (release func(), err error) {
	*c.depth++
	if *c.depth > max {
		*c.depth--
		return nil, fmt.Errorf("%w: %q exceeded max depth %d", ErrRecursionLimit, ref, max)
	}
	return func() { *c.depth-- }, nil
}

// placeholderSet returns the (created on demand) placeholder map for a table.
func (c *Context) placeholderSet(tableID string) map[string]SetValue {
	ph, ok := c.Placeholders[tableID]
	if !ok {
		ph = make(map[string]SetValue)
		c.Placeholders[tableID] = ph
	}
	return ph
}

// usedSet returns the (created on demand) consumed-entry set for a table.
func (c *Context) usedSet(tableID string) map[string]bool {
	u, ok := c.used[tableID]
	if !ok {
		u = make(map[string]bool)
		c.used[tableID] = u
	}
	return u
}

// RollResult is the outcome of rolling one table entry.
type RollResult struct {
	Text        string
	EntryID     string
	Description string
	Sets        map[string]SetValue
}

// Item converts a roll result into the capture form.
func (r *RollResult) Item() *CaptureItem {
	return &CaptureItem{Value: r.Text, Sets: r.Sets, Description: r.Description}
}
