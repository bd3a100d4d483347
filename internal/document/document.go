// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package document defines the rollscript document model: collections of
// random tables and templates, their variables, and generation settings.
package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// OverflowPolicy controls what happens when unique selection exhausts a table.
type OverflowPolicy string

const (
	OverflowStop  OverflowPolicy = "stop"
	OverflowCycle OverflowPolicy = "cycle"
	OverflowError OverflowPolicy = "error"
)

// Valid reports whether the policy is one of the known values.
func (p OverflowPolicy) Valid() bool {
	switch p {
	case OverflowStop, OverflowCycle, OverflowError:
		return true
	}
	return false
}

// Settings holds per-document generation limits.
type Settings struct {
	MaxDepth         int            `yaml:"maxDepth"`
	MaxExplodingDice int            `yaml:"maxExplodingDice"`
	UniqueOverflow   OverflowPolicy `yaml:"uniqueOverflow"`
}

// Defaults applied when a document omits a setting.
const (
	DefaultMaxDepth         = 50
	DefaultMaxExplodingDice = 100
)

// VarDef is a single named variable with its source expression.
// Order matters: later definitions may reference earlier ones.
type VarDef struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// VarList is an ordered list of variable definitions. In YAML it may be
// written either as a mapping (declaration order is preserved) or as a
// sequence of {name, value} pairs.
type VarList []VarDef

// UnmarshalYAML decodes a mapping node keeping key order, or a sequence
// of explicit {name, value} entries.
func (v *VarList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(VarList, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			out = append(out, VarDef{
				Name:  node.Content[i].Value,
				Value: node.Content[i+1].Value,
			})
		}
		*v = out
		return nil
	case yaml.SequenceNode:
		var defs []VarDef
		if err := node.Decode(&defs); err != nil {
			return err
		}
		*v = defs
		return nil
	case 0:
		*v = nil
		return nil
	}
	return fmt.Errorf("line %d: variables must be a mapping or a sequence", node.Line)
}

// Get returns the value for name and whether it was found.
func (v VarList) Get(name string) (string, bool) {
	for _, d := range v {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// Import declares a cross-collection import with an optional alias.
type Import struct {
	Collection string `yaml:"collection"`
	Alias      string `yaml:"alias"`
}

// Entry is one selectable row of a table. Text and set values may contain
// {{...}} expressions.
type Entry struct {
	ID          string  `yaml:"id"`
	Weight      int     `yaml:"weight"`
	Text        string  `yaml:"text"`
	Description string  `yaml:"description"`
	Sets        VarList `yaml:"sets"`
}

// EffectiveWeight returns the entry weight, defaulting to 1.
func (e *Entry) EffectiveWeight() int {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}

// Table is a weighted random table. A table may extend another table, in
// which case the parent's entries are merged in ahead of its own.
type Table struct {
	ID          string   `yaml:"id"`
	Extends     string   `yaml:"extends"`
	Description string   `yaml:"description"`
	Entries     []*Entry `yaml:"entries"`
	Shared      VarList  `yaml:"shared"`
}

// Template is a named pattern with optional template-level shared variables.
type Template struct {
	ID          string  `yaml:"id"`
	Description string  `yaml:"description"`
	Pattern     string  `yaml:"pattern"`
	Shared      VarList `yaml:"shared"`
}

// Collection groups tables and templates under one namespace id.
type Collection struct {
	ID        string      `yaml:"id"`
	Imports   []Import    `yaml:"imports"`
	Variables VarList     `yaml:"variables"` // static variables
	Shared    VarList     `yaml:"shared"`    // document-level $vars
	Tables    []*Table    `yaml:"tables"`
	Templates []*Template `yaml:"templates"`
}

// TableByID returns the table with the given local id, or nil.
func (c *Collection) TableByID(id string) *Table {
	for _, t := range c.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TemplateByID returns the template with the given local id, or nil.
func (c *Collection) TemplateByID(id string) *Template {
	for _, t := range c.Templates {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AliasTarget resolves an import alias to a collection id, or "".
func (c *Collection) AliasTarget(alias string) string {
	for _, imp := range c.Imports {
		if imp.Alias == alias {
			return imp.Collection
		}
	}
	return ""
}

// Document is the root: a set of collections plus generation settings.
type Document struct {
	Settings    Settings      `yaml:"settings"`
	Collections []*Collection `yaml:"collections"`
}

// Collection returns the collection with the given id, or nil.
func (d *Document) Collection(id string) *Collection {
	for _, c := range d.Collections {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// MaxDepth returns the configured recursion limit, or the default.
func (d *Document) MaxDepth() int {
	if d.Settings.MaxDepth > 0 {
		return d.Settings.MaxDepth
	}
	return DefaultMaxDepth
}

// MaxExplodingDice returns the configured exploding-dice cap, or the default.
func (d *Document) MaxExplodingDice() int {
	if d.Settings.MaxExplodingDice > 0 {
		return d.Settings.MaxExplodingDice
	}
	return DefaultMaxExplodingDice
}

// UniqueOverflow returns the configured overflow policy, defaulting to stop.
func (d *Document) UniqueOverflow() OverflowPolicy {
	if d.Settings.UniqueOverflow.Valid() {
		return d.Settings.UniqueOverflow
	}
	return OverflowStop
}
