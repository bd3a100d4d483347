// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the typed instruction produced by parsing one
// {{...}} expression body.
package token

// Kind discriminates the closed set of expression token variants.
type Kind int

const (
	LITERAL Kind = iota
	TABLE_REF
	DICE
	MATH
	VARIABLE
	PLACEHOLDER
	AGAIN
	MULTI_ROLL
	INSTANCE
	CAPTURE_ROLL
	CAPTURE_ACCESS
	COLLECT
	SWITCH
)

// String returns the name of a token kind.
func (k Kind) String() string {
	switch k {
	case LITERAL:
		return "LITERAL"
	case TABLE_REF:
		return "TABLE_REF"
	case DICE:
		return "DICE"
	case MATH:
		return "MATH"
	case VARIABLE:
		return "VARIABLE"
	case PLACEHOLDER:
		return "PLACEHOLDER"
	case AGAIN:
		return "AGAIN"
	case MULTI_ROLL:
		return "MULTI_ROLL"
	case INSTANCE:
		return "INSTANCE"
	case CAPTURE_ROLL:
		return "CAPTURE_ROLL"
	case CAPTURE_ACCESS:
		return "CAPTURE_ACCESS"
	case COLLECT:
		return "COLLECT"
	case SWITCH:
		return "SWITCH"
	}
	return "UNKNOWN"
}

// Prop is one step of a property chain. Nested steps were written with a
// leading @ and continue a walk through captured roll results; plain steps
// terminate on a string value.
type Prop struct {
	Name   string
	Nested bool
}

// TableRef names a table or template, possibly through an alias or a
// dotted namespace, with an optional trailing property chain.
type TableRef struct {
	Ref   string // as written: "goblin", "nm.first", "core.monsters.goblin"
	Props []Prop
}

// PlaceholderRef is an @name[.prop[.@prop...]] access against the
// placeholders recorded by earlier rolls.
type PlaceholderRef struct {
	Name  string
	Props []Prop
}

// Count is a repeat count: a literal, a $variable reference, or a dice
// expression. Exactly one field is set.
type Count struct {
	Literal int
	Var     string
	Dice    string
}

// IsLiteral reports whether the count is a plain number.
func (c Count) IsLiteral() bool { return c.Var == "" && c.Dice == "" }

// Repeat describes N*table, again, and the roll half of a capture.
type Repeat struct {
	Count  Count
	Ref    string // empty for again
	Unique bool
	Sep    string
	SepSet bool
}

// Instance is a memoized roll: table#name.
type Instance struct {
	Ref  string
	Name string
}

// CaptureRoll is `N*table >> $var`, optionally unique/silent/separated.
type CaptureRoll struct {
	Repeat
	Var    string
	Silent bool
}

// CaptureAccess reads a capture variable: $var, $var[i], $var.count,
// $var[i].@prop..., $var.@prop..., optionally with a custom separator.
type CaptureAccess struct {
	Var      string
	HasIndex bool
	Index    int
	Props    []Prop
	Sep      string
	SepSet   bool
}

// Collect aggregates one property across a whole capture:
// collect:$var.prop[|unique][|"sep"].
type Collect struct {
	Var    string
	Prop   string
	Unique bool
	Sep    string
	SepSet bool
}

// SwitchClause is one cond:result pair; clauses are tried in order.
type SwitchClause struct {
	Cond   string
	Result string
}

// Switch is a clause list with an optional else result.
type Switch struct {
	Clauses []SwitchClause
	Else    string
	HasElse bool
}

// Token is the parsed form of one expression. Exactly the payload matching
// Kind is non-zero; Modifiers may accompany any non-SWITCH kind.
type Token struct {
	Kind Kind
	Raw  string // original expression body

	Literal     string
	Table       *TableRef
	Dice        string
	Math        string
	Variable    string // $name or $alias.name, without the $
	Placeholder *PlaceholderRef
	Repeat      *Repeat
	Instance    *Instance
	Capture     *CaptureRoll
	Access      *CaptureAccess
	Collect     *Collect
	Switch      *Switch

	// Modifiers is a trailing .switch[...]...else[...] chain applied after
	// the token's own value is computed.
	Modifiers *Switch
}
