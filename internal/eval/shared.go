// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"
	"strings"

	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/parser"
	"nickandperla.net/rollscript/internal/token"
)

// EvaluateSharedVariables evaluates document-level shared variables in
// declaration order, binding each before the next so later definitions
// may reference earlier ones.
func (e *Evaluator) EvaluateSharedVariables(vars document.VarList, ctx *Context, collectionID string) error {
	for _, def := range vars {
		item, err := e.evalSharedValue(def.Value, ctx, collectionID)
		if err != nil {
			return err
		}
		ctx.Shared[def.Name] = item
		ctx.docSharedNames[def.Name] = struct{}{}
	}
	return nil
}

// EvaluateTableSharedVariables evaluates table- or template-level shared
// variables. A name already bound in an outer scope is inherited, not
// re-evaluated; colliding with a document-level shared or static variable
// is a configuration error.
func (e *Evaluator) EvaluateTableSharedVariables(vars document.VarList, ctx *Context, collectionID string) error {
	for _, def := range vars {
		if _, ok := ctx.docSharedNames[def.Name]; ok {
			return fmt.Errorf("%w: %q is a document-level shared variable", ErrSharedConflict, def.Name)
		}
		if _, ok := ctx.Static[def.Name]; ok {
			return fmt.Errorf("%w: %q is a static variable", ErrSharedConflict, def.Name)
		}
		if _, ok := ctx.Shared[def.Name]; ok {
			continue
		}
		item, err := e.evalSharedValue(def.Value, ctx, collectionID)
		if err != nil {
			return err
		}
		ctx.Shared[def.Name] = item
	}
	return nil
}

// evalSharedValue evaluates one shared-variable source. A single bare
// table reference captures the full roll result, so property reads like
// $hero.@weapon keep working; anything else flattens to text.
func (e *Evaluator) evalSharedValue(value string, ctx *Context, collectionID string) (*CaptureItem, error) {
	if ref, ok := bareRef(value); ok {
		res, found, err := e.rollRef(ref, ctx, collectionID, rollOpts{})
		if err != nil {
			return nil, err
		}
		if found {
			if res == nil {
				return &CaptureItem{}, nil
			}
			return res.Item(), nil
		}
		// Not a known table or template; fall through to text evaluation.
	}
	text, err := e.EvaluatePattern(value, ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return &CaptureItem{Value: text}, nil
}

// EvaluateSetValues evaluates an entry's sets in declaration order and
// merges them into the table's placeholder map as it goes. A cycle
// (a set that, through nested rolls, re-enters its own evaluation) falls
// back to the raw source text.
func (e *Evaluator) EvaluateSetValues(sets document.VarList, ctx *Context, collectionID, tableID string) (map[string]SetValue, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]SetValue, len(sets))
	ph := ctx.placeholderSet(tableID)
	for _, def := range sets {
		key := tableID + "." + def.Name
		if ctx.evaluatingSets[key] {
			ctx.Diagf(Warn, "set %s references itself; using raw text", key)
			v := SetValue{Text: def.Value}
			out[def.Name] = v
			ph[def.Name] = v
			continue
		}
		ctx.evaluatingSets[key] = true
		v, err := e.evalSetValue(def.Value, ctx, collectionID)
		delete(ctx.evaluatingSets, key)
		if err != nil {
			return nil, err
		}
		out[def.Name] = v
		ph[def.Name] = v
	}
	return out, nil
}

// evalSetValue mirrors evalSharedValue: bare table references keep the
// nested result for later chained walks.
func (e *Evaluator) evalSetValue(value string, ctx *Context, collectionID string) (SetValue, error) {
	if ref, ok := bareRef(value); ok {
		res, found, err := e.rollRef(ref, ctx, collectionID, rollOpts{})
		if err != nil {
			return SetValue{}, err
		}
		if found {
			if res == nil {
				return SetValue{}, nil
			}
			return SetValue{Item: res.Item()}, nil
		}
	}
	text, err := e.EvaluatePattern(value, ctx, collectionID)
	if err != nil {
		return SetValue{}, err
	}
	return SetValue{Text: text}, nil
}

// bareRef reports whether a source string is exactly one {{ref}} with no
// surrounding text, no properties, and no modifiers.
func bareRef(value string) (string, bool) {
	segs := parser.Extract(value)
	var expr string
	found := false
	for _, seg := range segs {
		if seg.Expr {
			if found {
				return "", false
			}
			expr = seg.Text
			found = true
			continue
		}
		if strings.TrimSpace(seg.Text) != "" {
			return "", false
		}
	}
	if !found {
		return "", false
	}
	t, err := parser.Parse(expr)
	if err != nil || t.Kind != token.TABLE_REF || t.Modifiers != nil || len(t.Table.Props) > 0 {
		return "", false
	}
	return t.Table.Ref, true
}
