// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"strconv"
	"strings"

	"nickandperla.net/rollscript/internal/token"
)

// evalCaptureRoll executes `N*table >> $var`: the rolls are stored as a
// capture variable and, unless silent, also rendered inline.
func (e *Evaluator) evalCaptureRoll(c *token.CaptureRoll, ctx *Context, col string) (string, error) {
	text, results, err := e.evalMultiRoll(&c.Repeat, ctx, col)
	if err != nil {
		return "", err
	}
	items := make([]*CaptureItem, len(results))
	for i, res := range results {
		items[i] = res.Item()
	}

	if _, ok := ctx.Captures[c.Var]; ok {
		ctx.Diagf(Info, "capture $%s overwrites an earlier capture", c.Var)
	} else if _, ok := ctx.Shared[c.Var]; ok {
		ctx.Diagf(Warn, "capture $%s shadows a shared variable", c.Var)
	} else if _, ok := ctx.Static[c.Var]; ok {
		ctx.Diagf(Warn, "capture $%s shadows a static variable", c.Var)
	}
	ctx.Captures[c.Var] = &CaptureVariable{Items: items, Count: len(items)}

	if c.Silent {
		return "", nil
	}
	return text, nil
}

// captureFor fetches a capture variable, falling back to a shared
// variable viewed as a single-item capture.
func (e *Evaluator) captureFor(name string, ctx *Context) *CaptureVariable {
	if cv, ok := ctx.Captures[name]; ok {
		return cv
	}
	if it, ok := ctx.Shared[name]; ok {
		return &CaptureVariable{Items: []*CaptureItem{it}, Count: 1}
	}
	return nil
}

// evalCaptureAccess reads a capture: whole, indexed, or via a property
// chain. Out-of-range indexes and missing captures degrade to "".
func (e *Evaluator) evalCaptureAccess(a *token.CaptureAccess, ctx *Context) string {
	cv := e.captureFor(a.Var, ctx)
	if cv == nil {
		ctx.Diagf(Warn, "unresolved variable $%s", a.Var)
		return ""
	}
	sep := ", "
	if a.SepSet {
		sep = a.Sep
	}

	if a.HasIndex {
		idx := a.Index
		if idx < 0 {
			idx += len(cv.Items)
		}
		if idx < 0 || idx >= len(cv.Items) {
			ctx.Diagf(Warn, "$%s[%d] is out of range (have %d)", a.Var, a.Index, len(cv.Items))
			return ""
		}
		item := cv.Items[idx]
		if len(a.Props) == 0 {
			return item.Value
		}
		return e.walkCapture(item, a.Props, ctx)
	}

	if len(a.Props) == 0 {
		return joinValues(cv.Items, sep)
	}
	if len(a.Props) == 1 && a.Props[0].Name == "count" {
		return strconv.Itoa(cv.Count)
	}
	if len(a.Props) == 1 && a.Props[0].Name == "value" {
		return joinValues(cv.Items, sep)
	}
	// Property read across the whole capture, one result per item.
	vals := make([]string, 0, len(cv.Items))
	for _, item := range cv.Items {
		vals = append(vals, e.walkCapture(item, a.Props, ctx))
	}
	return strings.Join(vals, sep)
}

// evalCollect aggregates one property across every item of a capture.
// Items missing the property are skipped with a diagnostic.
func (e *Evaluator) evalCollect(c *token.Collect, ctx *Context) string {
	cv := e.captureFor(c.Var, ctx)
	if cv == nil {
		ctx.Diagf(Warn, "unresolved variable $%s", c.Var)
		return ""
	}
	sep := ", "
	if c.SepSet {
		sep = c.Sep
	}
	var vals []string
	seen := map[string]bool{}
	for _, item := range cv.Items {
		var v string
		switch c.Prop {
		case "value":
			v = item.Value
		case "description":
			v = item.Description
		default:
			sv, ok := item.Sets[c.Prop]
			if !ok {
				ctx.Diagf(Info, "collect: %q missing property %q", item.Value, c.Prop)
				continue
			}
			v = sv.String()
		}
		if c.Unique {
			if seen[v] {
				continue
			}
			seen[v] = true
		}
		vals = append(vals, v)
	}
	return strings.Join(vals, sep)
}

func joinValues(items []*CaptureItem, sep string) string {
	vals := make([]string, len(items))
	for i, it := range items {
		vals[i] = it.Value
	}
	return strings.Join(vals, sep)
}
