// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"fmt"
	"math/rand"
	"strings"

	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/token"
)

type rollOpts struct {
	// Unique consults and records the run-wide consumed-entry set.
	Unique bool
	// Exclude removes specific entry ids from this selection only.
	Exclude map[string]bool
}

// rollRef resolves a reference as a table first, then a template. found is
// false when the reference names neither; res may be nil when unique
// selection exhausted the table under the stop policy.
func (e *Evaluator) rollRef(ref string, ctx *Context, col string, opts rollOpts) (res *RollResult, found bool, err error) {
	if tbl, tcol, terr := e.resolver.Table(ref, col); terr == nil {
		res, err = e.rollTable(tbl, tcol, ctx, opts)
		return res, true, err
	}
	if tpl, pcol, terr := e.resolver.Template(ref, col); terr == nil {
		text, err := e.evalTemplate(tpl, pcol, ctx, col)
		if err != nil {
			return nil, true, err
		}
		return &RollResult{Text: text}, true, nil
	}
	return nil, false, nil
}

// RollTable rolls a resolved table by reference, with default selection.
func (e *Evaluator) RollTable(ref string, ctx *Context, collectionID string) (*RollResult, error) {
	tbl, tcol, err := e.resolver.Table(ref, collectionID)
	if err != nil {
		return nil, err
	}
	return e.rollTable(tbl, tcol, ctx, rollOpts{})
}

// rollTable selects and evaluates one entry. Sets are evaluated and merged
// into the placeholder map before the entry text, so @table.prop reads are
// stable from within the text itself.
func (e *Evaluator) rollTable(tbl *document.Table, tcol string, ctx *Context, opts rollOpts) (*RollResult, error) {
	release, err := ctx.enterDepth(tbl.ID, e.maxDepth)
	if err != nil {
		return nil, err
	}
	defer release()

	entry, err := e.selectEntry(tbl, ctx, opts)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	ctx.Trace.Begin("table", tbl.ID, entry.ID)

	if err := e.EvaluateTableSharedVariables(tbl.Shared, ctx, tcol); err != nil {
		ctx.Trace.End("")
		return nil, err
	}

	child := ctx.child()
	child.currentTable = tbl
	child.currentTableCol = tcol
	child.currentEntryID = entry.ID
	child.currentDescription = entry.Description

	sets, err := e.EvaluateSetValues(entry.Sets, child, tcol, tbl.ID)
	if err != nil {
		ctx.Trace.End("")
		return nil, err
	}

	text, err := e.EvaluatePattern(entry.Text, child, tcol)
	if err != nil {
		ctx.Trace.End("")
		return nil, err
	}

	if entry.Description != "" {
		*ctx.descriptions = append(*ctx.descriptions, Description{
			Table:       tbl.ID,
			Value:       text,
			Description: entry.Description,
			Depth:       *ctx.depth,
		})
	}

	ctx.Trace.End(text)
	return &RollResult{Text: text, EntryID: entry.ID, Description: entry.Description, Sets: sets}, nil
}

// selectEntry performs weighted selection. Unique mode skips consumed
// entries and applies the overflow policy once none remain; a non-unique
// selection with everything excluded falls back to the full table.
func (e *Evaluator) selectEntry(tbl *document.Table, ctx *Context, opts rollOpts) (*document.Entry, error) {
	cycled := false
	for {
		var used map[string]bool
		if opts.Unique {
			used = ctx.usedSet(tbl.ID)
		}
		cands := make([]*document.Entry, 0, len(tbl.Entries))
		total := 0
		for _, entry := range tbl.Entries {
			if used[entry.ID] || opts.Exclude[entry.ID] {
				continue
			}
			cands = append(cands, entry)
			total += entry.EffectiveWeight()
		}

		if len(cands) == 0 {
			if opts.Unique {
				if !cycled {
					switch e.overflow {
					case document.OverflowCycle:
						delete(ctx.used, tbl.ID)
						cycled = true
						continue
					case document.OverflowError:
						return nil, fmt.Errorf("%w: table %q", ErrUniqueExhausted, tbl.ID)
					default:
						return nil, nil
					}
				}
				// The cycle reset freed nothing: exclusions alone cover
				// the table. Stop rather than spin.
				ctx.Diagf(Warn, "table %q has no selectable entries", tbl.ID)
				return nil, nil
			}
			// Exclusion (again on a one-entry table) left nothing;
			// allow the repeat rather than fail.
			cands = tbl.Entries
			for _, entry := range cands {
				total += entry.EffectiveWeight()
			}
		}
		if len(cands) == 0 || total <= 0 {
			return nil, nil
		}

		r := e.intn(total)
		for _, entry := range cands {
			r -= entry.EffectiveWeight()
			if r < 0 {
				if opts.Unique {
					ctx.usedSet(tbl.ID)[entry.ID] = true
				}
				return entry, nil
			}
		}
		return cands[len(cands)-1], nil
	}
}

func (e *Evaluator) intn(n int) int {
	if e.rng != nil {
		return e.rng.Intn(n)
	}
	return rand.Intn(n)
}

// evalTemplate evaluates a template's pattern. A cross-collection call
// runs inside an isolation boundary: fresh placeholders, copied shared
// variables with the template's own names forced to re-evaluate.
func (e *Evaluator) evalTemplate(tpl *document.Template, tcol string, ctx *Context, callerCol string) (string, error) {
	release, err := ctx.enterDepth(tpl.ID, e.maxDepth)
	if err != nil {
		return "", err
	}
	defer release()

	tctx := ctx.child()
	if tcol != callerCol {
		own := make([]string, len(tpl.Shared))
		for i, v := range tpl.Shared {
			own[i] = v.Name
		}
		tctx = ctx.isolated(own)
	}
	if err := e.EvaluateTableSharedVariables(tpl.Shared, tctx, tcol); err != nil {
		return "", err
	}

	ctx.Trace.Begin("template", tpl.ID, "")
	text, err := e.EvaluatePattern(tpl.Pattern, tctx, tcol)
	if err != nil {
		ctx.Trace.End("")
		return "", err
	}
	ctx.Trace.End(text)
	return text, nil
}

// evalMultiRoll runs N*[unique*]ref and joins the results.
func (e *Evaluator) evalMultiRoll(rep *token.Repeat, ctx *Context, col string) (string, []*RollResult, error) {
	n := e.resolveCount(rep.Count, ctx)
	sep := ", "
	if rep.SepSet {
		sep = rep.Sep
	}
	var parts []string
	var results []*RollResult
	for i := 0; i < n; i++ {
		res, found, err := e.rollRef(rep.Ref, ctx, col, rollOpts{Unique: rep.Unique})
		if err != nil {
			return "", nil, err
		}
		if !found {
			ctx.Diagf(Warn, "unknown reference %q (from collection %q)", rep.Ref, col)
			break
		}
		if res == nil {
			break // unique selection exhausted under the stop policy
		}
		parts = append(parts, res.Text)
		results = append(results, res)
	}
	return strings.Join(parts, sep), results, nil
}

// evalAgain re-rolls the table currently being evaluated, excluding the
// entry that triggered it.
func (e *Evaluator) evalAgain(rep *token.Repeat, ctx *Context, col string) (string, error) {
	if ctx.currentTable == nil {
		ctx.Diagf(Warn, "again outside a table entry")
		return "", nil
	}
	n := e.resolveCount(rep.Count, ctx)
	sep := ", "
	if rep.SepSet {
		sep = rep.Sep
	}
	exclude := map[string]bool{ctx.currentEntryID: true}
	var parts []string
	for i := 0; i < n; i++ {
		res, err := e.rollTable(ctx.currentTable, ctx.currentTableCol, ctx, rollOpts{
			Unique:  rep.Unique,
			Exclude: exclude,
		})
		if err != nil {
			return "", err
		}
		if res == nil {
			break
		}
		parts = append(parts, res.Text)
	}
	return strings.Join(parts, sep), nil
}
