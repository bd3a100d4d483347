// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nickandperla.net/rollscript/internal/dice"
	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/parser"
	"nickandperla.net/rollscript/internal/resolve"
	"nickandperla.net/rollscript/internal/token"
	"nickandperla.net/rollscript/internal/trace"
)

// Fatal evaluation errors. Everything else degrades to an empty string
// plus a context diagnostic.
var (
	ErrRecursionLimit  = errors.New("recursion limit exceeded")
	ErrUniqueExhausted = errors.New("unique entries exhausted")
	ErrSharedConflict  = errors.New("shared variable name conflict")
)

// Evaluator executes parsed patterns against one document. It holds only
// immutable configuration; all run state lives in a Context, so one
// Evaluator may serve concurrent runs as long as each run keeps its own
// Context.
type Evaluator struct {
	doc          *document.Document
	resolver     *resolve.Resolver
	rng          dice.Rand
	maxDepth     int
	maxExploding int
	overflow     document.OverflowPolicy
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRand substitutes the randomness source.
func WithRand(r dice.Rand) Option { return func(e *Evaluator) { e.rng = r } }

// WithMaxDepth overrides the document's recursion limit.
func WithMaxDepth(n int) Option { return func(e *Evaluator) { e.maxDepth = n } }

// WithMaxExplodingDice overrides the exploding-dice cap.
func WithMaxExplodingDice(n int) Option { return func(e *Evaluator) { e.maxExploding = n } }

// WithUniqueOverflow overrides the unique-exhaustion policy.
func WithUniqueOverflow(p document.OverflowPolicy) Option {
	return func(e *Evaluator) { e.overflow = p }
}

// New creates an evaluator for the document. Settings default from the
// document itself.
func New(doc *document.Document, opts ...Option) *Evaluator {
	e := &Evaluator{
		doc:          doc,
		resolver:     resolve.New(doc),
		maxDepth:     doc.MaxDepth(),
		maxExploding: doc.MaxExplodingDice(),
		overflow:     doc.UniqueOverflow(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewContext builds the run context for a generation starting in the
// given collection: static variables are loaded and document-level shared
// variables are evaluated once, in declaration order.
func (e *Evaluator) NewContext(collectionID string, rec *trace.Recorder) (*Context, error) {
	col := e.doc.Collection(collectionID)
	if col == nil {
		return nil, fmt.Errorf("collection %q: %w", collectionID, resolve.ErrNotFound)
	}
	ctx := newContext(rec)
	for _, v := range col.Variables {
		ctx.Static[v.Name] = v.Value
	}
	if err := e.EvaluateSharedVariables(col.Shared, ctx, collectionID); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (e *Evaluator) diceOpts() dice.Options {
	return dice.Options{Rand: e.rng, MaxExplodingDice: e.maxExploding}
}

// ExpressionOutput pairs one {{...}} body with the text it produced.
type ExpressionOutput struct {
	Raw    string
	Output string
}

// PatternResult is the full output of a pattern evaluation.
type PatternResult struct {
	Text    string
	Outputs []ExpressionOutput
}

// EvaluatePattern evaluates every {{...}} expression in a pattern and
// splices the results between the literal spans.
func (e *Evaluator) EvaluatePattern(pattern string, ctx *Context, collectionID string) (string, error) {
	res, err := e.EvaluatePatternWithOutputs(pattern, ctx, collectionID)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// EvaluatePatternWithOutputs evaluates a pattern and additionally reports
// the per-expression outputs in document order.
func (e *Evaluator) EvaluatePatternWithOutputs(pattern string, ctx *Context, collectionID string) (*PatternResult, error) {
	toks, err := parser.ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	res := &PatternResult{}
	for i := range toks {
		t := &toks[i]
		if t.Kind == token.LITERAL && t.Modifiers == nil {
			sb.WriteString(t.Literal)
			continue
		}
		out, err := e.evalToken(t, ctx, collectionID)
		if err != nil {
			return nil, err
		}
		res.Outputs = append(res.Outputs, ExpressionOutput{Raw: t.Raw, Output: out})
		sb.WriteString(out)
	}
	res.Text = sb.String()
	return res, nil
}

// evalToken computes a token's base value, then applies any trailing
// switch modifiers to it.
func (e *Evaluator) evalToken(t *token.Token, ctx *Context, col string) (string, error) {
	val, err := e.evalBase(t, ctx, col)
	if err != nil {
		return "", err
	}
	if t.Modifiers != nil {
		return e.applySwitch(t.Modifiers, val, true, ctx, col)
	}
	return val, nil
}

func (e *Evaluator) evalBase(t *token.Token, ctx *Context, col string) (string, error) {
	switch t.Kind {
	case token.LITERAL:
		return t.Literal, nil

	case token.DICE:
		res, err := dice.Roll(t.Dice, e.diceOpts())
		if err != nil {
			ctx.Diagf(Warn, "%v", err)
			return "", nil
		}
		ctx.Trace.Leaf("dice", t.Dice, res.Breakdown)
		return strconv.Itoa(res.Total), nil

	case token.MATH:
		n, ok := e.EvaluateMath(t.Math, ctx)
		if !ok {
			return "[math error]", nil
		}
		return strconv.Itoa(n), nil

	case token.VARIABLE:
		text, ok := e.lookupVariableText(t.Variable, ctx)
		if !ok {
			ctx.Diagf(Warn, "unresolved variable $%s", t.Variable)
			return "", nil
		}
		return text, nil

	case token.PLACEHOLDER:
		return e.evalPlaceholder(t.Placeholder, ctx), nil

	case token.AGAIN:
		return e.evalAgain(t.Repeat, ctx, col)

	case token.MULTI_ROLL:
		text, _, err := e.evalMultiRoll(t.Repeat, ctx, col)
		return text, err

	case token.INSTANCE:
		return e.evalInstance(t.Instance, ctx, col)

	case token.CAPTURE_ROLL:
		return e.evalCaptureRoll(t.Capture, ctx, col)

	case token.CAPTURE_ACCESS:
		return e.evalCaptureAccess(t.Access, ctx), nil

	case token.COLLECT:
		return e.evalCollect(t.Collect, ctx), nil

	case token.SWITCH:
		return e.applySwitch(t.Switch, "", false, ctx, col)

	case token.TABLE_REF:
		return e.evalTableRef(t.Table, ctx, col)
	}
	ctx.Diagf(Warn, "unhandled expression %q", t.Raw)
	return "", nil
}

func (e *Evaluator) evalTableRef(ref *token.TableRef, ctx *Context, col string) (string, error) {
	res, found, err := e.rollRef(ref.Ref, ctx, col, rollOpts{})
	if err != nil {
		return "", err
	}
	if !found {
		ctx.Diagf(Warn, "unknown reference %q (from collection %q)", ref.Ref, col)
		return "", nil
	}
	if res == nil {
		return "", nil
	}
	if len(ref.Props) > 0 {
		return e.walkCapture(res.Item(), ref.Props, ctx), nil
	}
	return res.Text, nil
}

// evalPlaceholder reads @name.prop against previously recorded sets.
// @self addresses the table currently being rolled.
func (e *Evaluator) evalPlaceholder(p *token.PlaceholderRef, ctx *Context) string {
	name := p.Name
	if name == "self" {
		if ctx.currentTable == nil {
			ctx.Diagf(Warn, "@self outside a table entry")
			return ""
		}
		if len(p.Props) == 1 && p.Props[0].Name == "description" {
			return ctx.currentDescription
		}
		name = ctx.currentTable.ID
	}
	sets, ok := ctx.Placeholders[name]
	if !ok {
		ctx.Diagf(Warn, "no placeholder values recorded for @%s", name)
		return ""
	}
	if len(p.Props) == 0 {
		ctx.Diagf(Warn, "@%s needs a property", name)
		return ""
	}
	v, ok := sets[p.Props[0].Name]
	if !ok {
		ctx.Diagf(Warn, "@%s has no property %q", name, p.Props[0].Name)
		return ""
	}
	if len(p.Props) == 1 {
		return v.String()
	}
	// Chained walk: every non-terminal link must be a full nested result.
	if v.Item == nil {
		ctx.Diagf(Warn, "@%s.%s is a plain value, cannot walk into it", name, p.Props[0].Name)
		return ""
	}
	return e.walkCapture(v.Item, p.Props[1:], ctx)
}

func (e *Evaluator) evalInstance(inst *token.Instance, ctx *Context, col string) (string, error) {
	if res, ok := ctx.instances[inst.Name]; ok {
		ctx.Trace.Leaf("instance", inst.Name, res.Text)
		return res.Text, nil
	}
	res, found, err := e.rollRef(inst.Ref, ctx, col, rollOpts{})
	if err != nil {
		return "", err
	}
	if !found {
		ctx.Diagf(Warn, "unknown reference %q (from collection %q)", inst.Ref, col)
		return "", nil
	}
	if res == nil {
		return "", nil
	}
	ctx.instances[inst.Name] = res
	return res.Text, nil
}

// walkCapture walks a property chain through a capture tree. The
// pseudo-properties value, count and description terminate the walk.
func (e *Evaluator) walkCapture(item *CaptureItem, props []token.Prop, ctx *Context) string {
	cur := item
	for i, p := range props {
		last := i == len(props)-1
		switch p.Name {
		case "value":
			return cur.Value
		case "count":
			return "1"
		case "description":
			return cur.Description
		}
		v, ok := cur.Sets[p.Name]
		if !ok {
			ctx.Diagf(Warn, "no property %q on captured value %q", p.Name, cur.Value)
			return ""
		}
		if last {
			return v.String()
		}
		if v.Item == nil {
			ctx.Diagf(Warn, "property %q is a plain value, cannot walk into it", p.Name)
			return ""
		}
		cur = v.Item
	}
	return cur.Value
}

// lookupVariableText resolves $name text: captures first (values joined
// with ", "), then shared, then static.
func (e *Evaluator) lookupVariableText(name string, ctx *Context) (string, bool) {
	if cv, ok := ctx.Captures[name]; ok {
		vals := make([]string, len(cv.Items))
		for i, it := range cv.Items {
			vals[i] = it.Value
		}
		return strings.Join(vals, ", "), true
	}
	if it, ok := ctx.Shared[name]; ok {
		return it.Value, true
	}
	if v, ok := ctx.Static[name]; ok {
		return v, true
	}
	return "", false
}

// resolveCount turns a repeat count into a number. Degraded resolution
// yields 0 with a diagnostic, so the repeat produces nothing.
func (e *Evaluator) resolveCount(c token.Count, ctx *Context) int {
	switch {
	case c.Var != "":
		base := strings.TrimSuffix(c.Var, ".count")
		if cv, ok := ctx.Captures[base]; ok {
			return cv.Count
		}
		if text, ok := e.lookupVariableText(c.Var, ctx); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
				return n
			}
		}
		ctx.Diagf(Warn, "count $%s did not resolve to a number", c.Var)
		return 0
	case c.Dice != "":
		res, err := dice.Roll(c.Dice, e.diceOpts())
		if err != nil {
			ctx.Diagf(Warn, "count %v", err)
			return 0
		}
		return res.Total
	default:
		return c.Literal
	}
}
