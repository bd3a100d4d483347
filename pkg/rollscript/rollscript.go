// Package rollscript provides the public API for the rollscript
// random-table generator.
package rollscript

import (
	"fmt"

	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/eval"
	"nickandperla.net/rollscript/internal/store"
	"nickandperla.net/rollscript/internal/trace"
)

// Runtime is the rollscript generation runtime. It is safe for concurrent
// use: every generation call builds its own context.
type Runtime struct {
	doc       *document.Document
	docName   string
	docErr    error
	storedDoc string
	store     store.Store
	storeErr  error
	evalOpts  []eval.Option
	traceOn   bool
	evaluator *eval.Evaluator
}

// Result is the outcome of one generation call.
type Result struct {
	Text         string
	Diagnostics  []eval.Diagnostic
	Descriptions []eval.Description
	Trace        *trace.Node
}

// New creates a runtime with the given options. A document must be
// supplied via WithDocument, WithDocumentFile, or WithStoredDocument.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	if r.docErr != nil {
		return nil, r.docErr
	}
	if r.storeErr != nil {
		return nil, r.storeErr
	}
	if r.doc == nil && r.storedDoc != "" {
		if r.store == nil {
			return nil, fmt.Errorf("document %q: no store configured", r.storedDoc)
		}
		source, err := r.store.Get(r.storedDoc)
		if err != nil {
			return nil, err
		}
		if source == "" {
			return nil, fmt.Errorf("document %q not found in store", r.storedDoc)
		}
		doc, err := document.Parse([]byte(source))
		if err != nil {
			return nil, err
		}
		r.doc = doc
		r.docName = r.storedDoc
	}
	if r.doc == nil {
		return nil, fmt.Errorf("no document configured")
	}
	if err := document.Validate(r.doc); err != nil {
		return nil, err
	}
	r.evaluator = eval.New(r.doc, r.evalOpts...)
	return r, nil
}

// Document returns the loaded document.
func (r *Runtime) Document() *document.Document { return r.doc }

// Roll rolls a table (or evaluates a template) by reference and returns
// the generated text with its diagnostics, descriptions, and trace.
func (r *Runtime) Roll(collectionID, ref string) (*Result, error) {
	res, err := r.Evaluate(collectionID, "{{"+ref+"}}")
	if err != nil {
		return nil, err
	}
	r.logResult(ref, res.Text)
	return res, nil
}

// Evaluate runs an arbitrary pattern in the given collection's scope.
func (r *Runtime) Evaluate(collectionID, pattern string) (*Result, error) {
	var rec *trace.Recorder
	if r.traceOn {
		rec = trace.New()
	}
	ctx, err := r.evaluator.NewContext(collectionID, rec)
	if err != nil {
		return nil, err
	}
	text, err := r.evaluator.EvaluatePattern(pattern, ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:         text,
		Diagnostics:  ctx.Diagnostics(),
		Descriptions: ctx.Descriptions(),
		Trace:        rec.Root(),
	}, nil
}

// Results returns the recorded generation log for the loaded document,
// newest first. Requires a store that keeps results.
func (r *Runtime) Results(limit int) ([]store.ResultEntry, error) {
	rs, ok := r.store.(store.ResultStore)
	if !ok {
		return nil, nil
	}
	return rs.Results(r.docName, limit)
}

func (r *Runtime) logResult(ref, output string) {
	if rs, ok := r.store.(store.ResultStore); ok && r.docName != "" {
		// Logging must never fail a successful generation.
		_ = rs.AppendResult(r.docName, ref, output)
	}
}

// SaveDocument stores the given document source under a name.
func (r *Runtime) SaveDocument(name, source string) error {
	if r.store == nil {
		return fmt.Errorf("no store configured")
	}
	if _, err := document.Parse([]byte(source)); err != nil {
		return err
	}
	return r.store.Put(name, source)
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
