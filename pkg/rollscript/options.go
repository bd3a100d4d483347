package rollscript

import (
	"math/rand"

	"nickandperla.net/rollscript/internal/dice"
	"nickandperla.net/rollscript/internal/document"
	"nickandperla.net/rollscript/internal/eval"
	"nickandperla.net/rollscript/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithDocument uses an already loaded document.
func WithDocument(doc *document.Document) Option {
	return func(r *Runtime) {
		r.doc = doc
	}
}

// WithDocumentSource parses a document from YAML source.
func WithDocumentSource(source []byte) Option {
	return func(r *Runtime) {
		r.doc, r.docErr = document.Parse(source)
	}
}

// WithDocumentFile loads a document from a YAML file.
func WithDocumentFile(path string) Option {
	return func(r *Runtime) {
		r.doc, r.docErr = document.LoadFile(path)
		r.docName = path
	}
}

// WithStoredDocument loads a document by name from the configured store.
// The store option must come first.
func WithStoredDocument(name string) Option {
	return func(r *Runtime) {
		r.storedDoc = name
	}
}

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.storeErr = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore configures a custom store.
func WithStore(s store.Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithTrace enables execution-tree recording on every generation.
func WithTrace() Option {
	return func(r *Runtime) {
		r.traceOn = true
	}
}

// WithSeed makes generation deterministic for the given seed.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithRand substitutes the randomness source.
func WithRand(rng dice.Rand) Option {
	return func(r *Runtime) {
		r.evalOpts = append(r.evalOpts, eval.WithRand(rng))
	}
}

// WithMaxDepth overrides the document's recursion limit.
func WithMaxDepth(n int) Option {
	return func(r *Runtime) {
		r.evalOpts = append(r.evalOpts, eval.WithMaxDepth(n))
	}
}

// WithMaxExplodingDice overrides the exploding-dice cap.
func WithMaxExplodingDice(n int) Option {
	return func(r *Runtime) {
		r.evalOpts = append(r.evalOpts, eval.WithMaxExplodingDice(n))
	}
}

// WithUniqueOverflow overrides the unique-exhaustion policy.
func WithUniqueOverflow(p document.OverflowPolicy) Option {
	return func(r *Runtime) {
		r.evalOpts = append(r.evalOpts, eval.WithUniqueOverflow(p))
	}
}

// Store is the document persistence interface.
type Store = store.Store

// OverflowPolicy re-exports the unique-overflow policy type.
type OverflowPolicy = document.OverflowPolicy

// Overflow policy constants.
const (
	OverflowStop  = document.OverflowStop
	OverflowCycle = document.OverflowCycle
	OverflowError = document.OverflowError
)
