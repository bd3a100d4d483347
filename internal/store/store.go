// Package store provides persistence for rollscript document sources and
// generation results.
package store

// Store is the interface for document persistence. Documents are kept as
// raw YAML source keyed by name.
type Store interface {
	// Get retrieves a document source by name. Returns "" if not found.
	Get(name string) (string, error)
	// Put stores a document source by name, overwriting if it exists.
	Put(name, source string) error
	// Delete removes a document by name.
	Delete(name string) error
	// List returns the stored document names, sorted.
	List() ([]string, error)
	// Close releases resources.
	Close() error
}

// ResultEntry is one recorded generation result.
type ResultEntry struct {
	Document string
	Ref      string
	Output   string
	Ts       string
}

// ResultStore extends Store with a generation-result log.
type ResultStore interface {
	Store
	AppendResult(document, ref, output string) error
	Results(document string, limit int) ([]ResultEntry, error)
}
