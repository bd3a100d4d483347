package store

import (
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]string
	results  []ResultEntry
	metadata map[string]string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]string),
		metadata: make(map[string]string),
	}
}

// Get retrieves a document source by name.
func (m *Memory) Get(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[name], nil
}

// Put stores a document source by name.
func (m *Memory) Put(name, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = source
	return nil
}

// Delete removes a document by name.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

// List returns the stored document names, sorted.
func (m *Memory) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// AppendResult records a generation result.
func (m *Memory) AppendResult(document, ref, output string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, ResultEntry{
		Document: document,
		Ref:      ref,
		Output:   output,
		Ts:       time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Results returns the most recent results for a document, newest first.
func (m *Memory) Results(document string, limit int) ([]ResultEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []ResultEntry
	for i := len(m.results) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if m.results[i].Document == document {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}
