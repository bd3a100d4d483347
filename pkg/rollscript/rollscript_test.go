package rollscript

import (
	"path/filepath"
	"testing"
)

const campDoc = `
collections:
  - id: camp
    variables:
      leader: Borin
    tables:
      - id: color
        entries: [{text: red}]
      - id: npc
        entries:
          - text: "{{@npc.name}} guards the fire"
            sets:
              name: Olga
`

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	opts = append([]Option{
		WithDocumentSource([]byte(campDoc)),
		WithSeed(1),
	}, opts...)
	rt, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return rt
}

func TestRoll(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close()

	res, err := rt.Roll("camp", "npc")
	if err != nil {
		t.Fatalf("Roll failed: %v", err)
	}
	if res.Text != "Olga guards the fire" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Trace != nil {
		t.Error("trace should be off by default")
	}
}

func TestEvaluate(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close()

	res, err := rt.Evaluate("camp", "{{$leader}} sees {{2*color}}")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Text != "Borin sees red, red" {
		t.Errorf("text = %q", res.Text)
	}
}

func TestDiagnosticsSurface(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close()

	res, err := rt.Evaluate("camp", "{{ghost}}")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Text != "" {
		t.Errorf("text = %q, want empty", res.Text)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("expected diagnostics for an unknown reference")
	}
}

func TestTraceEnabled(t *testing.T) {
	rt := newTestRuntime(t, WithTrace())
	defer rt.Close()

	res, err := rt.Roll("camp", "color")
	if err != nil {
		t.Fatalf("Roll failed: %v", err)
	}
	if res.Trace == nil {
		t.Fatal("trace missing")
	}
	if len(res.Trace.Children) == 0 {
		t.Error("trace tree is empty")
	}
}

func TestInvalidDocumentRejected(t *testing.T) {
	_, err := New(WithDocumentSource([]byte(`
collections:
  - id: c
    tables:
      - id: hollow
`)))
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestNoDocument(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected an error without a document")
	}
}

func TestSQLiteStoreErrorSurfaces(t *testing.T) {
	_, err := New(
		WithDocumentSource([]byte(campDoc)),
		WithSQLiteStore(filepath.Join(t.TempDir(), "missing", "sub", "x.db")),
	)
	if err == nil {
		t.Fatal("expected an error for an unusable database path")
	}
}

func TestStoredDocuments(t *testing.T) {
	rt := newTestRuntime(t, WithMemoryStore())
	defer rt.Close()

	if err := rt.SaveDocument("camp", campDoc); err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}
	// Bad YAML never reaches the store.
	if err := rt.SaveDocument("broken", "tables: ["); err == nil {
		t.Error("expected a parse error")
	}

	rt2, err := New(
		WithMemoryStore(),
		WithStoredDocument("camp"),
	)
	if err == nil {
		rt2.Close()
		t.Fatal("a different store should not see the document")
	}
}
