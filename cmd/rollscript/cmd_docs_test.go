package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDocsSaveValidatesDocument(t *testing.T) {
	dir := t.TempDir()
	flagDB = filepath.Join(dir, "test.db")
	defer func() { flagDB = "" }()

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("collections: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := docsSaveCmd.RunE(docsSaveCmd, []string{"bad", bad}); err == nil {
		t.Error("expected an error for a broken document")
	}

	good := filepath.Join(dir, "good.yaml")
	source := `
collections:
  - id: camp
    tables:
      - id: color
        entries: [{text: red}]
`
	if err := os.WriteFile(good, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := docsSaveCmd.RunE(docsSaveCmd, []string{"camp", good}); err != nil {
		t.Errorf("valid document rejected: %v", err)
	}
}
