package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	require.NoError(t, s.Put("camp", "collections: []"))
	got, err := s.Get("camp")
	require.NoError(t, err)
	assert.Equal(t, "collections: []", got)

	require.NoError(t, s.Put("arena", "collections: []"))
	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"arena", "camp"}, names)

	require.NoError(t, s.Delete("camp"))
	got, err = s.Get("camp")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryResults(t *testing.T) {
	s := NewMemory()
	defer s.Close()

	require.NoError(t, s.AppendResult("camp", "npc", "Olga"))
	require.NoError(t, s.AppendResult("camp", "npc", "Borin"))
	require.NoError(t, s.AppendResult("other", "npc", "ignored"))

	got, err := s.Results("camp", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "Borin", got[0].Output)
	assert.Equal(t, "Olga", got[1].Output)

	got, err = s.Results("camp", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Borin", got[0].Output)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollscript.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)

	require.NoError(t, s.Put("camp", "collections: []"))
	got, err := s.Get("camp")
	require.NoError(t, err)
	assert.Equal(t, "collections: []", got)

	// Overwrite keeps a single row.
	require.NoError(t, s.Put("camp", "settings: {}"))
	got, err = s.Get("camp")
	require.NoError(t, err)
	assert.Equal(t, "settings: {}", got)

	require.NoError(t, s.AppendResult("camp", "npc", "Olga"))
	results, err := s.Results("camp", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "npc", results[0].Ref)

	version, err := s.GetMetadata("schema_version")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	require.NoError(t, s.Close())

	// Reopening an existing database must accept its schema version.
	s2, err := NewSQLite(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err = s2.Get("camp")
	require.NoError(t, err)
	assert.Equal(t, "settings: {}", got)
}

func TestSQLiteStoreRejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SetMetadata("schema_version", "999"))
	require.NoError(t, s.Close())

	_, err = NewSQLite(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}
