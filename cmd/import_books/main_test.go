package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-circulation/library"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestImportBooks(t *testing.T) {
	path := writeCatalog(t, `
- title: Noli Me Tangere
  category: Fiction
- title: "  "
  category: Nothing
- title: The Art of War
  category: Strategy
`)
	entries, err := loadCatalog(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	dbPath := filepath.Join(t.TempDir(), "library.db")
	var out bytes.Buffer
	require.NoError(t, importBooks(context.Background(), &out, dbPath, entries))
	assert.Contains(t, out.String(), "Successfully imported: 2 books")
	assert.Contains(t, out.String(), "Errors: 1")

	mgr, err := library.NewLibraryManager(dbPath)
	require.NoError(t, err)
	defer mgr.Close()
	books, err := mgr.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "The Art of War", books[1].Title)
	assert.True(t, books[1].Available)
}

func TestLoadCatalogRejectsMalformedYAML(t *testing.T) {
	_, err := loadCatalog(writeCatalog(t, "title: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse catalog")

	_, err = loadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalog")
}
