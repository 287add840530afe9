// Package testutil provides shared test helpers for setting up vaults,
// output directories, and index databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary source vault with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	return tempProvider(t)
}

// TestSite creates a temporary publish output directory with a
// storage.Provider.
func TestSite(t *testing.T) (string, storage.Provider) {
	t.Helper()
	return tempProvider(t)
}

func tempProvider(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
