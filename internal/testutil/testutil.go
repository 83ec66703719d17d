// Package testutil provides shared test helpers for setting up artifact
// folders, the index database, and the dataset ledger.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/mannaz/internal/artifact"
	"github.com/starford/mannaz/internal/index"
	"github.com/starford/mannaz/internal/ledger"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mannaz-test-*.db")
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

// TestStores creates temporary résumé and job-description artifact stores
// sharing one index database.
func TestStores(t *testing.T) (resumes, jds *artifact.Store) {
	t.Helper()
	db := TestDB(t)

	resumes, err := artifact.New(t.TempDir(), "resumes", db)
	if err != nil {
		t.Fatal(err)
	}
	jds, err = artifact.New(t.TempDir(), "job_descriptions", db)
	if err != nil {
		t.Fatal(err)
	}
	return resumes, jds
}

// TestLedger creates a CSV ledger in a temporary directory.
func TestLedger(t *testing.T) *ledger.CSV {
	t.Helper()
	return ledger.NewCSV(filepath.Join(t.TempDir(), "dataset.csv"))
}
