package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ArtifactRow represents a row in the artifacts table.
//
// Folder is a stable label for the artifact folder (e.g. "resumes"), Name is
// the stored file name, Prefix/Seq are the parsed naming components (Seq is 0
// for files whose suffix could not be parsed) and Hash is the canonical
// content digest.
type ArtifactRow struct {
	Folder    string
	Name      string
	Prefix    string
	Seq       int
	Hash      string
	UpdatedAt time.Time
}

// Upsert inserts or replaces an artifact row.
func (db *DB) Upsert(a ArtifactRow) error {
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO artifacts (folder, name, prefix, seq, hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(folder, name) DO UPDATE SET
			prefix     = excluded.prefix,
			seq        = excluded.seq,
			hash       = excluded.hash,
			updated_at = excluded.updated_at
	`, a.Folder, a.Name, a.Prefix, a.Seq, a.Hash, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert artifact: %w", err)
	}
	return nil
}

// Delete removes an artifact row.
func (db *DB) Delete(folder, name string) error {
	if _, err := db.conn.Exec(`DELETE FROM artifacts WHERE folder = ? AND name = ?`, folder, name); err != nil {
		return fmt.Errorf("index: delete artifact: %w", err)
	}
	return nil
}

// LookupHash returns the stored name of the artifact with the given canonical
// hash, if one exists in the folder.
func (db *DB) LookupHash(folder, hash string) (string, bool, error) {
	var name string
	err := db.conn.QueryRow(
		`SELECT name FROM artifacts WHERE folder = ? AND hash = ? LIMIT 1`,
		folder, hash,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("index: lookup hash: %w", err)
	}
	return name, true, nil
}

// NextSeq returns 1 + the maximum sequence number used by the given prefix in
// the folder. Sequence numbers are never reused after deletion: the maximum
// reflects what the folder currently holds, so gaps stay gaps.
func (db *DB) NextSeq(folder, prefix string) (int, error) {
	var max int
	err := db.conn.QueryRow(
		`SELECT COALESCE(MAX(seq), 0) FROM artifacts WHERE folder = ? AND prefix = ?`,
		folder, prefix,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("index: next seq: %w", err)
	}
	return max + 1, nil
}

// AllNames returns every indexed artifact in the folder keyed by stored name.
func (db *DB) AllNames(folder string) (map[string]ArtifactRow, error) {
	rows, err := db.conn.Query(
		`SELECT folder, name, prefix, seq, hash, updated_at FROM artifacts WHERE folder = ?`,
		folder,
	)
	if err != nil {
		return nil, fmt.Errorf("index: all names: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ArtifactRow)
	for rows.Next() {
		var a ArtifactRow
		if err := rows.Scan(&a.Folder, &a.Name, &a.Prefix, &a.Seq, &a.Hash, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.Name] = a
	}
	return out, rows.Err()
}
