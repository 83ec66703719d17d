// Package index provides the SQLite-backed hash->name index for artifact
// folders. It exists so a save does not rehash every stored file: dedup
// lookups and sequence allocation are single indexed queries, and the
// sequence number is a structured field instead of being re-parsed from
// file names on every call.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS artifacts (
	folder     TEXT NOT NULL,
	name       TEXT NOT NULL,
	prefix     TEXT NOT NULL DEFAULT '',
	seq        INTEGER NOT NULL DEFAULT 0,
	hash       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (folder, name)
);

CREATE INDEX IF NOT EXISTS idx_artifacts_hash ON artifacts(folder, hash);
CREATE INDEX IF NOT EXISTS idx_artifacts_seq  ON artifacts(folder, prefix, seq);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
