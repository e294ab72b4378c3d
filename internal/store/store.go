// Package store persists alignment runs to SQLite. It is grounded on the
// teacher's internal/storage/db.go: same WAL/foreign_keys/busy_timeout
// pragma set, same embed-schema-then-Exec bootstrap, same modernc.org/sqlite
// driver. The teacher generates its Queries type with sqlc from a
// separate schema/query pair compiled by a code generator we cannot
// invoke here; RunRepository instead hand-writes the same
// database/sql-based queries sqlc would have produced for this schema.
package store

import (
	_ "embed"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DB holds the underlying SQLite connection.
type DB struct {
	*sql.DB
}

// Open connects to path (creating its parent directory if needed),
// applies the teacher's pragma set, and bootstraps the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: set pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.DB.Close() }
