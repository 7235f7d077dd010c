// Package store keeps a local SQLite ledger of localize runs and the
// outcome of every reference they fetched.
package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// pragmas applied to every ledger connection.
var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

// Store is the history ledger.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and brings its schema up to date.
// Missing parent directories are created.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := OpenRaw(path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure ledger: %w", err)
		}
	}
	// One writer at a time; the CLI never needs more.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenRaw opens the database file without touching its schema.
func OpenRaw(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	dsn := url.URL{Scheme: "file", Path: path}
	return sql.Open("sqlite", dsn.String())
}

// Close releases the database handle. It is safe on a nil store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RunExists reports whether a run id is already taken.
func (s *Store) RunExists(id string) (bool, error) {
	var one int
	switch err := s.db.QueryRow("SELECT 1 FROM runs WHERE id = ?", id).Scan(&one); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, err
	}
}
