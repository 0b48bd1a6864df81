// Package store persists finished entity graphs to SQLite. It is an
// output sink: the resolution pipeline never reads from it.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the graph tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the graph tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS modules (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  language        TEXT NOT NULL,
  entity_count    INTEGER NOT NULL DEFAULT 0,
  extracted_at    TIMESTAMP
);

CREATE TABLE IF NOT EXISTS entities (
  id              INTEGER PRIMARY KEY,
  fqn             TEXT NOT NULL,
  parent_id       INTEGER REFERENCES entities(id),
  ordinal         INTEGER NOT NULL DEFAULT 0,
  title           TEXT,
  description     TEXT,
  kind            TEXT NOT NULL,
  member_kind     TEXT,
  language        TEXT NOT NULL,
  module          TEXT NOT NULL,
  start_offset    INTEGER,
  end_offset      INTEGER,
  repository      TEXT,
  refers_to       TEXT,
  meta            TEXT
);

CREATE TABLE IF NOT EXISTS diagnostics (
  id              INTEGER PRIMARY KEY,
  severity        TEXT NOT NULL,
  code            TEXT NOT NULL,
  module          TEXT,
  name            TEXT,
  detail          TEXT
);

CREATE INDEX IF NOT EXISTS idx_entities_fqn ON entities(fqn);
CREATE INDEX IF NOT EXISTS idx_entities_module ON entities(module);
CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities(parent_id);
CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
CREATE INDEX IF NOT EXISTS idx_entities_refers_to ON entities(refers_to);
CREATE INDEX IF NOT EXISTS idx_diagnostics_module ON diagnostics(module);
`

// Reset transactionally clears all graph data. Used before re-writing a
// full run into an existing database.
func (s *Store) Reset() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children before parents to respect the FK.
	if _, err := tx.Exec("UPDATE entities SET parent_id = NULL"); err != nil {
		return fmt.Errorf("clear entity parents: %w", err)
	}
	for _, q := range []string{
		"DELETE FROM entities",
		"DELETE FROM diagnostics",
		"DELETE FROM modules",
	} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return tx.Commit()
}
