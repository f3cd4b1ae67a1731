package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// sqliteSchema mirrors migrations/ for the embedded engine. Timestamps are
// stored as Unix microseconds.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    title TEXT NOT NULL CHECK (length(title) BETWEEN 1 AND 90),
    details TEXT NOT NULL CHECK (length(details) BETWEEN 1 AND 800),
    option_a TEXT NOT NULL CHECK (length(option_a) BETWEEN 1 AND 40),
    option_b TEXT NOT NULL CHECK (length(option_b) BETWEEN 1 AND 40),
    category TEXT NOT NULL CHECK (category IN ('Career', 'Relationships', 'Lifestyle', 'Money (safe)', 'Other')),
    duration_hours INTEGER NOT NULL CHECK (duration_hours IN (24, 48, 72)),
    expires_at INTEGER NOT NULL,
    vote_count_a INTEGER NOT NULL DEFAULT 0 CHECK (vote_count_a >= 0),
    vote_count_b INTEGER NOT NULL DEFAULT 0 CHECK (vote_count_b >= 0),
    CHECK (expires_at = created_at + duration_hours * 3600000000)
);

CREATE INDEX IF NOT EXISTS idx_decisions_created_at ON decisions (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_decisions_expires_at ON decisions (expires_at);

CREATE TABLE IF NOT EXISTS votes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    decision_id TEXT NOT NULL REFERENCES decisions (id) ON DELETE CASCADE,
    voter_hash TEXT NOT NULL,
    choice TEXT NOT NULL CHECK (choice IN ('A', 'B')),
    created_at INTEGER NOT NULL,
    user_agent TEXT NOT NULL DEFAULT '' CHECK (length(user_agent) <= 300),
    UNIQUE (decision_id, voter_hash)
);

CREATE INDEX IF NOT EXISTS idx_votes_decision_id ON votes (decision_id);

CREATE TRIGGER IF NOT EXISTS decisions_expiry_immutable
BEFORE UPDATE OF created_at, expires_at, duration_hours ON decisions
BEGIN
    SELECT RAISE(ABORT, 'decision expiry is immutable');
END;

CREATE TRIGGER IF NOT EXISTS decisions_counters_monotonic
BEFORE UPDATE OF vote_count_a, vote_count_b ON decisions
WHEN NEW.vote_count_a < OLD.vote_count_a OR NEW.vote_count_b < OLD.vote_count_b
BEGIN
    SELECT RAISE(ABORT, 'vote counters never decrease');
END;
`

// SQLiteDropStatements removes everything the SQLite schema creates
var SQLiteDropStatements = []string{
	`DROP TABLE IF EXISTS votes`,
	`DROP TABLE IF EXISTS decisions`,
}

// SQLiteDB is the single-file store used for local development and tests
type SQLiteDB struct {
	DB *sql.DB
}

// NewSQLiteDB opens (creating if needed) the database at path and applies
// the schema.
func NewSQLiteDB(ctx context.Context, path string) (*SQLiteDB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite has a single writer; one connection keeps transactions strictly serial.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply sqlite schema: %w", err)
	}

	return &SQLiteDB{DB: db}, nil
}

// Close closes the underlying handle
func (db *SQLiteDB) Close() {
	if db.DB != nil {
		_ = db.DB.Close()
	}
}

// Health checks the database handle
func (db *SQLiteDB) Health(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
