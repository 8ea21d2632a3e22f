package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens the SQLite ledger database at the given path, creating the parent
// directory when needed. Concurrent writers wait on the busy timeout instead
// of failing with SQLITE_BUSY.
func New(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the ledger tables. It is idempotent.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (namespace, key)
		);`,
		`CREATE TABLE IF NOT EXISTS ingestions (
			path TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			status TEXT NOT NULL,
			book_id TEXT,
			title TEXT,
			author TEXT,
			chunks INTEGER NOT NULL DEFAULT 0,
			reason TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
