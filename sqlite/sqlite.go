// Package sqlite provides SQLite-based storage implementations for rfqtrack services.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases for better write performance.
	// WAL is ~7x faster for writes and allows concurrent reads during writes.
	// Trade-off: creates additional -wal and -shm files alongside the database.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS projects (
			project_number TEXT PRIMARY KEY,
			project_path TEXT NOT NULL,
			last_scanned TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS partners (
			project_number TEXT NOT NULL REFERENCES projects(project_number) ON DELETE CASCADE,
			partner_name TEXT NOT NULL,
			partner_type TEXT NOT NULL DEFAULT '',
			partner_path TEXT NOT NULL DEFAULT '',
			last_scanned TEXT NOT NULL,
			PRIMARY KEY (project_number, partner_name)
		);

		CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			project_number TEXT NOT NULL,
			partner_name TEXT NOT NULL,
			partner_type TEXT NOT NULL DEFAULT '',
			direction TEXT NOT NULL,
			folder_name TEXT NOT NULL,
			folder_path TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			files TEXT NOT NULL DEFAULT '[]',
			content_hash TEXT NOT NULL,
			first_seen TEXT NOT NULL,
			last_checked TEXT NOT NULL,
			UNIQUE (project_number, partner_name, folder_name, content_hash),
			FOREIGN KEY (project_number, partner_name)
				REFERENCES partners(project_number, partner_name) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_partners_partner_name ON partners(partner_name);
		CREATE INDEX IF NOT EXISTS idx_submissions_partner ON submissions(project_number, partner_name, direction);
	`

	_, err := db.db.Exec(schema)
	return err
}
