// Copyright (c) 2025 Pyrun
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package history persists past runs in a local SQLite database so they can
// be reviewed with `pyrun history`. The store is file-local in the XDG state
// dir; use ":memory:" in tests.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one recorded submission.
type Run struct {
	ID         string
	Code       string
	Mode       string
	Stdout     string
	Error      string
	DurationMS int64
	CreatedAt  time.Time
}

// Succeeded reports whether the backend flagged the run as successful.
func (r *Run) Succeeded() bool { return r.Error == "" }

// DB wraps the SQLite connection pool.
type DB struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	code        TEXT NOT NULL,
	mode        TEXT NOT NULL,
	stdout      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

// New opens (and migrates) the history database at path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: pinging database: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: migrating schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error { return db.conn.Close() }

// Record stores one run. A missing ID is generated and CreatedAt defaults to
// now.
func (db *DB) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = xid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO runs (id, code, mode, stdout, error, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Code, run.Mode, run.Stdout, run.Error, run.DurationMS, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("history: recording run: %w", err)
	}
	return nil
}

// List returns the newest runs first, capped at limit.
func (db *DB) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, code, mode, stdout, error, duration_ms, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Code, &r.Mode, &r.Stdout, &r.Error, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scanning run: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Get returns one run by id, or ErrNotFound.
func (db *DB) Get(ctx context.Context, id string) (*Run, error) {
	var r Run
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, code, mode, stdout, error, duration_ms, created_at
		 FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Code, &r.Mode, &r.Stdout, &r.Error, &r.DurationMS, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: loading run: %w", err)
	}
	return &r, nil
}
