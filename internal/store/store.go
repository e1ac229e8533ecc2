// Package store persists binder run results to a SQLite catalog. The catalog
// is an audit trail of past runs and their Bates assignments; the engine
// never reads it back during a run.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pdfbinder/internal/manifest"
)

// Catalog implements run recording on SQLite.
type Catalog struct {
	db *sql.DB
}

// Open creates a new SQLite-backed catalog.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return c, nil
}

func (c *Catalog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		root TEXT NOT NULL,
		output TEXT NOT NULL,
		bates_start INTEGER NOT NULL,
		contents_pages INTEGER NOT NULL,
		contents_drift INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS run_items (
		run_id TEXT NOT NULL REFERENCES runs(id),
		idx TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		cover_pages INTEGER NOT NULL,
		content_pages INTEGER NOT NULL,
		bates INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_items_run ON run_items(run_id);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Record inserts one run and its items transactionally.
func (c *Catalog) Record(ctx context.Context, m *manifest.RunManifest) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, root, output, bates_start, contents_pages, contents_drift, duration_ms, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.RunID, m.StartedAt.Unix(), m.Root, m.Output, m.BatesStart, m.ContentsPages, m.ContentsDrift, m.Duration.Milliseconds(), m.Status,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, it := range m.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO run_items (run_id, idx, name, path, kind, cover_pages, content_pages, bates) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			m.RunID, it.Index, it.Name, it.Path, it.Kind, it.CoverPages, it.ContentPages, it.Bates,
		)
		if err != nil {
			return fmt.Errorf("insert run item %s: %w", it.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Runs returns the recorded run IDs, most recent first.
func (c *Catalog) Runs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}
