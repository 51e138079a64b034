// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Bulk loads run as batched INSERTs inside a transaction;
// SQLite has no dedicated bulk-load API like Postgres COPY, but transactions
// keep performance acceptable for landing-zone volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"landingzone/internal/storage/sqlutil"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite database. The DSN is passed directly to
// database/sql, e.g. "file:landing.db?cache=shared" or ":memory:".
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// A shared in-memory database disappears when the last connection
	// closes; keep a single connection so tests and short-lived runs behave.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	return &Repository{db: db}, nil
}

// CopyFrom inserts rows into table via a single transaction and a prepared
// INSERT statement.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := sqlutil.InsertBatch(ctx, r.db, table, columns, rows, quoteIdent, func(int) string { return "?" })
	if err != nil {
		return n, fmt.Errorf("sqlite: %w", err)
	}
	return n, nil
}

// Exec runs a statement; '?' placeholders are native to SQLite.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// Query materializes all result rows.
func (r *Repository) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	out, err := sqlutil.QueryAll(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	return out, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() { r.db.Close() }

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteIdent renders a double-quoted identifier.
func (r *Repository) QuoteIdent(id string) string { return quoteIdent(id) }
