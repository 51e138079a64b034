// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and the go-sql-driver. Bulk loads run as batched INSERTs
// inside a transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"landingzone/internal/storage/sqlutil"
)

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a MySQL connection. The DSN uses go-sql-driver format,
// e.g. "user:pass@tcp(localhost:3306)/landing?parseTime=true".
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// CopyFrom inserts rows into table via a transaction and a prepared INSERT.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := sqlutil.InsertBatch(ctx, r.db, table, columns, rows, quoteIdent, func(int) string { return "?" })
	if err != nil {
		return n, fmt.Errorf("mysql: %w", err)
	}
	return n, nil
}

// Exec runs a statement; '?' placeholders are native to MySQL.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// Query materializes all result rows.
func (r *Repository) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	out, err := sqlutil.QueryAll(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: query: %w", err)
	}
	return out, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() { r.db.Close() }

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// QuoteIdent renders a backtick-quoted identifier.
func (r *Repository) QuoteIdent(id string) string { return quoteIdent(id) }
