// Package mssql implements a SQL Server-backed storage.Repository using
// database/sql and the go-mssqldb driver. Bulk loads run as batched INSERTs
// inside a transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"landingzone/internal/storage"
	"landingzone/internal/storage/sqlutil"
)

// Repository is a SQL Server-backed implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	schema string
}

// NewRepository opens a SQL Server connection. schema defaults to "dbo" when
// empty.
func NewRepository(ctx context.Context, dsn, schema string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mssql: DSN must not be empty")
	}
	if schema == "" {
		schema = "dbo"
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}

	return &Repository{db: db, schema: schema}, nil
}

// CopyFrom inserts rows into table via a transaction and a prepared INSERT.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := sqlutil.InsertBatch(ctx, r.db, r.qualify(table), columns, rows, quoteIdent,
		func(i int) string { return fmt.Sprintf("@p%d", i) })
	if err != nil {
		return n, fmt.Errorf("mssql: %w", err)
	}
	return n, nil
}

// Exec runs a statement, rebinding '?' placeholders to @pN.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, storage.RebindPositional(query, "@p"), args...); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// Query materializes all result rows, rebinding '?' placeholders to @pN.
func (r *Repository) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	out, err := sqlutil.QueryAll(ctx, r.db, storage.RebindPositional(query, "@p"), args...)
	if err != nil {
		return nil, fmt.Errorf("mssql: query: %w", err)
	}
	return out, nil
}

// Close closes the underlying database handle.
func (r *Repository) Close() { r.db.Close() }

// qualify prefixes the configured schema. InsertBatch quotes each dotted
// segment separately via quoteIdent.
func (r *Repository) qualify(table string) string {
	return r.schema + "." + table
}

// quoteIdent renders [schema].[table] style identifiers, quoting each dotted
// segment on its own.
func quoteIdent(id string) string {
	parts := strings.Split(id, ".")
	for i, p := range parts {
		parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	}
	return strings.Join(parts, ".")
}

// QuoteIdent renders a bracket-quoted identifier.
func (r *Repository) QuoteIdent(id string) string { return quoteIdent(id) }
