// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. Bulk loads go through the native COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"landingzone/internal/storage"
)

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool   *pgxpool.Pool
	schema string
}

// NewRepository opens a pgx pool. schema optionally qualifies table names
// (defaults to the connection's search_path when empty).
func NewRepository(ctx context.Context, dsn, schema string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, schema: schema}, nil
}

// CopyFrom streams rows into table via the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := r.pool.CopyFrom(ctx, r.identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Exec runs a statement, rebinding '?' placeholders to $N.
func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, storage.RebindPositional(query, "$"), args...); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// Query materializes all result rows, rebinding '?' placeholders to $N.
func (r *Repository) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	rows, err := r.pool.Query(ctx, storage.RebindPositional(query, "$"), args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (r *Repository) Close() { r.pool.Close() }

func (r *Repository) identifier(table string) pgx.Identifier {
	if r.schema != "" {
		return pgx.Identifier{r.schema, table}
	}
	return pgx.Identifier{table}
}

// QuoteIdent renders a double-quoted identifier.
func (r *Repository) QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
