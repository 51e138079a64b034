// Package storage contains the backend-agnostic repository contract and the
// factory registry that concrete backends (postgres, sqlite, mssql, mysql)
// plug into at init time. Callers select a backend by kind string and never
// import driver packages directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Config selects and configures a storage backend.
type Config struct {
	// Kind selects the backend implementation (e.g. "postgres", "sqlite").
	Kind string
	// DSN is the backend connection string, passed through verbatim.
	DSN string
	// Schema optionally qualifies table names (e.g. "public", "dbo").
	// Backends that have no schema concept ignore it.
	Schema string
}

// Repository is the minimal surface the ingester, router, and audit log need
// from a database backend.
//
// SQL passed to Exec and Query uses '?' placeholders; backends rebind to
// their native style ($N for Postgres, @pN for SQL Server). Table and column
// names are quoted by the backend.
type Repository interface {
	// CopyFrom bulk-inserts rows into table. Every row must align with the
	// columns order. Returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Exec runs a statement (DDL or DML) with optional '?' placeholder args.
	Exec(ctx context.Context, sql string, args ...any) error

	// Query runs a SELECT and materializes all result rows. Intended for the
	// small configuration and audit tables, not for bulk reads.
	Query(ctx context.Context, sql string, args ...any) ([][]any, error)

	// QuoteIdent renders an identifier in the engine's quoting style. Needed
	// because the schema uses mixed-case names: Postgres requires quoting to
	// preserve case and MySQL quotes with backticks, not double quotes.
	QuoteIdent(id string) string

	// Close releases the underlying pool or connection.
	Close()
}

// Factory builds a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. Called from
// backend packages' init functions; importing storage/all registers every
// built-in backend.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RebindPositional rewrites '?' placeholders into numbered ones using the
// given prefix ("$" for Postgres, "@p" for SQL Server). Question marks inside
// single-quoted literals are left alone.
func RebindPositional(sql, prefix string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	inLiteral := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteString(prefix)
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
