package storage

import (
	"context"
	"fmt"
	"sync"

	"landingzone/internal/ddl"
)

// DDLBootstrapper renders and applies CREATE TABLE statements for the given
// table definitions via repo.Exec. Creation is idempotent: each backend emits
// an existence guard (IF NOT EXISTS, or IF OBJECT_ID ... IS NULL on SQL
// Server), so bootstrapping an already-created schema is a no-op.
//
// Backends register their implementation for a storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, tables []ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the DDLBootstrapper for a storage kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTables locates the bootstrapper for kind and applies the table
// definitions. Callers stay backend-agnostic.
func EnsureTables(ctx context.Context, kind string, repo Repository, tables []ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return fn(ctx, repo, tables)
}
