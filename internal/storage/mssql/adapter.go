// Wires the SQL Server backend into the storage factory and DDL registry.
package mssql

import (
	"context"
	"fmt"

	"landingzone/internal/ddl"
	"landingzone/internal/storage"
)

var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return newRepository(ctx, cfg.DSN, cfg.Schema)
	})

	storage.RegisterDDL("mssql", func(ctx context.Context, repo storage.Repository, tables []ddl.TableDef) error {
		schema := "dbo"
		if r, ok := repo.(*Repository); ok {
			schema = r.schema
		}
		for _, t := range tables {
			stmt, err := BuildCreateTableSQL(t, schema)
			if err != nil {
				return fmt.Errorf("render %s: %w", t.Name, err)
			}
			if err := repo.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
		}
		return nil
	})
}
