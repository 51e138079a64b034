// Wires the MySQL backend into the storage factory and DDL registry.
package mysql

import (
	"context"
	"fmt"

	"landingzone/internal/ddl"
	"landingzone/internal/storage"
)

var newRepository = NewRepository

var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return newRepository(ctx, cfg.DSN)
	})

	storage.RegisterDDL("mysql", func(ctx context.Context, repo storage.Repository, tables []ddl.TableDef) error {
		for _, t := range tables {
			stmt, err := BuildCreateTableSQL(t)
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
