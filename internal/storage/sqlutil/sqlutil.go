// Package sqlutil holds helpers shared by the database/sql backed storage
// backends (sqlite, mysql, mssql). The pgx-based Postgres backend has its own
// native paths.
package sqlutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QueryAll runs a query and materializes every row into []any slices. Column
// values keep whatever scan types the driver produced; callers normalize via
// the storage.As* helpers.
func QueryAll(ctx context.Context, db *sql.DB, query string, args ...any) ([][]any, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// InsertBatch inserts rows into table inside a single transaction using a
// prepared statement. quoteIdent renders identifiers for the target engine;
// placeholder renders the i-th (1-based) parameter marker ("?" or "@pN").
//
// Returns the number of rows inserted before any error.
func InsertBatch(
	ctx context.Context,
	db *sql.DB,
	table string,
	columns []string,
	rows [][]any,
	quoteIdent func(string) string,
	placeholder func(i int) string,
) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("insert batch: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = placeholder(i + 1)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(marks, ", "),
	)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert batch: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return inserted, fmt.Errorf("insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
