package postgres

import (
	"fmt"
	"strings"

	"landingzone/internal/ddl"
)

// BuildCreateTableSQL renders a Postgres CREATE TABLE IF NOT EXISTS statement.
// Identity columns use GENERATED BY DEFAULT AS IDENTITY so explicit key
// values remain possible in tests and backfills.
func BuildCreateTableSQL(t ddl.TableDef, schema string) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("postgres ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("postgres ddl: column with empty name in table %s", t.Name)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(mapType(c))

		if c.Identity {
			sb.WriteString(" GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY")
		} else if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := mapDefault(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())
	}

	fqn := quoteIdent(t.Name)
	if schema != "" {
		fqn = quoteIdent(schema) + "." + fqn
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		fqn,
		strings.Join(cols, ",\n  "),
	), nil
}

func mapType(c ddl.ColumnDef) string {
	switch c.Type {
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeBool:
		return "BOOLEAN"
	case ddl.TypeText:
		if c.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "TEXT"
	case ddl.TypeTime:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

func mapDefault(token string) string {
	switch token {
	case ddl.DefaultNow:
		return "CURRENT_TIMESTAMP"
	case ddl.DefaultTrue:
		return "TRUE"
	default:
		return ""
	}
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
