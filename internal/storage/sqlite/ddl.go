package sqlite

import (
	"fmt"
	"strings"

	"landingzone/internal/ddl"
)

// BuildCreateTableSQL renders a SQLite CREATE TABLE IF NOT EXISTS statement
// for the given table definition.
//
// Identity columns render as INTEGER PRIMARY KEY, which SQLite treats as an
// alias for the auto-assigned rowid. Booleans are INTEGER 0/1.
func BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("sqlite ddl: column with empty name in table %s", t.Name)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(mapType(c))

		if c.Identity {
			sb.WriteString(" PRIMARY KEY")
		} else if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := mapDefault(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		quoteIdent(t.Name),
		strings.Join(cols, ",\n  "),
	), nil
}

func mapType(c ddl.ColumnDef) string {
	switch c.Type {
	case ddl.TypeInt, ddl.TypeBool:
		return "INTEGER"
	case ddl.TypeText:
		if c.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "TEXT"
	case ddl.TypeTime:
		// Stored as text; CURRENT_TIMESTAMP renders "YYYY-MM-DD HH:MM:SS".
		return "DATETIME"
	default:
		return "TEXT"
	}
}

func mapDefault(token string) string {
	switch token {
	case ddl.DefaultNow:
		return "CURRENT_TIMESTAMP"
	case ddl.DefaultTrue:
		return "1"
	default:
		return ""
	}
}
