package mysql

import (
	"fmt"
	"strings"

	"landingzone/internal/ddl"
)

// BuildCreateTableSQL renders a MySQL CREATE TABLE IF NOT EXISTS statement.
// Identity columns render as BIGINT AUTO_INCREMENT PRIMARY KEY; booleans as
// TINYINT(1).
func BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("mysql ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("mysql ddl: column with empty name in table %s", t.Name)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(mapType(c))

		if c.Identity {
			sb.WriteString(" AUTO_INCREMENT PRIMARY KEY")
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
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeBool:
		return "TINYINT(1)"
	case ddl.TypeText:
		if c.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "TEXT"
	case ddl.TypeTime:
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
