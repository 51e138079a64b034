package mssql

import (
	"fmt"
	"strings"

	"landingzone/internal/ddl"
)

// BuildCreateTableSQL renders a T-SQL script that creates the table when it
// does not exist. T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement
// is wrapped in an IF OBJECT_ID(...) IS NULL guard:
//
//	IF OBJECT_ID(N'[dbo].[FolderConfig]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[FolderConfig] ( ... );
//	END;
func BuildCreateTableSQL(t ddl.TableDef, schema string) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("mssql ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("mssql ddl: at least one column is required")
	}
	if schema == "" {
		schema = "dbo"
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("mssql ddl: column with empty name in table %s", t.Name)
		}

		var sb strings.Builder
		sb.WriteString(quoteIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(mapType(c))

		if c.Identity {
			sb.WriteString(" IDENTITY(1,1) PRIMARY KEY")
		} else if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}

		if def := mapDefault(c); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())
	}

	fqn := quoteIdent(schema + "." + t.Name)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		fqn,
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

func mapType(c ddl.ColumnDef) string {
	switch c.Type {
	case ddl.TypeInt:
		return "BIGINT"
	case ddl.TypeBool:
		return "BIT"
	case ddl.TypeText:
		if c.Length > 0 {
			return fmt.Sprintf("NVARCHAR(%d)", c.Length)
		}
		return "NVARCHAR(MAX)"
	case ddl.TypeTime:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

func mapDefault(c ddl.ColumnDef) string {
	switch c.Default {
	case ddl.DefaultNow:
		return "SYSDATETIME()"
	case ddl.DefaultTrue:
		// BIT has no TRUE literal.
		return "1"
	default:
		return ""
	}
}
