// Package ddl defines a small, database-agnostic table definition model.
// Storage backends render these definitions into engine-specific CREATE TABLE
// statements (identifier quoting, identity syntax, and default expressions
// all vary per engine).
package ddl

// Column types understood by every backend renderer. Text columns carry a
// Length; the other kinds ignore it.
const (
	TypeInt  = "integer"
	TypeText = "text"
	TypeBool = "boolean"
	TypeTime = "datetime"
)

// Default expression tokens. Backends translate these into the engine's
// native spelling (e.g. CURRENT_TIMESTAMP, or 1 for booleans on SQL Server).
const (
	DefaultNow  = "now"
	DefaultTrue = "true"
)

// ColumnDef describes a single column.
//
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Type: one of the Type* constants above
//   - Length: character length for TypeText columns
//   - Identity: engine-generated ascending key; implies PrimaryKey
//   - Default: one of the Default* tokens, or empty
type ColumnDef struct {
	Name     string
	Type     string
	Length   int
	Nullable bool
	Identity bool
	Default  string
}

// TableDef holds a table name and its ordered column list. Name is expected
// unqualified; backends may prepend a schema qualifier from configuration.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// Column returns the definition for the named column and whether it exists.
func (t TableDef) Column(name string) (ColumnDef, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}
