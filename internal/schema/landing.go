// Package schema declares the landing-zone tables and their seed data.
//
// The schema is deliberately loose: every value column is nullable free text
// sized at 500 characters so that arbitrary source data lands without
// truncation errors, and no foreign keys link FolderConfig, the landing
// tables, or ProcessingLog. The relationships exist only by convention
// (string matching on folder paths and table names). Typed interpretation of
// landed values is deferred to downstream consumers.
package schema

import "landingzone/internal/ddl"

// MaxValueLen is the declared length of every landing value column. The
// cleaner truncates longer cells before load so inserts never fail on length.
const MaxValueLen = 500

// Table names.
const (
	TableFolderConfig  = "FolderConfig"
	TableRootData      = "RootData"
	TableSalesData     = "SalesData"
	TableInventoryData = "InventoryData"
	TableProcessingLog = "ProcessingLog"
)

// FolderConfig maps a source folder path to a destination table. The empty
// folder path is a valid key and denotes the root folder. No uniqueness
// constraint is declared on FolderPath; resolution order is defined by the
// routing package, not the database.
var FolderConfig = ddl.TableDef{
	Name: TableFolderConfig,
	Columns: []ddl.ColumnDef{
		{Name: "ConfigID", Type: ddl.TypeInt, Identity: true},
		{Name: "FolderPath", Type: ddl.TypeText, Length: 500},
		{Name: "TargetTableName", Type: ddl.TypeText, Length: 128},
		{Name: "IsActive", Type: ddl.TypeBool, Nullable: true, Default: ddl.DefaultTrue},
	},
}

// ProcessingLog records one row per file-processing attempt. Nothing links a
// log row back to the landed rows it describes; auditing requires a manual
// join on file name and timestamps.
var ProcessingLog = ddl.TableDef{
	Name: TableProcessingLog,
	Columns: []ddl.ColumnDef{
		{Name: "LogID", Type: ddl.TypeInt, Identity: true},
		{Name: "FileName", Type: ddl.TypeText, Length: 255, Nullable: true},
		{Name: "FolderPath", Type: ddl.TypeText, Length: 500, Nullable: true},
		{Name: "TargetTable", Type: ddl.TypeText, Length: 128, Nullable: true},
		{Name: "OriginalRows", Type: ddl.TypeInt, Nullable: true},
		{Name: "CleanRows", Type: ddl.TypeInt, Nullable: true},
		{Name: "DirtyRows", Type: ddl.TypeInt, Nullable: true},
		{Name: "Status", Type: ddl.TypeText, Length: 50, Nullable: true},
		{Name: "ProcessedAt", Type: ddl.TypeTime, Nullable: true, Default: ddl.DefaultNow},
	},
}

// landingTable builds a per-folder landing table with the given number of
// untyped value columns. Column count is fixed at creation time; a new folder
// with a different width needs a new table.
func landingTable(name string, valueCols int) ddl.TableDef {
	cols := make([]ddl.ColumnDef, 0, valueCols+3)
	cols = append(cols,
		ddl.ColumnDef{Name: "LoadID", Type: ddl.TypeInt, Identity: true},
		ddl.ColumnDef{Name: "SourceFile", Type: ddl.TypeText, Length: 255, Nullable: true},
		ddl.ColumnDef{Name: "LoadTimestamp", Type: ddl.TypeTime, Nullable: true, Default: ddl.DefaultNow},
	)
	for i := 1; i <= valueCols; i++ {
		cols = append(cols, ddl.ColumnDef{
			Name:     valueColumnName(i),
			Type:     ddl.TypeText,
			Length:   MaxValueLen,
			Nullable: true,
		})
	}
	return ddl.TableDef{Name: name, Columns: cols}
}

var (
	RootData      = landingTable(TableRootData, 5)
	SalesData     = landingTable(TableSalesData, 7)
	InventoryData = landingTable(TableInventoryData, 6)
)

// Tables returns every table in creation order: configuration and log tables
// first, then the landing tables. The order is a convention, not a dependency;
// no DDL-level ordering is required.
func Tables() []ddl.TableDef {
	return []ddl.TableDef{FolderConfig, ProcessingLog, RootData, SalesData, InventoryData}
}

// SeedRoute is one initial FolderConfig row.
type SeedRoute struct {
	FolderPath      string
	TargetTableName string
}

// SeedRoutes returns the initial folder-to-table mappings. All are implicitly
// active (IsActive is left to its column default).
func SeedRoutes() []SeedRoute {
	return []SeedRoute{
		{FolderPath: "", TargetTableName: TableRootData},
		{FolderPath: "Sales", TargetTableName: TableSalesData},
		{FolderPath: "Inventory", TargetTableName: TableInventoryData},
	}
}

// landingWidths maps landing table name -> number of value columns.
var landingWidths = map[string]int{
	TableRootData:      5,
	TableSalesData:     7,
	TableInventoryData: 6,
}

// ValueColumns returns the number of ColN columns in the named landing table,
// or false when the name is not a known landing table.
func ValueColumns(table string) (int, bool) {
	n, ok := landingWidths[table]
	return n, ok
}

// InsertColumns returns the ordered column list used to insert into the named
// landing table: SourceFile followed by Col1..ColN. LoadID and LoadTimestamp
// are populated by the database and must not appear in the insert list.
func InsertColumns(table string) ([]string, bool) {
	n, ok := landingWidths[table]
	if !ok {
		return nil, false
	}
	cols := make([]string, 0, n+1)
	cols = append(cols, "SourceFile")
	for i := 1; i <= n; i++ {
		cols = append(cols, valueColumnName(i))
	}
	return cols, true
}

func valueColumnName(i int) string {
	// Col1..Col9 cover every landing table; avoid fmt for the hot path.
	return "Col" + string(rune('0'+i))
}
