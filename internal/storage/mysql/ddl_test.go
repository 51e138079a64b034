package mysql

import (
	"strings"
	"testing"

	"landingzone/internal/ddl"
	"landingzone/internal/schema"
)

func TestBuildCreateTableSQL(t *testing.T) {
	sql, err := BuildCreateTableSQL(schema.RootData)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `RootData`",
		"`LoadID` BIGINT AUTO_INCREMENT PRIMARY KEY",
		"`SourceFile` VARCHAR(255)",
		"`LoadTimestamp` DATETIME DEFAULT CURRENT_TIMESTAMP",
		"`Col5` VARCHAR(500)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("DDL missing %q:\n%s", want, sql)
		}
	}
}

func TestBuildCreateTableSQLBoolDefault(t *testing.T) {
	sql, err := BuildCreateTableSQL(schema.FolderConfig)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if !strings.Contains(sql, "`IsActive` TINYINT(1) DEFAULT 1") {
		t.Errorf("bool default expected:\n%s", sql)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	if _, err := BuildCreateTableSQL(ddl.TableDef{}); err == nil {
		t.Error("expected error for empty table name")
	}
	if _, err := BuildCreateTableSQL(ddl.TableDef{Name: "T"}); err == nil {
		t.Error("expected error for no columns")
	}
}
