package postgres

import (
	"strings"
	"testing"

	"landingzone/internal/ddl"
	"landingzone/internal/schema"
)

func TestBuildCreateTableSQL(t *testing.T) {
	sql, err := BuildCreateTableSQL(schema.ProcessingLog, "public")
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}

	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "public"."ProcessingLog"`,
		`"LogID" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY`,
		`"FileName" VARCHAR(255)`,
		`"OriginalRows" BIGINT`,
		`"ProcessedAt" TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP`,
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("DDL missing %q:\n%s", want, sql)
		}
	}
}

func TestBuildCreateTableSQLNoSchema(t *testing.T) {
	sql, err := BuildCreateTableSQL(schema.FolderConfig, "")
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if !strings.Contains(sql, `CREATE TABLE IF NOT EXISTS "FolderConfig"`) {
		t.Errorf("unqualified name expected:\n%s", sql)
	}
	if !strings.Contains(sql, `"IsActive" BOOLEAN DEFAULT TRUE`) {
		t.Errorf("boolean default expected:\n%s", sql)
	}
	if !strings.Contains(sql, `"FolderPath" VARCHAR(500) NOT NULL`) {
		t.Errorf("NOT NULL expected:\n%s", sql)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	if _, err := BuildCreateTableSQL(ddl.TableDef{}, ""); err == nil {
		t.Error("expected error for empty table name")
	}
	if _, err := BuildCreateTableSQL(ddl.TableDef{Name: "T"}, ""); err == nil {
		t.Error("expected error for no columns")
	}
}
