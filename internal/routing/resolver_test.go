package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"landingzone/internal/schema"
)

// fakeRepo is a minimal storage.Repository: Query returns canned rows keyed
// by a SQL substring, Exec records statements.
type fakeRepo struct {
	queryRows map[string][][]any
	queryErr  error

	execSQL  []string
	execArgs [][]any
	execErr  error
}

func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(ctx context.Context, sql string, args ...any) error {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return f.execErr
}

func (f *fakeRepo) Query(ctx context.Context, sql string, args ...any) ([][]any, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	for k, rows := range f.queryRows {
		if strings.Contains(sql, k) {
			return rows, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) QuoteIdent(id string) string { return `"` + id + `"` }
func (f *fakeRepo) Close()                      {}

func TestReloadAndResolve(t *testing.T) {
	repo := &fakeRepo{queryRows: map[string][][]any{
		"FolderConfig": {
			{int64(1), "", "RootData", true},
			{int64(2), "Sales", "SalesData", true},
			{int64(3), "Old", "RootData", false},
		},
	}}
	r := NewResolver(repo)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	rt, err := r.Resolve("")
	if err != nil {
		t.Fatalf("Resolve(root): %v", err)
	}
	if rt.TargetTable != "RootData" {
		t.Errorf("root route -> %s", rt.TargetTable)
	}

	if _, err := r.Resolve("Nope"); !errors.Is(err, ErrNoRoute) {
		t.Errorf("Resolve(Nope) err = %v, want ErrNoRoute", err)
	}
	if _, err := r.Resolve("Old"); !errors.Is(err, ErrRouteInactive) {
		t.Errorf("Resolve(Old) err = %v, want ErrRouteInactive", err)
	}
}

/*
TestReloadLastWriteWins verifies that when FolderConfig holds duplicate
FolderPath rows, the row with the highest ConfigID shadows earlier ones.
*/
func TestReloadLastWriteWins(t *testing.T) {
	repo := &fakeRepo{queryRows: map[string][][]any{
		"FolderConfig": {
			{int64(1), "Sales", "RootData", true},
			{int64(9), "Sales", "SalesData", true},
		},
	}}
	r := NewResolver(repo)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	rt, err := r.Resolve("Sales")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rt.ConfigID != 9 || rt.TargetTable != "SalesData" {
		t.Fatalf("route = %+v, want ConfigID 9 -> SalesData", rt)
	}
}

func TestReloadNullIsActiveMeansActive(t *testing.T) {
	repo := &fakeRepo{queryRows: map[string][][]any{
		"FolderConfig": {
			{int64(1), "Sales", "SalesData", nil},
		},
	}}
	r := NewResolver(repo)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, err := r.Resolve("Sales"); err != nil {
		t.Fatalf("NULL IsActive should resolve: %v", err)
	}
}

func TestResolveBeforeReload(t *testing.T) {
	r := NewResolver(&fakeRepo{})
	if _, err := r.Resolve(""); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("err = %v, want ErrNoRoute", err)
	}
}

func TestRoutesSorted(t *testing.T) {
	repo := &fakeRepo{queryRows: map[string][][]any{
		"FolderConfig": {
			{int64(1), "Sales", "SalesData", true},
			{int64(2), "", "RootData", true},
			{int64(3), "Inventory", "InventoryData", true},
		},
	}}
	r := NewResolver(repo)
	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	routes := r.Routes()
	want := []string{"", "Inventory", "Sales"}
	if len(routes) != len(want) {
		t.Fatalf("routes = %d, want %d", len(routes), len(want))
	}
	for i, w := range want {
		if routes[i].FolderPath != w {
			t.Errorf("routes[%d] = %q, want %q", i, routes[i].FolderPath, w)
		}
	}
}

func TestSeedOnEmptyTable(t *testing.T) {
	repo := &fakeRepo{queryRows: map[string][][]any{
		"COUNT(*)": {{int64(0)}},
	}}
	if err := Seed(context.Background(), repo); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(repo.execSQL) != len(schema.SeedRoutes()) {
		t.Fatalf("executed %d inserts, want %d", len(repo.execSQL), len(schema.SeedRoutes()))
	}
	// Seed leaves IsActive to its column default.
	for i, args := range repo.execArgs {
		if len(args) != 2 {
			t.Errorf("insert %d has %d args, want 2 (FolderPath, TargetTableName)", i, len(args))
		}
	}
	if repo.execArgs[0][0] != "" || repo.execArgs[0][1] != schema.TableRootData {
		t.Errorf("first seed = %v, want root -> RootData", repo.execArgs[0])
	}
}

func TestSeedSkipsNonEmptyTable(t *testing.T) {
	repo := &fakeRepo{queryRows: map[string][][]any{
		"COUNT(*)": {{int64(3)}},
	}}
	if err := Seed(context.Background(), repo); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(repo.execSQL) != 0 {
		t.Fatalf("expected no inserts on non-empty table, got %d", len(repo.execSQL))
	}
}
