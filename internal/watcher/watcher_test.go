package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"landingzone/internal/audit"
	"landingzone/internal/ingest"
	csvparser "landingzone/internal/parser/csv"
	"landingzone/internal/routing"
)

type fakeRepo struct {
	mu       sync.Mutex
	copied   map[string]int // table -> rows landed
	execSQL  []string
	routeRWs [][]any
}

func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copied == nil {
		f.copied = map[string]int{}
	}
	f.copied[table] += len(rows)
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(ctx context.Context, sql string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execSQL = append(f.execSQL, sql)
	return nil
}

func (f *fakeRepo) Query(ctx context.Context, sql string, args ...any) ([][]any, error) {
	if strings.Contains(sql, "FolderConfig") {
		return f.routeRWs, nil
	}
	return nil, nil
}

func (f *fakeRepo) QuoteIdent(id string) string { return `"` + id + `"` }
func (f *fakeRepo) Close()                      {}

func newTestWatcher(t *testing.T, root string) (*Watcher, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{routeRWs: [][]any{
		{int64(1), "", "RootData", true},
		{int64(2), "Sales", "SalesData", true},
	}}
	routes := routing.NewResolver(repo)
	if err := routes.Reload(context.Background()); err != nil {
		t.Fatalf("reload routes: %v", err)
	}
	ing := ingest.New(repo, routes, audit.NewLog(repo), ingest.Options{
		Job: "test",
		CSV: csvparser.Options{HasHeader: true},
	})
	return New(root, ing, 2), repo
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "root.csv"), "h\na\nb\n")
	mustWrite(t, filepath.Join(root, "Sales", "s.csv"), "h\nx\n")
	mustWrite(t, filepath.Join(root, "Sales", "notes.parquet"), "ignored")
	mustWrite(t, filepath.Join(root, ".hidden.csv"), "h\nz\n")
	mustWrite(t, filepath.Join(root, "Sales", "deep", "n.csv"), "h\nz\n") // too deep

	w, repo := newTestWatcher(t, root)
	if err := w.Scan(context.Background()); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if repo.copied["RootData"] != 2 {
		t.Errorf("RootData rows = %d, want 2", repo.copied["RootData"])
	}
	if repo.copied["SalesData"] != 1 {
		t.Errorf("SalesData rows = %d, want 1", repo.copied["SalesData"])
	}
	// One audit row per processed file.
	if len(repo.execSQL) != 2 {
		t.Errorf("audit rows = %d, want 2", len(repo.execSQL))
	}
}

func TestScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "root.csv"), "h\na\n")

	w, repo := newTestWatcher(t, root)
	if err := w.Scan(context.Background()); err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	if err := w.Scan(context.Background()); err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if repo.copied["RootData"] != 1 {
		t.Errorf("rows = %d, want 1 (second scan must dedupe)", repo.copied["RootData"])
	}
}

func TestFolderFor(t *testing.T) {
	w, _ := newTestWatcher(t, "/drop")

	tests := []struct {
		path       string
		wantFolder string
		wantOK     bool
	}{
		{"/drop/a.csv", "", true},
		{"/drop/a.txt", "", true},
		{"/drop/a.xlsx", "", true},
		{"/drop/Sales/a.csv", "Sales", true},
		{"/drop/Sales/deep/a.csv", "", false},
		{"/drop/a.parquet", "", false},
		{"/drop/.hidden.csv", "", false},
	}
	for _, tt := range tests {
		folder, ok := w.folderFor(tt.path)
		if folder != tt.wantFolder || ok != tt.wantOK {
			t.Errorf("folderFor(%s) = %q, %t; want %q, %t", tt.path, folder, ok, tt.wantFolder, tt.wantOK)
		}
	}
}

func TestClaim(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.csv")
	mustWrite(t, path, "h\n1\n")

	w, _ := newTestWatcher(t, root)

	ok, err := w.claim(path)
	if err != nil || !ok {
		t.Fatalf("first claim = %t, %v", ok, err)
	}
	ok, err = w.claim(path)
	if err != nil || ok {
		t.Fatalf("second claim = %t, %v; want duplicate", ok, err)
	}

	// A rewrite (different size) is a new file.
	mustWrite(t, path, "h\n1\n2\n")
	ok, err = w.claim(path)
	if err != nil || !ok {
		t.Fatalf("claim after rewrite = %t, %v", ok, err)
	}

	if _, err := w.claim(filepath.Join(root, "absent.csv")); err == nil {
		t.Fatal("expected stat error for missing file")
	}
}
