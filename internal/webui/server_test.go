package webui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"landingzone/internal/audit"
	"landingzone/internal/routing"
)

type fakeRepo struct {
	logRows   [][]any
	routeRows [][]any
	queryErr  error
}

func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}
func (f *fakeRepo) Exec(ctx context.Context, sql string, args ...any) error { return nil }

func (f *fakeRepo) Query(ctx context.Context, sql string, args ...any) ([][]any, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if strings.Contains(sql, "ProcessingLog") {
		return f.logRows, nil
	}
	if strings.Contains(sql, "FolderConfig") {
		return f.routeRows, nil
	}
	return nil, nil
}

func (f *fakeRepo) QuoteIdent(id string) string { return `"` + id + `"` }
func (f *fakeRepo) Close()                      {}

func newTestServer(t *testing.T, repo *fakeRepo) http.Handler {
	t.Helper()
	routes := routing.NewResolver(repo)
	if err := routes.Reload(context.Background()); err != nil {
		t.Fatalf("reload routes: %v", err)
	}
	return NewServer(audit.NewLog(repo), routes).Handler()
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, &fakeRepo{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, &fakeRepo{routeRows: [][]any{
		{int64(1), "", "RootData", true},
		{int64(2), "Sales", "SalesData", false},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/routes", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body []routeView
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("routes = %d, want 2", len(body))
	}
	if body[0].FolderPath != "" || body[0].TargetTable != "RootData" || !body[0].Active {
		t.Errorf("routes[0] = %+v", body[0])
	}
	if body[1].Active {
		t.Errorf("routes[1] should be inactive: %+v", body[1])
	}
}

func TestLogs(t *testing.T) {
	h := newTestServer(t, &fakeRepo{logRows: [][]any{
		{int64(2), "b.csv", "Sales", "SalesData", int64(5), int64(4), int64(1), "PartialSuccess", "2024-06-01 10:00:00"},
		{int64(1), "a.csv", "", "RootData", int64(3), int64(3), int64(0), "Success", "2024-06-01 09:00:00"},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body []logView
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("logs = %d, want 2", len(body))
	}
	if body[0].FileName != "b.csv" || body[0].Status != "PartialSuccess" || body[0].DirtyRows != 1 {
		t.Errorf("logs[0] = %+v", body[0])
	}
}

func TestLogsLimitValidation(t *testing.T) {
	h := newTestServer(t, &fakeRepo{})

	for _, q := range []string{"?limit=0", "?limit=-5", "?limit=abc"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET /logs%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestLogsBackendError(t *testing.T) {
	repo := &fakeRepo{queryErr: errors.New("db down")}
	h := NewServer(audit.NewLog(repo), routing.NewResolver(repo)).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
