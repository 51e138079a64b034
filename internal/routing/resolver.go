// Package routing resolves source folder paths to destination landing tables
// using the FolderConfig table. The empty folder path is a valid key and
// denotes the root folder.
//
// FolderConfig declares no uniqueness constraint on FolderPath, so duplicate
// mappings are possible. The resolver treats the highest ConfigID as
// authoritative for a path ("last write wins"); earlier rows are shadowed.
package routing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"landingzone/internal/schema"
	"landingzone/internal/storage"
)

var (
	// ErrNoRoute is returned when no FolderConfig row maps the folder path.
	ErrNoRoute = errors.New("no route configured for folder")
	// ErrRouteInactive is returned when the winning mapping has IsActive false.
	ErrRouteInactive = errors.New("route is inactive")
)

// Route is one folder-to-table mapping.
type Route struct {
	ConfigID    int64
	FolderPath  string
	TargetTable string
	Active      bool
}

// Resolver caches FolderConfig rows and answers folder lookups. Reload must
// be called before the first Resolve; the ingester reloads once per run.
type Resolver struct {
	repo storage.Repository

	mu     sync.RWMutex
	routes map[string]Route
}

// NewResolver returns a Resolver backed by repo. The cache starts empty.
func NewResolver(repo storage.Repository) *Resolver {
	return &Resolver{repo: repo, routes: map[string]Route{}}
}

// Reload replaces the cache with the current FolderConfig contents.
func (r *Resolver) Reload(ctx context.Context) error {
	q := fmt.Sprintf(
		"SELECT %s, %s, %s, %s FROM %s ORDER BY %s",
		r.repo.QuoteIdent("ConfigID"),
		r.repo.QuoteIdent("FolderPath"),
		r.repo.QuoteIdent("TargetTableName"),
		r.repo.QuoteIdent("IsActive"),
		r.repo.QuoteIdent(schema.TableFolderConfig),
		r.repo.QuoteIdent("ConfigID"),
	)
	rows, err := r.repo.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("load folder config: %w", err)
	}

	routes := make(map[string]Route, len(rows))
	for _, row := range rows {
		if len(row) != 4 {
			return fmt.Errorf("load folder config: expected 4 columns, got %d", len(row))
		}
		rt := Route{
			ConfigID:    storage.AsInt64(row[0]),
			FolderPath:  storage.AsString(row[1]),
			TargetTable: storage.AsString(row[2]),
			Active:      row[3] == nil || storage.AsBool(row[3]),
		}
		// Rows arrive in ConfigID order; later rows shadow earlier ones.
		routes[rt.FolderPath] = rt
	}

	r.mu.Lock()
	r.routes = routes
	r.mu.Unlock()
	return nil
}

// Resolve returns the mapping for folder. A missing mapping returns
// ErrNoRoute; an inactive one returns ErrRouteInactive alongside the route.
func (r *Resolver) Resolve(folder string) (Route, error) {
	r.mu.RLock()
	rt, ok := r.routes[folder]
	r.mu.RUnlock()
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrNoRoute, folder)
	}
	if !rt.Active {
		return rt, fmt.Errorf("%w: %q", ErrRouteInactive, folder)
	}
	return rt, nil
}

// Routes returns the cached mappings sorted by folder path.
func (r *Resolver) Routes() []Route {
	r.mu.RLock()
	out := make([]Route, 0, len(r.routes))
	for _, rt := range r.routes {
		out = append(out, rt)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FolderPath < out[j].FolderPath })
	return out
}

// Seed inserts the initial folder mappings when FolderConfig is empty. It is
// safe to call on every startup; a non-empty table is left untouched.
func Seed(ctx context.Context, repo storage.Repository) error {
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM %s", repo.QuoteIdent(schema.TableFolderConfig))
	rows, err := repo.Query(ctx, countQ)
	if err != nil {
		return fmt.Errorf("count folder config: %w", err)
	}
	if len(rows) == 1 && len(rows[0]) == 1 && storage.AsInt64(rows[0][0]) > 0 {
		return nil
	}

	ins := fmt.Sprintf(
		"INSERT INTO %s (%s, %s) VALUES (?, ?)",
		repo.QuoteIdent(schema.TableFolderConfig),
		repo.QuoteIdent("FolderPath"),
		repo.QuoteIdent("TargetTableName"),
	)
	for _, s := range schema.SeedRoutes() {
		if err := repo.Exec(ctx, ins, s.FolderPath, s.TargetTableName); err != nil {
			return fmt.Errorf("seed route %q: %w", s.FolderPath, err)
		}
	}
	return nil
}
