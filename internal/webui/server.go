// Package webui serves a small read-only HTTP API over the landing zone:
// health, the configured folder routes, and recent processing-log entries.
// It is an operator convenience, not an ingestion surface; files still arrive
// through the drop directory.
package webui

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"landingzone/internal/audit"
	"landingzone/internal/routing"
)

// Server exposes the read-only API.
type Server struct {
	auditL *audit.Log
	routes *routing.Resolver
}

// NewServer returns a Server over the given audit log and route resolver.
func NewServer(auditLog *audit.Log, routes *routing.Resolver) *Server {
	return &Server{auditL: auditLog, routes: routes}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/routes", s.handleRoutes)
	r.Get("/logs", s.handleLogs)
	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type routeView struct {
	ConfigID    int64  `json:"config_id"`
	FolderPath  string `json:"folder_path"`
	TargetTable string `json:"target_table"`
	Active      bool   `json:"active"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	rts := s.routes.Routes()
	out := make([]routeView, 0, len(rts))
	for _, rt := range rts {
		out = append(out, routeView{
			ConfigID:    rt.ConfigID,
			FolderPath:  rt.FolderPath,
			TargetTable: rt.TargetTable,
			Active:      rt.Active,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type logView struct {
	LogID        int64     `json:"log_id"`
	FileName     string    `json:"file_name"`
	FolderPath   string    `json:"folder_path"`
	TargetTable  string    `json:"target_table"`
	OriginalRows int       `json:"original_rows"`
	CleanRows    int       `json:"clean_rows"`
	DirtyRows    int       `json:"dirty_rows"`
	Status       string    `json:"status"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// handleLogs returns recent processing-log entries, newest first.
// ?limit=N caps the result (default 50, max 500).
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > 500 {
		limit = 500
	}

	entries, err := s.auditL.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("webui: %v", err)
		http.Error(w, "failed to read processing log", http.StatusInternalServerError)
		return
	}

	out := make([]logView, 0, len(entries))
	for _, e := range entries {
		out = append(out, logView{
			LogID:        e.LogID,
			FileName:     e.FileName,
			FolderPath:   e.FolderPath,
			TargetTable:  e.TargetTable,
			OriginalRows: e.OriginalRows,
			CleanRows:    e.CleanRows,
			DirtyRows:    e.DirtyRows,
			Status:       string(e.Status),
			ProcessedAt:  e.ProcessedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("webui: encode response: %v", err)
	}
}
