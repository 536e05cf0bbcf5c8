// Package api provides the HTTP API for observing and steering a running
// simulation. GET endpoints are public; POST endpoints require a bearer token.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/planetsim/internal/engine"
	"github.com/talgya/planetsim/internal/game"
	"github.com/talgya/planetsim/internal/persistence"
	"github.com/talgya/planetsim/internal/production"
)

// Server serves the simulation over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // optional; enables history endpoints
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Serializes handlers with the engine's callbacks (see Guard).
	mu sync.Mutex
}

// Guard wraps an engine callback so it never runs concurrently with a handler.
func (s *Server) Guard(fn func(year int) error) func(year int) error {
	return func(year int) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn(year)
	}
}

// Handler builds the API's routes.
func (s *Server) Handler() http.Handler {
	limiter := NewRateLimiter(60, time.Minute)
	mux := http.NewServeMux()

	// Public endpoints (read-only).
	mux.HandleFunc("GET /api/v1/status", s.locked(s.handleStatus))
	mux.HandleFunc("GET /api/v1/processes", s.locked(s.handleProcesses))
	mux.HandleFunc("GET /api/v1/projects", s.locked(s.handleProjects))
	mux.HandleFunc("GET /api/v1/events", s.locked(s.handleEvents))
	mux.HandleFunc("GET /api/v1/stats/history", s.handleStatsHistory)

	// Admin endpoints (POST, bearer token, rate limited).
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return s.adminOnly(RateLimitMiddleware(limiter, s.locked(h)))
	}
	mux.HandleFunc("POST /api/v1/projects/{id}/adopt", admin(s.handleAdopt))
	mux.HandleFunc("POST /api/v1/projects/{id}/revoke", admin(s.handleRevoke))
	mux.HandleFunc("POST /api/v1/processes/{id}/status", admin(s.handleProcessStatus))
	mux.HandleFunc("POST /api/v1/events/{id}/fire", admin(s.handleFireEvent))

	return mux
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")
	go func() {
		if err := http.ListenAndServe(s.Addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) locked(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next(w, r)
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no PLANETSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := &s.Sim.Game.State
	status := map[string]any{
		"year":              s.Sim.CurrentYear(),
		"running":           s.Eng != nil && s.Eng.Running(),
		"population":        s.Sim.Stats.Population,
		"temperature":       s.Sim.Stats.Temperature,
		"emissions":         s.Sim.Stats.Emissions,
		"outlook":           s.Sim.Stats.Outlook,
		"habitability":      s.Sim.Stats.Habitability,
		"shortages":         s.Sim.Stats.Shortages,
		"regions":           len(st.World.Regions),
		"political_capital": st.PoliticalCapital,
		"priority":          s.Sim.Priority.String(),
	}
	writeJSON(w, status)
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	type processSummary struct {
		ID             int     `json:"id"`
		Name           string  `json:"name"`
		Output         string  `json:"output"`
		MixShare       float64 `json:"mix_share"`
		Target         float64 `json:"target"`
		OutputModifier float64 `json:"output_modifier"`
		Locked         bool    `json:"locked"`
		Status         string  `json:"status"`
		Change         string  `json:"change"`
	}

	st := &s.Sim.Game.State
	resourceWeights, feedstockWeights := s.Sim.Ledger.Weights()
	target := s.Sim.Tuning.CalculateMix(st.Processes, st.Demand(), resourceWeights, feedstockWeights, s.Sim.Priority)

	output := r.URL.Query().Get("output")
	result := []processSummary{}
	for i, p := range st.Processes {
		if output != "" && p.Output.String() != output {
			continue
		}
		result = append(result, processSummary{
			ID:             p.ID,
			Name:           p.Name,
			Output:         p.Output.String(),
			MixShare:       p.MixShare,
			Target:         target[i],
			OutputModifier: p.OutputModifier,
			Locked:         p.Locked,
			Status:         p.Status.String(),
			Change:         p.Change.String(),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	type projectSummary struct {
		ID     int     `json:"id"`
		Name   string  `json:"name"`
		Locked bool    `json:"locked"`
		Active bool    `json:"active"`
		Cost   float64 `json:"cost"`
	}
	result := []projectSummary{}
	for _, p := range s.Sim.Game.State.Projects {
		result = append(result, projectSummary{
			ID: p.ID, Name: p.Name, Locked: p.Locked, Active: p.Active, Cost: p.EffectiveCost(),
		})
	}
	writeJSON(w, result)
}

// handleEvents returns the most recent in-memory events, newest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events := s.Sim.Events
	result := make([]engine.Event, 0, min(limit, len(events)))
	for i := len(events) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, events[i])
	}
	writeJSON(w, result)
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history requires a database", http.StatusServiceUnavailable)
		return
	}
	years, err := s.DB.Years(s.DB.RunID())
	if err != nil {
		slog.Error("stats history query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if years == nil {
		years = []engine.YearStats{}
	}
	writeJSON(w, years)
}

func (s *Server) handleAdopt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Sim.AdoptProject(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"success":           true,
		"political_capital": s.Sim.Game.State.PoliticalCapital,
	})
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.Sim.RevokeProject(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func (s *Server) handleProcessStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status production.ProcessStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.Sim.SetProcessStatus(id, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "status": req.Status.String()})
}

func (s *Server) handleFireEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Region *int `json:"region,omitempty"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}
	if err := s.Sim.FireEvent(id, req.Region); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid id %q", r.PathValue("id")), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeError maps simulation errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, engine.ErrLocked),
		errors.Is(err, engine.ErrAlreadyActive),
		errors.Is(err, engine.ErrNotActive),
		errors.Is(err, engine.ErrInsufficientCapital):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		slog.Error("intervention failed", "error", err)
	}
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
