// Package api provides the HTTP administration and event-ingestion
// surface for rulekit. Thin orchestration layer delegating to the store
// and the evaluation engine.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/meridian-crm/rulekit/internal/core/auth"
	"github.com/meridian-crm/rulekit/internal/core/config"
	"github.com/meridian-crm/rulekit/internal/core/store"
	"github.com/meridian-crm/rulekit/internal/engine"
)

// Service implements the HTTP API over the rule store and engine.
type Service struct {
	db     *sqlx.DB
	store  *store.Store
	engine *engine.Engine
	cfg    *config.ServerConfig
}

// NewService creates a service instance with its dependencies.
func NewService(db *sqlx.DB, st *store.Store, eng *engine.Engine, cfg *config.ServerConfig) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}

	return &Service{db: db, store: st, engine: eng, cfg: cfg}, nil
}

// Router builds the chi router with middleware and all routes mounted.
// The bearer token comes from the environment; an empty token leaves the
// API open.
func (s *Service) Router(token string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
	r.Use(auth.Middleware(token))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/rules", func(r chi.Router) {
			r.Get("/", s.handleListRules)
			r.Post("/", s.handleCreateRule)
			r.Post("/validate", s.handleValidateRule)
			r.Get("/{ruleId}", s.handleGetRule)
			r.Put("/{ruleId}", s.handleUpdateRule)
			r.Delete("/{ruleId}", s.handleDeleteRule)
		})
		r.Post("/events", s.handleProcessEvent)
	})

	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
