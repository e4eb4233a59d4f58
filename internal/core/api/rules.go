package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-crm/rulekit/internal/core/store"
	"github.com/meridian-crm/rulekit/internal/engine"
	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Rule administration handlers.
 *
 * CRUD over /v1/rules plus a dry-run validator at /v1/rules/validate.
 * Write operations run structural validation inside the store; this
 * layer only translates store errors to HTTP status codes:
 *
 *   ErrInvalidRule  -> 422 with the findings list
 *   ErrRuleNotFound -> 404
 *   ErrRuleExists   -> 409
 */

func (s *Service) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list rules")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Service) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var rule types.BusinessRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.store.Create(r.Context(), rule)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Service) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := types.RuleID(chi.URLParam(r, "ruleId"))

	rule, err := s.store.Get(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rule)
}

func (s *Service) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var rule types.BusinessRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Path wins over any ID in the body
	rule.ID = types.RuleID(chi.URLParam(r, "ruleId"))

	updated, err := s.store.Update(r.Context(), rule)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Service) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := types.RuleID(chi.URLParam(r, "ruleId"))

	if err := s.store.Delete(r.Context(), id); err != nil {
		respondStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateRule runs structural validation without persisting.
// Always returns 200; the verdict travels in the body so clients can
// lint rules interactively.
func (s *Service) handleValidateRule(w http.ResponseWriter, r *http.Request) {
	var rule types.BusinessRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	findings := engine.ValidateRule(&rule)
	respondJSON(w, http.StatusOK, map[string]any{
		"valid":    len(findings) == 0,
		"findings": findings,
	})
}

func respondStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    "rule failed validation",
			"findings": verr.Findings,
		})
	case errors.Is(err, types.ErrRuleNotFound):
		respondError(w, http.StatusNotFound, "rule not found")
	case errors.Is(err, types.ErrRuleExists):
		respondError(w, http.StatusConflict, "rule already exists")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
