package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meridian-crm/rulekit/internal/types"
)

// handleProcessEvent evaluates one entity event against the active rule
// set for its entity type. A malformed context is a 400 carrying every
// missing field; evaluation anomalies (bad rule data, dispatch failures)
// degrade to notes inside the per-rule results.
func (s *Service) handleProcessEvent(w http.ResponseWriter, r *http.Request) {
	var pc types.ProcessingContext
	if err := json.NewDecoder(r.Body).Decode(&pc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rules, err := s.store.ListActive(r.Context(), pc.EntityType)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to load rules",
			"entity_type", pc.EntityType, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load rules")
		return
	}

	ruleRefs := make([]*types.BusinessRule, len(rules))
	for i := range rules {
		ruleRefs[i] = &rules[i]
	}

	results, err := s.engine.Process(r.Context(), &pc, ruleRefs)
	if err != nil {
		var cerr *types.InvalidContextError
		if errors.As(err, &cerr) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "invalid processing context",
				"fields": cerr.Fields,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "processing failed")
		return
	}

	matched := 0
	for _, res := range results {
		if res.Matched {
			matched++
		}
	}
	slog.InfoContext(r.Context(), "event processed",
		"entity_type", pc.EntityType,
		"entity_id", pc.EntityID,
		"trigger_event", pc.TriggerEvent,
		"rules_evaluated", len(results),
		"rules_matched", matched,
		"test_mode", pc.TestMode)

	respondJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"matched": matched,
	})
}
