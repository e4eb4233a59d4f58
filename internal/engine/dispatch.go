// internal/engine/dispatch.go
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Dispatch and statistics boundaries.
 *
 * The engine decides WHAT fires; collaborators own delivery. Dispatcher is
 * the hand-off for notification/task/activity requests, StatsRecorder the
 * sink for per-rule match counters. Both are injected so the engine stays a
 * pure function of its explicit inputs - no module-level mutable counters.
 *
 * LogDispatcher is the in-repo implementation: it logs each request
 * structurally and is used by the eval command and as the serve default
 * until a delivery integration is configured.
 */

// Dispatcher forwards executable action requests to the collaborator that
// actually performs them (notification service, task service, ...).
type Dispatcher interface {
	Dispatch(ctx context.Context, req types.DispatchRequest) error
}

// StatsRecorder receives a signal for every rule match outside test mode.
type StatsRecorder interface {
	RecordMatch(ctx context.Context, id types.RuleID) error
}

// LogDispatcher logs dispatch requests instead of delivering them.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch logs the request at info level. Never fails.
func (d *LogDispatcher) Dispatch(ctx context.Context, req types.DispatchRequest) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "action dispatched",
		"action", req.Action,
		"entity_type", req.EntityType,
		"entity_id", req.EntityID,
		"rule_id", req.RuleID,
		"target", req.Target,
		"title", req.Title,
		"test_mode", req.TestMode,
	)
	return nil
}

// NopStats discards match statistics.
type NopStats struct{}

// RecordMatch implements StatsRecorder.
func (NopStats) RecordMatch(context.Context, types.RuleID) error { return nil }

// CollectDispatcher records dispatch requests in memory. Intended for
// tests and the eval command's JSON output.
type CollectDispatcher struct {
	mu       sync.Mutex
	Requests []types.DispatchRequest
}

// Dispatch appends the request. Never fails.
func (d *CollectDispatcher) Dispatch(_ context.Context, req types.DispatchRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Requests = append(d.Requests, req)
	return nil
}

// Collected returns a copy of the recorded requests.
func (d *CollectDispatcher) Collected() []types.DispatchRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.DispatchRequest, len(d.Requests))
	copy(out, d.Requests)
	return out
}
