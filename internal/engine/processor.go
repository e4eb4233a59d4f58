// internal/engine/processor.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Rule processing orchestration.
 *
 * Process is the entry point the entity-mutation layer calls after a
 * CREATE/UPDATE/DELETE event: validate the context, select the applicable
 * rules, combine each rule's conditions, resolve and dispatch the actions
 * of matching rules, and report one ExecutionResult per applicable rule.
 *
 * Error classes:
 *   - malformed context: blocking InvalidContextError (caller bug)
 *   - malformed rule data: degrades to non-match / non-executable, never
 *     blocks sibling rules or the caller's write path
 *   - dispatch failures: recorded as result notes, evaluation continues
 *
 * Active-flag filtering belongs to the calling layer (the store's
 * ListActive query); Process evaluates whatever rule list it is handed.
 *
 * Test mode suppresses ONLY statistics recording. Actions are still
 * dispatched, flagged with TestMode so the delivery collaborator can label
 * them. Surprising given the name, but rule authors rely on it to exercise
 * delivery end-to-end; a true dry-run would be a new mode, not a change to
 * this one.
 */

// Engine evaluates business rules and hands dispatch instructions to its
// collaborators. Stateless between calls; safe for concurrent use.
type Engine struct {
	dispatcher Dispatcher
	stats      StatsRecorder
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used by the age operators.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithStats sets the match-statistics sink. Defaults to NopStats.
func WithStats(s StatsRecorder) Option {
	return func(e *Engine) { e.stats = s }
}

// New creates an engine that forwards executable actions to dispatcher.
func New(dispatcher Dispatcher, opts ...Option) *Engine {
	e := &Engine{
		dispatcher: dispatcher,
		stats:      NopStats{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process evaluates every applicable rule against the context and returns
// one ExecutionResult per applicable rule, in input order.
func (e *Engine) Process(ctx context.Context, pc *types.ProcessingContext, rules []*types.BusinessRule) ([]types.ExecutionResult, error) {
	if findings := ValidateContext(pc); len(findings) > 0 {
		return nil, &types.InvalidContextError{Fields: findings}
	}

	now := e.now()
	results := make([]types.ExecutionResult, 0, len(rules))

	for _, rule := range rules {
		if !e.applies(rule, pc) {
			continue
		}

		result := types.ExecutionResult{
			RuleID:   rule.ID,
			RuleName: rule.Name,
		}

		if EvaluateConditions(rule.Conditions, pc.EntityData, pc.ChangeData, now) {
			result.Matched = true

			if !pc.TestMode {
				if err := e.stats.RecordMatch(ctx, rule.ID); err != nil {
					// Statistics are best-effort; never block dispatch on them
					result.Notes = append(result.Notes, fmt.Sprintf("statistics not recorded: %v", err))
				}
			}

			for _, action := range rule.Actions {
				result.Actions = append(result.Actions, e.execute(ctx, pc, rule, action, &result))
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// applies reports whether a rule should be evaluated for this context:
// matching entity type, and a trigger set consistent with the event.
func (e *Engine) applies(rule *types.BusinessRule, pc *types.ProcessingContext) bool {
	if rule.EntityType != pc.EntityType {
		return false
	}

	switch rule.TriggerType {
	case types.TriggerEventBased:
		for _, event := range rule.TriggerEvents {
			if event == pc.TriggerEvent {
				return true
			}
		}
		return false
	case types.TriggerFieldChange:
		// Fires only when one of its watched fields actually changed
		for _, field := range rule.TriggerFields {
			if _, ok := pc.ChangeData[types.ChangeDataKeyPrefix+field]; ok {
				return true
			}
		}
		return false
	default:
		// Scheduled rules (and legacy rows without a trigger type) are
		// selected by the scheduler that built the context
		return true
	}
}

// execute resolves one action and, when executable, forwards the dispatch
// request. Dispatch failures become result notes, not errors.
func (e *Engine) execute(ctx context.Context, pc *types.ProcessingContext, rule *types.BusinessRule, action types.Action, result *types.ExecutionResult) types.ActionResult {
	decision := ResolveAction(action, pc.EntityData)
	ar := types.ActionResult{
		Type:       action.Type,
		CanExecute: decision.CanExecute,
		Reason:     decision.Reason,
	}
	if !decision.CanExecute {
		return ar
	}

	req := types.DispatchRequest{
		Action:     action.Type,
		EntityType: pc.EntityType,
		EntityID:   pc.EntityID,
		RuleID:     rule.ID,
		Target:     decision.Target,
		Message:    action.Message,
		Priority:   action.Priority,
		Metadata:   action.Metadata,
		TestMode:   pc.TestMode,
	}
	if action.Type.Notification() {
		req.Title = BuildTitle(action, pc.EntityData)
	}

	if err := e.dispatcher.Dispatch(ctx, req); err != nil {
		result.Notes = append(result.Notes, fmt.Sprintf("dispatch %s failed: %v", action.Type, err))
		return ar
	}

	ar.Dispatched = true
	return ar
}
