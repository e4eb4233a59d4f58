// Package store persists business rules behind the named-query layer.
//
// Rules are stored in a single business_rules table; conditions, actions
// and trigger sets are JSON-encoded into TEXT columns so the schema stays
// identical across SQLite and PostgreSQL. All structural validation runs
// at the write boundary: a rule that reaches the table has already passed
// engine.ValidateRule.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meridian-crm/rulekit/internal/core/db"
	"github.com/meridian-crm/rulekit/internal/engine"
	"github.com/meridian-crm/rulekit/internal/types"
)

// Store provides CRUD access to business rules plus the match-count
// statistics sink used by the evaluation engine.
type Store struct {
	queries *db.Queries
	now     func() time.Time
}

// New creates a Store over a loaded query set.
func New(queries *db.Queries) *Store {
	return &Store{queries: queries, now: time.Now}
}

// ruleRow mirrors the business_rules table.
type ruleRow struct {
	RuleID        string    `db:"rule_id"`
	Name          string    `db:"name"`
	EntityType    string    `db:"entity_type"`
	TriggerType   string    `db:"trigger_type"`
	TriggerEvents string    `db:"trigger_events"`
	TriggerFields string    `db:"trigger_fields"`
	Conditions    string    `db:"conditions"`
	Actions       string    `db:"actions"`
	IsActive      bool      `db:"is_active"`
	Priority      int       `db:"priority"`
	MatchCount    int64     `db:"match_count"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Create validates and persists a new rule. A zero ID is assigned a
// fresh one; the stored rule is returned with timestamps set.
// Returns ErrInvalidRule wrapping the validation findings, or
// ErrRuleExists on an ID collision.
func (s *Store) Create(ctx context.Context, rule types.BusinessRule) (types.BusinessRule, error) {
	if findings := engine.ValidateRule(&rule); len(findings) > 0 {
		return types.BusinessRule{}, validationError(findings)
	}

	if rule.ID == "" {
		rule.ID = types.NewRuleID()
	}
	now := s.now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	row, err := encodeRule(rule)
	if err != nil {
		return types.BusinessRule{}, err
	}

	if _, err := s.queries.Exec(ctx, "create-rule",
		row.RuleID, row.Name, row.EntityType, row.TriggerType,
		row.TriggerEvents, row.TriggerFields, row.Conditions, row.Actions,
		row.IsActive, row.Priority, row.CreatedAt, row.UpdatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return types.BusinessRule{}, fmt.Errorf("rule %s: %w", rule.ID, types.ErrRuleExists)
		}
		return types.BusinessRule{}, fmt.Errorf("failed to create rule: %w", err)
	}

	return rule, nil
}

// Get returns a single rule by ID, or ErrRuleNotFound.
func (s *Store) Get(ctx context.Context, id types.RuleID) (types.BusinessRule, error) {
	var row ruleRow
	if err := s.queries.Get(ctx, "get-rule", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BusinessRule{}, fmt.Errorf("rule %s: %w", id, types.ErrRuleNotFound)
		}
		return types.BusinessRule{}, fmt.Errorf("failed to get rule: %w", err)
	}
	return decodeRule(row)
}

// List returns every rule, active or not, ordered by priority then age.
func (s *Store) List(ctx context.Context) ([]types.BusinessRule, error) {
	var rows []ruleRow
	if err := s.queries.Select(ctx, "list-rules", &rows); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return decodeRules(rows)
}

// ListActive returns the active rules for one entity type, ordered by
// priority then age. This is the rule set handed to the evaluation
// engine; inactive rules never leave the store.
func (s *Store) ListActive(ctx context.Context, entityType types.EntityType) ([]types.BusinessRule, error) {
	var rows []ruleRow
	if err := s.queries.Select(ctx, "list-active-rules", &rows, string(entityType)); err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	return decodeRules(rows)
}

// Update validates and replaces an existing rule. The rule ID and
// creation timestamp are immutable. Returns ErrRuleNotFound when the ID
// does not exist.
func (s *Store) Update(ctx context.Context, rule types.BusinessRule) (types.BusinessRule, error) {
	if findings := engine.ValidateRule(&rule); len(findings) > 0 {
		return types.BusinessRule{}, validationError(findings)
	}

	rule.UpdatedAt = s.now().UTC()

	row, err := encodeRule(rule)
	if err != nil {
		return types.BusinessRule{}, err
	}

	res, err := s.queries.Exec(ctx, "update-rule",
		row.Name, row.EntityType, row.TriggerType, row.TriggerEvents,
		row.TriggerFields, row.Conditions, row.Actions, row.IsActive,
		row.Priority, row.UpdatedAt, row.RuleID,
	)
	if err != nil {
		return types.BusinessRule{}, fmt.Errorf("failed to update rule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return types.BusinessRule{}, fmt.Errorf("rule %s: %w", rule.ID, types.ErrRuleNotFound)
	}

	return s.Get(ctx, rule.ID)
}

// Delete removes a rule by ID. Returns ErrRuleNotFound when the ID does
// not exist.
func (s *Store) Delete(ctx context.Context, id types.RuleID) error {
	res, err := s.queries.Exec(ctx, "delete-rule", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("rule %s: %w", id, types.ErrRuleNotFound)
	}
	return nil
}

// RecordMatch increments a rule's match counter. Satisfies the engine's
// statistics sink; a missing rule is not an error here because the rule
// may have been deleted between load and match.
func (s *Store) RecordMatch(ctx context.Context, id types.RuleID) error {
	if _, err := s.queries.Exec(ctx, "record-match", string(id)); err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}
	return nil
}

// MatchCount returns the recorded match total for a rule.
func (s *Store) MatchCount(ctx context.Context, id types.RuleID) (int64, error) {
	var row ruleRow
	if err := s.queries.Get(ctx, "get-rule", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("rule %s: %w", id, types.ErrRuleNotFound)
		}
		return 0, err
	}
	return row.MatchCount, nil
}

func encodeRule(rule types.BusinessRule) (ruleRow, error) {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to encode conditions: %w", err)
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to encode actions: %w", err)
	}
	events, err := json.Marshal(emptyIfNil(rule.TriggerEvents))
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to encode trigger events: %w", err)
	}
	fields, err := json.Marshal(emptyIfNil(rule.TriggerFields))
	if err != nil {
		return ruleRow{}, fmt.Errorf("failed to encode trigger fields: %w", err)
	}

	return ruleRow{
		RuleID:        string(rule.ID),
		Name:          rule.Name,
		EntityType:    string(rule.EntityType),
		TriggerType:   string(rule.TriggerType),
		TriggerEvents: string(events),
		TriggerFields: string(fields),
		Conditions:    string(conditions),
		Actions:       string(actions),
		IsActive:      rule.IsActive,
		Priority:      rule.Priority,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}, nil
}

func decodeRule(row ruleRow) (types.BusinessRule, error) {
	rule := types.BusinessRule{
		ID:          types.RuleID(row.RuleID),
		Name:        row.Name,
		EntityType:  types.EntityType(row.EntityType),
		TriggerType: types.TriggerType(row.TriggerType),
		IsActive:    row.IsActive,
		Priority:    row.Priority,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}

	if err := json.Unmarshal([]byte(row.Conditions), &rule.Conditions); err != nil {
		return types.BusinessRule{}, fmt.Errorf("rule %s: malformed conditions: %w", row.RuleID, err)
	}
	if err := json.Unmarshal([]byte(row.Actions), &rule.Actions); err != nil {
		return types.BusinessRule{}, fmt.Errorf("rule %s: malformed actions: %w", row.RuleID, err)
	}
	if err := json.Unmarshal([]byte(row.TriggerEvents), &rule.TriggerEvents); err != nil {
		return types.BusinessRule{}, fmt.Errorf("rule %s: malformed trigger events: %w", row.RuleID, err)
	}
	if err := json.Unmarshal([]byte(row.TriggerFields), &rule.TriggerFields); err != nil {
		return types.BusinessRule{}, fmt.Errorf("rule %s: malformed trigger fields: %w", row.RuleID, err)
	}

	return rule, nil
}

// decodeRules skips malformed rows rather than failing the whole list;
// one corrupt rule must not take down evaluation for the entity type.
func decodeRules(rows []ruleRow) ([]types.BusinessRule, error) {
	rules := make([]types.BusinessRule, 0, len(rows))
	for _, row := range rows {
		rule, err := decodeRule(row)
		if err != nil {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// validationError wraps findings so callers can surface them without
// string parsing.
func validationError(findings []string) error {
	return &ValidationError{Findings: findings}
}

// ValidationError carries the individual validation findings for a
// rejected rule. Unwraps to types.ErrInvalidRule.
type ValidationError struct {
	Findings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v", types.ErrInvalidRule, e.Findings)
}

func (e *ValidationError) Unwrap() error {
	return types.ErrInvalidRule
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// isUniqueViolation detects a primary-key collision across both drivers
// without importing driver error types.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
