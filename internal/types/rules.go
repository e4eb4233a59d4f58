// internal/types/rules.go
package types

import "time"

/*
 * Domain types for business-rule evaluation.
 *
 * Provides BusinessRule, Condition, Action, ProcessingContext and the
 * result types produced by the processor. These types are wire-format
 * agnostic: JSON tags match the administration API and rule-file format,
 * storage encoding happens at the store boundary.
 *
 * Key types:
 *   - BusinessRule: named policy binding conditions to actions for one
 *     entity type
 *   - Condition: single predicate (field, operator, value, logical joiner)
 *   - Action: reaction requested on match, with optional target/template
 *   - ProcessingContext: one evaluation request (snapshot + trigger event)
 *   - ExecutionResult / ActionResult: per-rule evaluation outcome
 *   - DispatchRequest: instruction handed to the action-executing collaborator
 */

// Condition is a single predicate over one entity field.
//
// Value is an operator-specific encoding: a literal for comparisons, a
// comma-separated list for IN/NOT_IN, an interval expression ("2 days")
// for OLDER_THAN/NEWER_THAN, and ignored (may be empty) for IS_NULL and
// IS_NOT_NULL. It is a pointer because validation distinguishes an absent
// value (a structural violation) from an explicit empty string (legal).
type Condition struct {
	Field           string          `json:"field" yaml:"field"`
	Operator        Operator        `json:"operator" yaml:"operator"`
	Value           *string         `json:"value,omitempty" yaml:"value,omitempty"`
	LogicalOperator LogicalOperator `json:"logicalOperator,omitempty" yaml:"logicalOperator,omitempty"`
}

// NewCondition builds an AND-joined condition with an explicit value.
func NewCondition(field string, op Operator, value string) Condition {
	return Condition{Field: field, Operator: op, Value: &value}
}

// Or returns a copy of the condition joined with logical OR.
func (c Condition) Or() Condition {
	c.LogicalOperator = LogicalOr
	return c
}

// HasValue reports whether the condition carries a value.
// An explicit empty string counts; only null/absent does not.
func (c Condition) HasValue() bool {
	return c.Value != nil
}

// ValueString returns the condition value, or "" when absent.
func (c Condition) ValueString() string {
	if c.Value == nil {
		return ""
	}
	return *c.Value
}

// Action is one business reaction requested by a matched rule.
type Action struct {
	Type     ActionType     `json:"type" yaml:"type"`
	Target   string         `json:"target,omitempty" yaml:"target,omitempty"`
	Template string         `json:"template,omitempty" yaml:"template,omitempty"`
	Message  string         `json:"message,omitempty" yaml:"message,omitempty"`
	Priority int            `json:"priority,omitempty" yaml:"priority,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// BusinessRule is a named, versionable policy attached to an entity type.
//
// TriggerEvents is consulted for EVENT_BASED rules, TriggerFields for
// FIELD_CHANGE rules; the validator enforces that the set matching the
// trigger type is non-empty before a rule is accepted.
type BusinessRule struct {
	ID            RuleID       `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	EntityType    EntityType   `json:"entityType" yaml:"entityType"`
	Conditions    []Condition  `json:"conditions" yaml:"conditions"`
	Actions       []Action     `json:"actions" yaml:"actions"`
	TriggerType   TriggerType  `json:"triggerType" yaml:"triggerType"`
	TriggerEvents []string     `json:"triggerEvents,omitempty" yaml:"triggerEvents,omitempty"`
	TriggerFields []string     `json:"triggerFields,omitempty" yaml:"triggerFields,omitempty"`
	IsActive      bool         `json:"isActive" yaml:"isActive"`
	Priority      int          `json:"priority" yaml:"priority"`
	CreatedAt     time.Time    `json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt     time.Time    `json:"updatedAt,omitempty" yaml:"-"`
}

// ChangeDataKeyPrefix prefixes prior-value keys in change data.
// An update to field "status" carries the previous value under
// "original_status".
const ChangeDataKeyPrefix = "original_"

// ProcessingContext is the unit of work submitted to the processor:
// the post-mutation entity snapshot plus the event that produced it.
//
// ChangeData holds original_<field> keys for fields changed by this event
// and is nil for create events. TestMode suppresses statistics recording
// only; actions are still dispatched (see engine.Engine.Process).
type ProcessingContext struct {
	EntityType   EntityType     `json:"entityType"`
	EntityID     string         `json:"entityId"`
	TriggerEvent string         `json:"triggerEvent"`
	EntityData   map[string]any `json:"entityData"`
	ChangeData   map[string]any `json:"changeData,omitempty"`
	TestMode     bool           `json:"testMode,omitempty"`
}

// ActionResult records the precondition decision for one action of a
// matched rule, and whether a dispatch was handed off.
type ActionResult struct {
	Type       ActionType `json:"type"`
	CanExecute bool       `json:"canExecute"`
	Reason     string     `json:"reason,omitempty"`
	Dispatched bool       `json:"dispatched"`
}

// ExecutionResult is the outcome of evaluating one rule against one
// processing context. Notes carries non-fatal anomalies (for example a
// dispatch failure); it never blocks sibling rules.
type ExecutionResult struct {
	RuleID   RuleID         `json:"ruleId"`
	RuleName string         `json:"ruleName"`
	Matched  bool           `json:"matched"`
	Actions  []ActionResult `json:"actions,omitempty"`
	Notes    []string       `json:"notes,omitempty"`
}

// DispatchRequest is the instruction forwarded to the action-executing
// collaborator for one executable action. Title is populated for
// notification-type actions, Target carries the resolved recipient
// (explicit target or resolved owner id).
type DispatchRequest struct {
	Action     ActionType     `json:"action"`
	EntityType EntityType     `json:"entityType"`
	EntityID   string         `json:"entityId"`
	RuleID     RuleID         `json:"ruleId"`
	Target     string         `json:"target,omitempty"`
	Title      string         `json:"title,omitempty"`
	Message    string         `json:"message,omitempty"`
	Priority   int            `json:"priority,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	TestMode   bool           `json:"testMode,omitempty"`
}
