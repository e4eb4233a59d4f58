// Package types provides domain models shared across rulekit components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so the engine package can be embedded in host services
// without pulling in storage or transport dependencies. ID utilities in
// ids.go import uuid but are isolated for selective inclusion.
//
// Enums are string-typed rather than iota-based because rules arrive from
// external configuration (JSON/YAML rule files, database rows, API bodies);
// the string form is the wire form. Each enum keeps a Valid() check so
// unknown values loaded from configuration degrade to runtime fallbacks
// instead of panics.
package types

// EntityType identifies the CRM record kind a rule is attached to.
type EntityType string

const (
	EntityDeal         EntityType = "DEAL"
	EntityLead         EntityType = "LEAD"
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityActivity     EntityType = "ACTIVITY"
)

// Valid reports whether the entity type is one of the known CRM record kinds.
func (e EntityType) Valid() bool {
	switch e {
	case EntityDeal, EntityLead, EntityPerson, EntityOrganization, EntityActivity:
		return true
	}
	return false
}

// TriggerType selects how a rule is matched against mutation events.
type TriggerType string

const (
	TriggerEventBased  TriggerType = "EVENT_BASED"
	TriggerFieldChange TriggerType = "FIELD_CHANGE"
	TriggerScheduled   TriggerType = "SCHEDULED"
)

// Valid reports whether the trigger type is known.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerEventBased, TriggerFieldChange, TriggerScheduled:
		return true
	}
	return false
}

// Operator identifies one of the condition comparison operators.
//
// The set is closed: evaluation treats anything outside it as a non-match
// rather than an error, so a rule authored against a newer schema cannot
// abort evaluation of its siblings.
type Operator string

const (
	OpEquals       Operator = "EQUALS"
	OpNotEquals    Operator = "NOT_EQUALS"
	OpContains     Operator = "CONTAINS"
	OpStartsWith   Operator = "STARTS_WITH"
	OpEndsWith     Operator = "ENDS_WITH"
	OpGreaterThan  Operator = "GREATER_THAN"
	OpLessThan     Operator = "LESS_THAN"
	OpGreaterEqual Operator = "GREATER_EQUAL"
	OpLessEqual    Operator = "LESS_EQUAL"
	OpIsNull       Operator = "IS_NULL"
	OpIsNotNull    Operator = "IS_NOT_NULL"
	OpIn           Operator = "IN"
	OpNotIn        Operator = "NOT_IN"
	OpOlderThan    Operator = "OLDER_THAN"
	OpNewerThan    Operator = "NEWER_THAN"
	OpChangedFrom  Operator = "CHANGED_FROM"
	OpChangedTo    Operator = "CHANGED_TO"
)

// Valid reports whether the operator is part of the closed operator set.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpStartsWith, OpEndsWith,
		OpGreaterThan, OpLessThan, OpGreaterEqual, OpLessEqual,
		OpIsNull, OpIsNotNull, OpIn, OpNotIn,
		OpOlderThan, OpNewerThan, OpChangedFrom, OpChangedTo:
		return true
	}
	return false
}

// LogicalOperator joins a condition to the conditions around it.
// The zero value is treated as AND.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// ActionType identifies the business reaction a matched rule requests.
type ActionType string

const (
	ActionNotifyUser     ActionType = "NOTIFY_USER"
	ActionNotifyOwner    ActionType = "NOTIFY_OWNER"
	ActionSendEmail      ActionType = "SEND_EMAIL"
	ActionCreateTask     ActionType = "CREATE_TASK"
	ActionCreateActivity ActionType = "CREATE_ACTIVITY"
)

// Valid reports whether the action type is known to the dispatcher.
func (a ActionType) Valid() bool {
	switch a {
	case ActionNotifyUser, ActionNotifyOwner, ActionSendEmail,
		ActionCreateTask, ActionCreateActivity:
		return true
	}
	return false
}

// Notification reports whether dispatching this action produces a
// user-facing notification (and therefore needs a built title).
func (a ActionType) Notification() bool {
	switch a {
	case ActionNotifyUser, ActionNotifyOwner, ActionSendEmail:
		return true
	}
	return false
}
