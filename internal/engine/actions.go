// internal/engine/actions.go
package engine

import (
	"fmt"

	"github.com/meridian-crm/rulekit/internal/types"
)

/*
 * Action precondition resolution and notification titles.
 *
 * ResolveAction is a pure decision table: given one action and the entity
 * snapshot it answers "can this dispatch right now, and if not why". The
 * reason strings surface in ExecutionResults and the admin UI.
 *
 * Owner resolution order is fixed: assigned_to_user_id, then user_id, then
 * created_by_user_id. Assignment beats record ownership beats authorship;
 * changing this order silently changes who gets notified.
 */

// ActionDecision is the outcome of resolving one action's preconditions.
type ActionDecision struct {
	CanExecute bool
	Reason     string
	// Target is the resolved recipient: the explicit action target for
	// NOTIFY_USER/SEND_EMAIL, the resolved owner id for NOTIFY_OWNER.
	Target string
}

// Owner candidate fields, in priority order.
var ownerFields = []string{"assigned_to_user_id", "user_id", "created_by_user_id"}

// ResolveAction decides whether an action is currently executable.
func ResolveAction(action types.Action, entity map[string]any) ActionDecision {
	switch action.Type {
	case types.ActionNotifyUser:
		if action.Target == "" {
			return ActionDecision{Reason: "No target user specified"}
		}
		return ActionDecision{CanExecute: true, Target: action.Target}

	case types.ActionNotifyOwner:
		owner := ResolveOwner(entity)
		if owner == "" {
			return ActionDecision{Reason: "No owner found for entity"}
		}
		return ActionDecision{CanExecute: true, Target: owner}

	case types.ActionSendEmail:
		if action.Target == "" {
			return ActionDecision{Reason: "No target user specified"}
		}
		return ActionDecision{CanExecute: true, Target: action.Target}

	case types.ActionCreateTask, types.ActionCreateActivity:
		// No preconditions; the task/activity collaborator owns its own checks
		return ActionDecision{CanExecute: true, Target: action.Target}

	default:
		return ActionDecision{Reason: fmt.Sprintf("Unknown action type: %s", action.Type)}
	}
}

// ResolveOwner returns the entity's owner id, or "" when no owner field
// carries a usable value.
func ResolveOwner(entity map[string]any) string {
	for _, field := range ownerFields {
		if s, ok := stringify(entity[field]); ok && s != "" {
			return s
		}
	}
	return ""
}

// DefaultNotificationTemplate is used when an action carries no template.
const DefaultNotificationTemplate = "Business Rule Notification"

// Entity display-name candidate fields, in priority order.
var displayNameFields = []string{"name", "title", "contact_name"}

// BuildTitle derives the human-readable notification title:
// "<template> - <entity display name>".
func BuildTitle(action types.Action, entity map[string]any) string {
	template := action.Template
	if template == "" {
		template = DefaultNotificationTemplate
	}

	entityName := "Entity"
	for _, field := range displayNameFields {
		if s, ok := stringify(entity[field]); ok && s != "" {
			entityName = s
			break
		}
	}

	return template + " - " + entityName
}
