package engine

import (
	"testing"

	"github.com/meridian-crm/rulekit/internal/types"
)

func TestResolveAction_NotifyUser(t *testing.T) {
	entity := map[string]any{"name": "Test Deal"}

	d := ResolveAction(types.Action{Type: types.ActionNotifyUser, Target: "user-123"}, entity)
	if !d.CanExecute || d.Target != "user-123" {
		t.Errorf("ResolveAction() = %+v, want executable with target user-123", d)
	}

	d = ResolveAction(types.Action{Type: types.ActionNotifyUser}, entity)
	if d.CanExecute || d.Reason != "No target user specified" {
		t.Errorf("ResolveAction() = %+v, want blocked with target reason", d)
	}
}

func TestResolveAction_NotifyOwner(t *testing.T) {
	tests := []struct {
		name       string
		entity     map[string]any
		canExecute bool
		target     string
		reason     string
	}{
		{
			"no owner fields",
			map[string]any{"name": "Test Deal"},
			false, "", "No owner found for entity",
		},
		{
			"assigned user",
			map[string]any{"assigned_to_user_id": "user-456"},
			true, "user-456", "",
		},
		{
			"falls back to record owner",
			map[string]any{"user_id": "user-789"},
			true, "user-789", "",
		},
		{
			"falls back to creator",
			map[string]any{"created_by_user_id": "user-111"},
			true, "user-111", "",
		},
		{
			"assignment beats ownership beats authorship",
			map[string]any{
				"created_by_user_id":  "user-111",
				"user_id":             "user-789",
				"assigned_to_user_id": "user-456",
			},
			true, "user-456", "",
		},
		{
			"empty assignment falls through",
			map[string]any{"assigned_to_user_id": "", "user_id": "user-789"},
			true, "user-789", "",
		},
		{
			"numeric owner id",
			map[string]any{"user_id": float64(42)},
			true, "42", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ResolveAction(types.Action{Type: types.ActionNotifyOwner}, tt.entity)
			if d.CanExecute != tt.canExecute || d.Target != tt.target || d.Reason != tt.reason {
				t.Errorf("ResolveAction() = %+v, want canExecute=%v target=%q reason=%q",
					d, tt.canExecute, tt.target, tt.reason)
			}
		})
	}
}

func TestResolveAction_NoPreconditionTypes(t *testing.T) {
	entity := map[string]any{}

	for _, typ := range []types.ActionType{types.ActionCreateTask, types.ActionCreateActivity} {
		if d := ResolveAction(types.Action{Type: typ}, entity); !d.CanExecute {
			t.Errorf("ResolveAction(%s) = %+v, want executable", typ, d)
		}
	}
}

func TestResolveAction_Unknown(t *testing.T) {
	d := ResolveAction(types.Action{Type: "LAUNCH_ROCKET"}, map[string]any{})
	if d.CanExecute {
		t.Error("unknown action type must not be executable")
	}
	if d.Reason != "Unknown action type: LAUNCH_ROCKET" {
		t.Errorf("Reason = %q, want unknown-type reason with the type name", d.Reason)
	}
}

func TestBuildTitle(t *testing.T) {
	tests := []struct {
		name   string
		action types.Action
		entity map[string]any
		want   string
	}{
		{
			"template and entity name",
			types.Action{Template: "High Value Alert"},
			map[string]any{"name": "Enterprise Software Deal"},
			"High Value Alert - Enterprise Software Deal",
		},
		{
			"defaults all the way down",
			types.Action{},
			map[string]any{"status": "ACTIVE"},
			"Business Rule Notification - Entity",
		},
		{
			"title field fallback",
			types.Action{Template: "Stale Lead"},
			map[string]any{"title": "Inbound Q3"},
			"Stale Lead - Inbound Q3",
		},
		{
			"contact name fallback",
			types.Action{},
			map[string]any{"contact_name": "Ada Lovelace"},
			"Business Rule Notification - Ada Lovelace",
		},
		{
			"name beats title",
			types.Action{},
			map[string]any{"name": "Acme Corp", "title": "ignored"},
			"Business Rule Notification - Acme Corp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildTitle(tt.action, tt.entity); got != tt.want {
				t.Errorf("BuildTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
