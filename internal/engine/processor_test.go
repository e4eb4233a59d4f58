package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/meridian-crm/rulekit/internal/types"
)

type recordingStats struct {
	matches []types.RuleID
	err     error
}

func (r *recordingStats) RecordMatch(_ context.Context, id types.RuleID) error {
	if r.err != nil {
		return r.err
	}
	r.matches = append(r.matches, id)
	return nil
}

func dealContext() *types.ProcessingContext {
	return &types.ProcessingContext{
		EntityType:   types.EntityDeal,
		EntityID:     "deal-1",
		TriggerEvent: "CREATE",
		EntityData: map[string]any{
			"name":                "Enterprise Software Deal",
			"amount":              float64(75000),
			"status":              "ACTIVE",
			"assigned_to_user_id": "user-456",
		},
	}
}

func TestProcess_RoundTrip(t *testing.T) {
	rule := validRule()
	if findings := ValidateRule(rule); len(findings) != 0 {
		t.Fatalf("fixture rule invalid: %v", findings)
	}

	dispatcher := &CollectDispatcher{}
	stats := &recordingStats{}
	e := New(dispatcher, WithStats(stats))

	results, err := e.Process(context.Background(), dealContext(), []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v, want nil", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	result := results[0]
	if !result.Matched {
		t.Error("Matched = false, want true")
	}
	if len(result.Actions) != 1 || !result.Actions[0].CanExecute || !result.Actions[0].Dispatched {
		t.Errorf("Actions = %+v, want one executable dispatched action", result.Actions)
	}

	reqs := dispatcher.Collected()
	if len(reqs) != 1 {
		t.Fatalf("dispatched %d requests, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Target != "user-456" {
		t.Errorf("Target = %q, want resolved owner user-456", req.Target)
	}
	if req.Title != "High Value Alert - Enterprise Software Deal" {
		t.Errorf("Title = %q, want built notification title", req.Title)
	}
	if req.EntityID != "deal-1" || req.RuleID != rule.ID {
		t.Errorf("request = %+v, want entity and rule identifiers carried through", req)
	}

	if len(stats.matches) != 1 || stats.matches[0] != rule.ID {
		t.Errorf("stats.matches = %v, want one match for the rule", stats.matches)
	}
}

func TestProcess_InvalidContext(t *testing.T) {
	e := New(&CollectDispatcher{})

	_, err := e.Process(context.Background(), &types.ProcessingContext{}, nil)
	if !errors.Is(err, types.ErrInvalidContext) {
		t.Fatalf("Process() error = %v, want ErrInvalidContext", err)
	}

	var ice *types.InvalidContextError
	if !errors.As(err, &ice) {
		t.Fatalf("error type = %T, want *InvalidContextError", err)
	}
	if len(ice.Fields) != 4 {
		t.Errorf("Fields = %v, want all four missing fields reported", ice.Fields)
	}
}

func TestProcess_EntityTypeFilter(t *testing.T) {
	rule := validRule() // DEAL rule
	leadRule := validRule()
	leadRule.ID = types.NewRuleID()
	leadRule.EntityType = types.EntityLead

	e := New(&CollectDispatcher{})
	results, err := e.Process(context.Background(), dealContext(), []*types.BusinessRule{rule, leadRule})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 1 || results[0].RuleID != rule.ID {
		t.Errorf("results = %+v, want only the DEAL rule evaluated", results)
	}
}

func TestProcess_TriggerEventFilter(t *testing.T) {
	rule := validRule()
	rule.TriggerEvents = []string{"UPDATE", "DELETE"}

	e := New(&CollectDispatcher{})
	results, err := e.Process(context.Background(), dealContext(), []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want event-based rule skipped for CREATE", results)
	}
}

func TestProcess_FieldChangeTrigger(t *testing.T) {
	rule := validRule()
	rule.TriggerType = types.TriggerFieldChange
	rule.TriggerFields = []string{"status"}
	rule.Conditions = []types.Condition{
		types.NewCondition("status", types.OpChangedTo, "WON"),
	}

	e := New(&CollectDispatcher{})

	// Create event: no change data, rule not applicable
	results, err := e.Process(context.Background(), dealContext(), []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want field-change rule skipped without change data", results)
	}

	// Update touching the watched field
	pc := dealContext()
	pc.TriggerEvent = "UPDATE"
	pc.EntityData["status"] = "WON"
	pc.ChangeData = map[string]any{"original_status": "ACTIVE"}

	results, err = e.Process(context.Background(), pc, []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 1 || !results[0].Matched {
		t.Errorf("results = %+v, want field-change rule matched on watched change", results)
	}
}

func TestProcess_TestModeStillDispatches(t *testing.T) {
	rule := validRule()
	dispatcher := &CollectDispatcher{}
	stats := &recordingStats{}
	e := New(dispatcher, WithStats(stats))

	pc := dealContext()
	pc.TestMode = true

	results, err := e.Process(context.Background(), pc, []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !results[0].Matched {
		t.Fatal("Matched = false, want true")
	}

	// Test mode suppresses statistics only; dispatch still happens
	if len(dispatcher.Collected()) != 1 {
		t.Error("test mode must still dispatch actions")
	}
	if !dispatcher.Collected()[0].TestMode {
		t.Error("dispatch request must carry the test-mode flag")
	}
	if len(stats.matches) != 0 {
		t.Errorf("stats.matches = %v, want no statistics in test mode", stats.matches)
	}
}

func TestProcess_NonExecutableActionNotDispatched(t *testing.T) {
	rule := validRule()
	rule.Actions = []types.Action{
		{Type: types.ActionNotifyOwner},
		{Type: types.ActionCreateTask, Message: "follow up"},
	}

	pc := dealContext()
	delete(pc.EntityData, "assigned_to_user_id") // no owner resolvable

	dispatcher := &CollectDispatcher{}
	e := New(dispatcher)

	results, err := e.Process(context.Background(), pc, []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	actions := results[0].Actions
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].CanExecute || actions[0].Reason != "No owner found for entity" {
		t.Errorf("actions[0] = %+v, want blocked owner notification", actions[0])
	}
	if !actions[1].CanExecute || !actions[1].Dispatched {
		t.Errorf("actions[1] = %+v, want dispatched task creation", actions[1])
	}
	if len(dispatcher.Collected()) != 1 {
		t.Errorf("dispatched %d requests, want only the executable action", len(dispatcher.Collected()))
	}
}

func TestProcess_StatsFailureIsNonFatal(t *testing.T) {
	rule := validRule()
	dispatcher := &CollectDispatcher{}
	e := New(dispatcher, WithStats(&recordingStats{err: errors.New("counter store down")}))

	results, err := e.Process(context.Background(), dealContext(), []*types.BusinessRule{rule})
	if err != nil {
		t.Fatalf("Process() error = %v, want nil", err)
	}
	if !results[0].Matched || len(dispatcher.Collected()) != 1 {
		t.Error("stats failure must not block matching or dispatch")
	}
	if len(results[0].Notes) == 0 {
		t.Error("stats failure must surface as a result note")
	}
}

func TestProcess_BadRuleDoesNotBlockSiblings(t *testing.T) {
	broken := validRule()
	broken.Conditions = []types.Condition{
		types.NewCondition("amount", "NO_SUCH_OP", "x"),
	}
	healthy := validRule()
	healthy.ID = types.NewRuleID()

	e := New(&CollectDispatcher{})
	results, err := e.Process(context.Background(), dealContext(), []*types.BusinessRule{broken, healthy})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Matched {
		t.Error("rule with unknown operator must not match")
	}
	if !results[1].Matched {
		t.Error("healthy sibling must still match")
	}
}
