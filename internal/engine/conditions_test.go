package engine

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/meridian-crm/rulekit/internal/types"
)

func TestEvaluateConditions_EmptyAlwaysMatches(t *testing.T) {
	if !EvaluateConditions(nil, map[string]any{"a": 1}, nil, evalNow) {
		t.Error("nil condition list must match")
	}
	if !EvaluateConditions([]types.Condition{}, map[string]any{}, nil, evalNow) {
		t.Error("empty condition list must match")
	}
}

func TestEvaluateConditions_AndChain(t *testing.T) {
	entity := map[string]any{
		"status": "ACTIVE",
		"amount": float64(60000),
	}

	tests := []struct {
		name  string
		conds []types.Condition
		want  bool
	}{
		{
			"all conditions hold",
			[]types.Condition{
				types.NewCondition("status", types.OpEquals, "ACTIVE"),
				types.NewCondition("amount", types.OpGreaterThan, "50000"),
			},
			true,
		},
		{
			"one condition fails",
			[]types.Condition{
				types.NewCondition("status", types.OpEquals, "ACTIVE"),
				types.NewCondition("amount", types.OpGreaterThan, "100000"),
			},
			false,
		},
		{
			"explicit AND tag behaves like untagged",
			[]types.Condition{
				{Field: "status", Operator: types.OpEquals, Value: strPtr("ACTIVE"), LogicalOperator: types.LogicalAnd},
				types.NewCondition("amount", types.OpGreaterThan, "50000"),
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateConditions(tt.conds, entity, nil, evalNow); got != tt.want {
				t.Errorf("EvaluateConditions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateConditions_OrGroup(t *testing.T) {
	entity := map[string]any{
		"status":   "ACTIVE",
		"amount":   float64(15000),
		"priority": "LOW",
		"category": "ENTERPRISE",
	}

	// The AND-tagged status condition passes but is discarded: with any OR
	// condition present, the OR accumulator alone decides the outcome.
	conds := []types.Condition{
		types.NewCondition("status", types.OpEquals, "ACTIVE"),
		types.NewCondition("amount", types.OpGreaterThan, "50000").Or(),
		types.NewCondition("priority", types.OpEquals, "HIGH").Or(),
		types.NewCondition("category", types.OpEquals, "ENTERPRISE").Or(),
	}

	if !EvaluateConditions(conds, entity, nil, evalNow) {
		t.Error("OR group with one matching condition must match")
	}
}

func TestEvaluateConditions_OrDiscardsAndChain(t *testing.T) {
	entity := map[string]any{
		"status": "LOST",
		"amount": float64(100000),
	}

	// The failing AND condition is ignored once an OR condition exists.
	// "A AND (B OR C)" is not expressible; this documents the behavior.
	conds := []types.Condition{
		types.NewCondition("status", types.OpEquals, "ACTIVE"),
		types.NewCondition("amount", types.OpGreaterThan, "50000").Or(),
	}

	if !EvaluateConditions(conds, entity, nil, evalNow) {
		t.Error("matching OR condition must win even when the AND chain fails")
	}

	// All OR conditions failing loses, regardless of the AND chain passing.
	conds = []types.Condition{
		types.NewCondition("amount", types.OpGreaterThan, "50000"),
		types.NewCondition("status", types.OpEquals, "ACTIVE").Or(),
	}

	if EvaluateConditions(conds, entity, nil, evalNow) {
		t.Error("failing OR group must lose even when the AND chain passes")
	}
}

// Property-based test: without OR tags the combinator is plain conjunction
func TestEvaluateConditions_PropertyPlainAnd(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("no OR tags means AND of all conditions", prop.ForAll(
		func(values []bool) bool {
			entity := map[string]any{"yes": "y", "no": "n"}
			conds := make([]types.Condition, len(values))
			expected := true
			for i, v := range values {
				field := "no"
				if v {
					field = "yes"
				}
				conds[i] = types.NewCondition(field, types.OpEquals, "y")
				expected = expected && v
			}
			return EvaluateConditions(conds, entity, nil, evalNow) == expected
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

func strPtr(s string) *string { return &s }
