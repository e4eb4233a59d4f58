package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/rulekit/internal/core/db"
	"github.com/meridian-crm/rulekit/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "rulekit_test.db")
	conn, err := db.Open("sqlite://" + dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.MigrateUp(conn))

	queries, err := db.LoadQueries(conn)
	require.NoError(t, err)

	return New(queries)
}

func highValueRule() types.BusinessRule {
	return types.BusinessRule{
		Name:          "High value deal alert",
		EntityType:    types.EntityDeal,
		TriggerType:   types.TriggerEventBased,
		TriggerEvents: []string{"create", "update"},
		Conditions: []types.Condition{
			types.NewCondition("amount", types.OpGreaterThan, "50000"),
		},
		Actions: []types.Action{
			{Type: types.ActionNotifyOwner, Template: "High Value Alert"},
		},
		IsActive: true,
		Priority: 10,
	}
}

func TestStoreCreateAssignsIDAndTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, highValueRule())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestStoreCreateRejectsInvalidRule(t *testing.T) {
	s := newTestStore(t)

	rule := highValueRule()
	rule.Name = ""
	rule.Actions = nil

	_, err := s.Create(context.Background(), rule)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidRule)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Findings, "Rule name is required")
	assert.Contains(t, verr.Findings, "At least one action is required")
}

func TestStoreCreateDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rule := highValueRule()
	rule.ID = types.NewRuleID()

	_, err := s.Create(ctx, rule)
	require.NoError(t, err)

	_, err = s.Create(ctx, rule)
	assert.ErrorIs(t, err, types.ErrRuleExists)
}

func TestStoreGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, highValueRule())
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "High value deal alert", got.Name)
	assert.Equal(t, types.EntityDeal, got.EntityType)
	assert.Equal(t, types.TriggerEventBased, got.TriggerType)
	assert.Equal(t, []string{"create", "update"}, got.TriggerEvents)
	require.Len(t, got.Conditions, 1)
	assert.Equal(t, "amount", got.Conditions[0].Field)
	assert.Equal(t, types.OpGreaterThan, got.Conditions[0].Operator)
	assert.Equal(t, "50000", got.Conditions[0].ValueString())
	require.Len(t, got.Actions, 1)
	assert.Equal(t, types.ActionNotifyOwner, got.Actions[0].Type)
	assert.True(t, got.IsActive)
	assert.Equal(t, 10, got.Priority)
}

func TestStoreGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), types.NewRuleID())
	assert.ErrorIs(t, err, types.ErrRuleNotFound)
}

func TestStoreListActiveFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := highValueRule()
	low.Name = "Low priority"
	low.Priority = 1
	_, err := s.Create(ctx, low)
	require.NoError(t, err)

	high := highValueRule()
	high.Name = "High priority"
	high.Priority = 100
	_, err = s.Create(ctx, high)
	require.NoError(t, err)

	inactive := highValueRule()
	inactive.Name = "Disabled"
	inactive.IsActive = false
	_, err = s.Create(ctx, inactive)
	require.NoError(t, err)

	lead := highValueRule()
	lead.Name = "Lead rule"
	lead.EntityType = types.EntityLead
	_, err = s.Create(ctx, lead)
	require.NoError(t, err)

	rules, err := s.ListActive(ctx, types.EntityDeal)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "High priority", rules[0].Name)
	assert.Equal(t, "Low priority", rules[1].Name)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStoreUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, highValueRule())
	require.NoError(t, err)

	created.Name = "Renamed"
	created.IsActive = false
	updated, err := s.Update(ctx, created)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestStoreUpdateNotFound(t *testing.T) {
	s := newTestStore(t)

	rule := highValueRule()
	rule.ID = types.NewRuleID()

	_, err := s.Update(context.Background(), rule)
	assert.ErrorIs(t, err, types.ErrRuleNotFound)
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, highValueRule())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, types.ErrRuleNotFound)

	assert.ErrorIs(t, s.Delete(ctx, created.ID), types.ErrRuleNotFound)
}

func TestStoreRecordMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, highValueRule())
	require.NoError(t, err)

	require.NoError(t, s.RecordMatch(ctx, created.ID))
	require.NoError(t, s.RecordMatch(ctx, created.ID))

	count, err := s.MatchCount(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
