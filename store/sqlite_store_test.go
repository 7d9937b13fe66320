package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestkeeper/nestkeeper/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nestkeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTemplate(title string) *models.TaskTemplate {
	now := time.Now().UTC()
	return &models.TaskTemplate{
		ID:                 uuid.NewString(),
		Title:              title,
		Category:           "hvac",
		RecurrenceInterval: "3 months",
		Criticality:        models.CriticalityMedium,
		CanDefer:           true,
		Version:            1,
		State:              models.TemplateVerified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func testInstance(userID, dedupeKey string) *models.TaskInstance {
	now := time.Now().UTC()
	return &models.TaskInstance{
		ID:                 uuid.NewString(),
		UserID:             userID,
		SourceType:         models.SourceRule,
		Title:              "Replace HVAC filter",
		DueDate:            now.AddDate(0, 3, 0),
		Status:             models.StatusPending,
		RecurrenceInterval: "3 months",
		DedupeKey:          dedupeKey,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestTemplateIdentityLookup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tpl := testTemplate("Replace HVAC filter")
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	got, err := s.GetTemplateByIdentity(ctx, "Replace HVAC filter", "hvac", "3 months")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tpl.ID, got.ID)

	// Different interval is a different identity.
	got, err = s.GetTemplateByIdentity(ctx, "Replace HVAC filter", "hvac", "6 months")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Identity is unique at the schema level.
	dup := testTemplate("Replace HVAC filter")
	assert.Error(t, s.CreateTemplate(ctx, dup))
}

func TestUpsertTaskInstanceIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	inst := testInstance(userID, "digest-1")
	created, err := s.UpsertTaskInstance(ctx, inst)
	require.NoError(t, err)
	assert.True(t, created)

	// Second upsert with the same dedupe key refreshes in place.
	refresh := testInstance(userID, "digest-1")
	refresh.Title = "Replace HVAC filter (updated)"
	refresh.DueDate = inst.DueDate.AddDate(0, 1, 0)
	created, err = s.UpsertTaskInstance(ctx, refresh)
	require.NoError(t, err)
	assert.False(t, created)

	all, err := s.ListTaskInstances(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, inst.ID, all[0].ID, "original row survives, new id discarded")
	assert.Equal(t, "Replace HVAC filter (updated)", all[0].Title)
	assert.Equal(t, models.StatusPending, all[0].Status)
}

func TestUpsertDoesNotResurrectArchived(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	inst := testInstance(userID, "digest-2")
	inst.Status = models.StatusArchived
	_, err := s.UpsertTaskInstance(ctx, inst)
	require.NoError(t, err)

	refresh := testInstance(userID, "digest-2")
	_, err = s.UpsertTaskInstance(ctx, refresh)
	require.NoError(t, err)

	got, err := s.GetTaskInstanceByDedupeKey(ctx, userID, "digest-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StatusArchived, got.Status)
	assert.False(t, got.Refreshable())
}

func TestUpsertScopedByUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	userA, userB := uuid.NewString(), uuid.NewString()

	_, err := s.UpsertTaskInstance(ctx, testInstance(userA, "same-key"))
	require.NoError(t, err)
	created, err := s.UpsertTaskInstance(ctx, testInstance(userB, "same-key"))
	require.NoError(t, err)
	assert.True(t, created, "same dedupe key for another user is a distinct instance")
}

func TestReplaceRuleAndListEnabled(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rule := &models.Rule{
		ID:      uuid.NewString(),
		Key:     "room_bedroom_rotate_mattress_quarterly",
		Scope:   models.ScopeRoom,
		Enabled: true,
		Conditions: []models.Condition{
			{Order: 1, Target: models.TargetRoom, Field: "type", Operator: models.OpEq, Value: "bedroom"},
		},
		TemplateSeed: models.TemplateSeed{Title: "Rotate mattress", RecurrenceInterval: "3 months"},
	}
	require.NoError(t, s.ReplaceRule(ctx, rule))

	rules, err := s.ListEnabledRules(ctx, models.ScopeRoom)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.Key, rules[0].Key)
	require.Len(t, rules[0].Conditions, 1)
	assert.Equal(t, models.OpEq, rules[0].Conditions[0].Operator)
	assert.Equal(t, "Rotate mattress", rules[0].TemplateSeed.Title)

	// Replacing by key swaps conditions wholesale and keeps one row.
	rule.Conditions = []models.Condition{
		{Order: 1, Target: models.TargetRoom, Field: "type", Operator: models.OpIn, ValueSet: []string{"bedroom", "nursery"}},
	}
	rule.Enabled = false
	require.NoError(t, s.ReplaceRule(ctx, rule))

	rules, err = s.ListEnabledRules(ctx, models.ScopeRoom)
	require.NoError(t, err)
	assert.Empty(t, rules, "disabled rules are filtered out")

	all, err := s.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, all[0].Conditions, 1)
	assert.Equal(t, []string{"bedroom", "nursery"}, all[0].Conditions[0].ValueSet)
}

func TestScopeEntitiesRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	home := &models.Home{ID: uuid.NewString(), UserID: uuid.NewString(), Name: "Maple St", HasYard: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateHome(ctx, home))

	room := &models.Room{ID: uuid.NewString(), HomeID: home.ID, Name: "Upstairs", Type: "Primary Bedroom", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateRoom(ctx, room))

	purchase := now.AddDate(-2, 0, 0)
	tr := &models.Trackable{
		ID: uuid.NewString(), HomeID: home.ID, RoomID: &room.ID,
		Name: "Water heater", Type: "water_heater", Brand: "Rheem",
		PurchaseDate: &purchase, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateTrackable(ctx, tr))

	gotHome, err := s.GetHome(ctx, home.ID)
	require.NoError(t, err)
	assert.True(t, gotHome.HasYard)

	gotRoom, err := s.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Primary Bedroom", gotRoom.Type)

	gotTr, err := s.GetTrackable(ctx, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, gotTr.RoomID)
	assert.Equal(t, room.ID, *gotTr.RoomID)
	require.NotNil(t, gotTr.PurchaseDate)
	assert.True(t, gotTr.PurchaseDate.Equal(purchase))
}

func TestIssuesAndCatalog(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	entry := &models.CatalogEntry{ID: uuid.NewString(), Type: "dishwasher", Brand: "Bosch", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateCatalogEntry(ctx, entry))

	n, err := s.CountTemplatesForCatalog(ctx, entry.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	tpl := testTemplate("Clean dishwasher filter")
	tpl.CatalogEntryID = &entry.ID
	require.NoError(t, s.CreateTemplate(ctx, tpl))

	n, err = s.CountTemplatesForCatalog(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	iss := &models.GenerationIssue{
		ID: uuid.NewString(), UserID: uuid.NewString(),
		Code: models.IssueTemplateEvalError, Status: models.IssueOpen,
		Message: "boom", CreatedAt: now,
	}
	require.NoError(t, s.CreateIssue(ctx, iss))

	open, err := s.ListIssues(ctx, models.IssueOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, models.IssueTemplateEvalError, open[0].Code)

	resolved, err := s.ListIssues(ctx, models.IssueResolved)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}
