package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/store"
)

func setupStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedHome(t *testing.T, s store.Store, userID string) *models.Home {
	t.Helper()
	now := time.Now().UTC()
	h := &models.Home{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      "Maple Street House",
		YearBuilt: 1998,
		HomeType:  "house",
		HasYard:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateHome(context.Background(), h))
	return h
}

func seedRoom(t *testing.T, s store.Store, homeID, roomType string) *models.Room {
	t.Helper()
	now := time.Now().UTC()
	r := &models.Room{
		ID:        uuid.NewString(),
		HomeID:    homeID,
		Name:      roomType,
		Type:      roomType,
		Floor:     2,
		HasWindow: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateRoom(context.Background(), r))
	return r
}

func bedroomRule(key, title string) *models.Rule {
	return &models.Rule{
		Key:     key,
		Scope:   models.ScopeRoom,
		Enabled: true,
		Conditions: []models.Condition{
			{Order: 1, Target: models.TargetRoomDetail, Field: "canonical_type", Operator: models.OpEq, Value: "bedroom"},
		},
		TemplateSeed: models.TemplateSeed{
			Title:              title,
			Description:        "Rotate the mattress head to foot to even out wear.",
			Category:           "furniture",
			RecurrenceInterval: "3 months",
			Criticality:        models.CriticalityLow,
		},
	}
}

func TestGenerateForBedroomRoom(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	home := seedHome(t, s, userID)
	room := seedRoom(t, s, home.ID, "Primary Bedroom")
	require.NoError(t, s.ReplaceRule(ctx, bedroomRule("rotate-mattress", "Rotate mattress")))

	eng := New(s, Config{})
	report, err := eng.Generate(ctx, userID, models.ScopeRoom, room.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, report.RulesMatched)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Refreshed)
	assert.Equal(t, 0, report.Issues)

	instances, err := s.ListTaskInstances(ctx, userID)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	inst := instances[0]
	assert.Equal(t, "Rotate mattress", inst.Title)
	assert.Equal(t, models.StatusPending, inst.Status)
	assert.Equal(t, models.SourceRule, inst.SourceType)
	assert.Equal(t, "Primary Bedroom", inst.Location)
	require.NotNil(t, inst.RoomID)
	assert.Equal(t, room.ID, *inst.RoomID)
	// Due roughly three months out from now.
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 3, 0), inst.DueDate, 48*time.Hour)
}

func TestGenerateIsIdempotent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	home := seedHome(t, s, userID)
	room := seedRoom(t, s, home.ID, "Guest Room")
	require.NoError(t, s.ReplaceRule(ctx, bedroomRule("rotate-mattress", "Rotate mattress")))

	eng := New(s, Config{})
	first, err := eng.Generate(ctx, userID, models.ScopeRoom, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := eng.Generate(ctx, userID, models.ScopeRoom, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Refreshed)

	instances, err := s.ListTaskInstances(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, instances, 1)

	templates, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 1)
	assert.Equal(t, 1, templates[0].Version)
}

func TestGenerateNonMatchingRoomRecordsCoverageGap(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	home := seedHome(t, s, userID)
	room := seedRoom(t, s, home.ID, "Garage")
	require.NoError(t, s.ReplaceRule(ctx, bedroomRule("rotate-mattress", "Rotate mattress")))

	eng := New(s, Config{})
	report, err := eng.Generate(ctx, userID, models.ScopeRoom, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, report.RulesMatched)
	assert.Equal(t, 1, report.Issues)

	issues, err := s.ListIssues(ctx, models.IssueOpen)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueNoMatchingTemplate, issues[0].Code)

	instances, err := s.ListTaskInstances(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, instances)
}

func TestGenerateIsolatesFaultyRules(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	userID := uuid.NewString()

	home := seedHome(t, s, userID)
	room := seedRoom(t, s, home.ID, "Primary Bedroom")

	good1 := bedroomRule("rotate-mattress", "Rotate mattress")
	good2 := bedroomRule("wash-bedding", "Wash bedding and duvet")
	broken := bedroomRule("broken-seed", "unused")
	broken.TemplateSeed.Title = ""
	require.NoError(t, s.ReplaceRule(ctx, good1))
	require.NoError(t, s.ReplaceRule(ctx, broken))
	require.NoError(t, s.ReplaceRule(ctx, good2))

	eng := New(s, Config{})
	report, err := eng.Generate(ctx, userID, models.ScopeRoom, room.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.RulesMatched)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Issues)

	instances, err := s.ListTaskInstances(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, instances, 2)

	issues, err := s.ListIssues(ctx, models.IssueOpen)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, models.IssueTemplateEvalError, issues[0].Code)
	assert.Contains(t, issues[0].Message, "broken-seed")
}

func TestEnsureTemplateMergePreservesAdminEdits(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	m := NewTemplateMaterializer(s)

	seed := models.TemplateSeed{
		Title:              "Clean gutters",
		Category:           "exterior",
		RecurrenceInterval: "6 months",
		Description:        "Clear leaves and debris from gutters.",
	}
	tpl, err := m.EnsureTemplate(ctx, "clean-gutters", seed)
	require.NoError(t, err)
	assert.Equal(t, 1, tpl.Version)
	assert.Equal(t, models.CriticalityMedium, tpl.Criticality)
	assert.True(t, tpl.CanDefer)
	assert.False(t, tpl.CanBeOutsourced)

	// Simulate an admin rewriting the description.
	tpl.Description = "Clear gutters and check downspouts drain away from the foundation."
	require.NoError(t, s.UpdateTemplate(ctx, tpl))

	seed.Description = "Clear leaves and debris from gutters."
	again, err := m.EnsureTemplate(ctx, "clean-gutters", seed)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, again.ID)
	assert.Equal(t, "Clear gutters and check downspouts drain away from the foundation.", again.Description)
}

func TestEnsureTemplateMergeFillsEmptyAndBumpsVersion(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	m := NewTemplateMaterializer(s)

	sparse := models.TemplateSeed{
		Title:              "Descale kettle",
		Category:           "kitchen",
		RecurrenceInterval: "1 month",
	}
	tpl, err := m.EnsureTemplate(ctx, "descale-kettle", sparse)
	require.NoError(t, err)
	assert.Empty(t, tpl.Description)

	richer := sparse
	richer.Description = "Run a vinegar cycle and rinse twice."
	richer.EstimatedTimeMin = 15
	richer.Steps = []string{"Fill with 1:1 vinegar and water", "Boil", "Rinse"}
	merged, err := m.EnsureTemplate(ctx, "descale-kettle", richer)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, merged.ID)
	assert.Equal(t, 2, merged.Version)
	assert.Equal(t, "Run a vinegar cycle and rinse twice.", merged.Description)
	assert.Equal(t, 15, merged.EstimatedTimeMin)
	assert.Len(t, merged.Steps, 3)
}

func TestDedupeKeyIsDeterministic(t *testing.T) {
	home := &models.Home{ID: uuid.NewString()}
	room := &models.Room{ID: uuid.NewString(), HomeID: home.ID}
	scope := &Scope{Kind: models.ScopeRoom, Home: home, Room: room}

	tplID := uuid.NewString()
	userID := uuid.NewString()

	k1 := DedupeKey(tplID, userID, scope, models.SourceRule)
	k2 := DedupeKey(tplID, userID, scope, models.SourceRule)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 64)

	// Any identity change produces a different key.
	assert.NotEqual(t, k1, DedupeKey(tplID, uuid.NewString(), scope, models.SourceRule))
	assert.NotEqual(t, k1, DedupeKey(uuid.NewString(), userID, scope, models.SourceRule))
	assert.NotEqual(t, k1, DedupeKey(tplID, userID, scope, models.SourceEnrichment))

	other := &Scope{Kind: models.ScopeHome, Home: home}
	assert.NotEqual(t, k1, DedupeKey(tplID, userID, other, models.SourceRule))
}

func TestAnchorDateUsesPurchaseDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	purchase := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	scope := &Scope{
		Kind:      models.ScopeTrackable,
		Trackable: &models.Trackable{ID: uuid.NewString(), PurchaseDate: &purchase},
	}
	assert.Equal(t, purchase, scope.AnchorDate(now))

	// A future purchase date is treated as bad data and ignored.
	future := now.AddDate(1, 0, 0)
	scope.Trackable.PurchaseDate = &future
	assert.Equal(t, now, scope.AnchorDate(now))

	scope.Trackable.PurchaseDate = nil
	assert.Equal(t, now, scope.AnchorDate(now))
}

func TestRuleSourceCachesAndInvalidates(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.ReplaceRule(ctx, bedroomRule("rotate-mattress", "Rotate mattress")))

	src := NewRuleSource(s, time.Hour)
	first, err := src.RulesFor(ctx, models.ScopeRoom)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	// A rule imported mid-window is invisible until invalidation.
	require.NoError(t, s.ReplaceRule(ctx, bedroomRule("wash-bedding", "Wash bedding")))
	cached, err := src.RulesFor(ctx, models.ScopeRoom)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	src.Invalidate()
	fresh, err := src.RulesFor(ctx, models.ScopeRoom)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}
