package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/store"
)

// TemplateMaterializer keeps the canonical template catalog in sync
// with rule seeds without clobbering hand-tuned admin edits.
type TemplateMaterializer struct {
	store store.Store
}

func NewTemplateMaterializer(st store.Store) *TemplateMaterializer {
	return &TemplateMaterializer{store: st}
}

// EnsureTemplate returns the canonical template for a seed, creating it
// on first sight. Identity is (title, category, recurrence interval).
// On an existing template only unset fields are filled in; values an
// admin (or an earlier seed) already set win over the incoming seed.
// List fields are the exception: they are replaced wholesale so the
// template tracks the seed's latest list.
func (m *TemplateMaterializer) EnsureTemplate(ctx context.Context, ruleKey string, seed models.TemplateSeed) (*models.TaskTemplate, error) {
	if seed.Title == "" {
		return nil, fmt.Errorf("rule %s: template seed has no title", ruleKey)
	}

	existing, err := m.store.GetTemplateByIdentity(ctx, seed.Title, seed.Category, seed.RecurrenceInterval)
	if err != nil {
		return nil, fmt.Errorf("lookup template for rule %s: %w", ruleKey, err)
	}
	if existing == nil {
		return m.create(ctx, ruleKey, seed)
	}
	return m.merge(ctx, existing, seed)
}

func (m *TemplateMaterializer) create(ctx context.Context, ruleKey string, seed models.TemplateSeed) (*models.TaskTemplate, error) {
	now := time.Now().UTC()
	tpl := &models.TaskTemplate{
		ID:                 uuid.NewString(),
		Title:              seed.Title,
		Description:        seed.Description,
		Category:           seed.Category,
		RecurrenceInterval: seed.RecurrenceInterval,
		Criticality:        seed.Criticality,
		CanDefer:           true,
		DeferLimitDays:     seed.DeferLimitDays,
		EstimatedTimeMin:   seed.EstimatedTimeMin,
		EstimatedCost:      seed.EstimatedCost,
		CanBeOutsourced:    false,
		Steps:              seed.Steps,
		EquipmentNeeded:    seed.EquipmentNeeded,
		Resources:          seed.Resources,
		Version:            1,
		State:              models.TemplateVerified,
		Changelog:          fmt.Sprintf("created from rule %s", ruleKey),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if tpl.Criticality == "" {
		tpl.Criticality = models.CriticalityMedium
	}
	if seed.CanDefer != nil {
		tpl.CanDefer = *seed.CanDefer
	}
	if seed.CanBeOutsourced != nil {
		tpl.CanBeOutsourced = *seed.CanBeOutsourced
	}
	if err := m.store.CreateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create template for rule %s: %w", ruleKey, err)
	}
	return tpl, nil
}

// merge fills only fields the stored template has unset. Scalars with a
// value keep it; list fields follow the seed exactly.
func (m *TemplateMaterializer) merge(ctx context.Context, tpl *models.TaskTemplate, seed models.TemplateSeed) (*models.TaskTemplate, error) {
	changed := false

	if tpl.Description == "" && seed.Description != "" {
		tpl.Description = seed.Description
		changed = true
	}
	if tpl.Criticality == "" && seed.Criticality != "" {
		tpl.Criticality = seed.Criticality
		changed = true
	}
	if tpl.DeferLimitDays == 0 && seed.DeferLimitDays != 0 {
		tpl.DeferLimitDays = seed.DeferLimitDays
		changed = true
	}
	if tpl.EstimatedTimeMin == 0 && seed.EstimatedTimeMin != 0 {
		tpl.EstimatedTimeMin = seed.EstimatedTimeMin
		changed = true
	}
	if tpl.EstimatedCost == 0 && seed.EstimatedCost != 0 {
		tpl.EstimatedCost = seed.EstimatedCost
		changed = true
	}
	if len(seed.Steps) > 0 && !equalLists(tpl.Steps, seed.Steps) {
		tpl.Steps = seed.Steps
		changed = true
	}
	if len(seed.EquipmentNeeded) > 0 && !equalLists(tpl.EquipmentNeeded, seed.EquipmentNeeded) {
		tpl.EquipmentNeeded = seed.EquipmentNeeded
		changed = true
	}
	if len(seed.Resources) > 0 && !equalLists(tpl.Resources, seed.Resources) {
		tpl.Resources = seed.Resources
		changed = true
	}

	if !changed {
		return tpl, nil
	}
	tpl.Version++
	if err := m.store.UpdateTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("merge template %s: %w", tpl.ID, err)
	}
	return tpl, nil
}

func equalLists(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
