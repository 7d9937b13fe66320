package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nestkeeper/nestkeeper/internal/recurrence"
	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/store"
)

// Overrides let a rule customize display text per scope without forking
// the template.
type Overrides struct {
	Title       string
	Description string
	ItemName    string
	Location    string
}

// DedupeKey derives the deterministic digest that makes instance
// generation idempotent. It hashes only identities — template, user,
// scope ids, source — never time, content, or anything random, so
// repeated runs converge on the same key.
func DedupeKey(templateID, userID string, scope *Scope, sourceType models.SourceType) string {
	parts := []string{"tpl", templateID, "u", userID}
	if id := scope.HomeID(); id != nil {
		parts = append(parts, "h", *id)
	}
	if id := scope.RoomID(); id != nil {
		parts = append(parts, "r", *id)
	}
	if id := scope.TrackableID(); id != nil {
		parts = append(parts, "t", *id)
	}
	parts = append(parts, "src", string(sourceType))
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// InstanceMaterializer turns a matched template into exactly one
// persisted task instance per (user, template, scope).
type InstanceMaterializer struct {
	store store.Store
	now   func() time.Time
}

func NewInstanceMaterializer(st store.Store) *InstanceMaterializer {
	return &InstanceMaterializer{store: st, now: time.Now}
}

// UpsertInstance computes the dedupe key and due date, copies the
// template's fields, and performs a single upsert keyed on (user,
// dedupe key). It reports whether a new row was created.
func (m *InstanceMaterializer) UpsertInstance(ctx context.Context, userID string, scope *Scope, tpl *models.TaskTemplate, sourceType models.SourceType, ov *Overrides) (bool, error) {
	now := m.now().UTC()
	anchor := scope.AnchorDate(now)
	due := recurrence.NextDue(tpl.RecurrenceInterval, anchor)

	inst := &models.TaskInstance{
		ID:                    uuid.NewString(),
		UserID:                userID,
		HomeID:                scope.HomeID(),
		RoomID:                scope.RoomID(),
		TrackableID:           scope.TrackableID(),
		TemplateID:            &tpl.ID,
		SourceType:            sourceType,
		Title:                 tpl.Title,
		Description:           tpl.Description,
		DueDate:               due,
		Status:                models.StatusPending,
		RecurrenceInterval:    tpl.RecurrenceInterval,
		DedupeKey:             DedupeKey(tpl.ID, userID, scope, sourceType),
		SourceTemplateVersion: tpl.Version,
		Criticality:           tpl.Criticality,
		CanDefer:              tpl.CanDefer,
		DeferLimitDays:        tpl.DeferLimitDays,
		EstimatedTimeMin:      tpl.EstimatedTimeMin,
		EstimatedCost:         tpl.EstimatedCost,
		CanBeOutsourced:       tpl.CanBeOutsourced,
		Steps:                 tpl.Steps,
		EquipmentNeeded:       tpl.EquipmentNeeded,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if ov != nil {
		if ov.Title != "" {
			inst.Title = ov.Title
		}
		if ov.Description != "" {
			inst.Description = ov.Description
		}
		inst.ItemName = ov.ItemName
		inst.Location = ov.Location
	}
	if inst.ItemName == "" && scope.Trackable != nil {
		inst.ItemName = scope.Trackable.Name
	}
	if inst.Location == "" && scope.Room != nil {
		inst.Location = scope.Room.Name
	}

	created, err := m.store.UpsertTaskInstance(ctx, inst)
	if err != nil {
		return false, fmt.Errorf("upsert instance for template %s: %w", tpl.ID, err)
	}
	return created, nil
}
