package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the possible statuses of a generated task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusSkipped   TaskStatus = "skipped"
	StatusPaused    TaskStatus = "paused"
	StatusArchived  TaskStatus = "archived"
)

// SourceType records what produced a task instance.
type SourceType string

const (
	SourceRule       SourceType = "rule"
	SourceEnrichment SourceType = "enrichment"
	SourceManual     SourceType = "manual"
)

// TaskInstance is a concrete, user-owned, scheduled occurrence of a
// template. For a given (UserID, DedupeKey) at most one instance exists;
// repeated generation passes refresh it in place instead of duplicating.
type TaskInstance struct {
	ID                    string      `json:"id" validate:"required,uuid4"`
	UserID                string      `json:"userId" validate:"required,uuid4"`
	HomeID                *string     `json:"homeId,omitempty" validate:"omitempty,uuid4"`
	RoomID                *string     `json:"roomId,omitempty" validate:"omitempty,uuid4"`
	TrackableID           *string     `json:"trackableId,omitempty" validate:"omitempty,uuid4"`
	TemplateID            *string     `json:"templateId,omitempty" validate:"omitempty,uuid4"`
	SourceType            SourceType  `json:"sourceType" validate:"required,oneof=rule enrichment manual"`
	Title                 string      `json:"title" validate:"required,min=1,max=255"`
	Description           string      `json:"description,omitempty"`
	DueDate               time.Time   `json:"dueDate" validate:"required"`
	Status                TaskStatus  `json:"status" validate:"required,oneof=pending completed skipped paused archived"`
	RecurrenceInterval    string      `json:"recurrenceInterval,omitempty"`
	DedupeKey             string      `json:"dedupeKey" validate:"required,min=1"`
	SourceTemplateVersion int         `json:"sourceTemplateVersion,omitempty"`
	Criticality           Criticality `json:"criticality,omitempty"`
	CanDefer              bool        `json:"canDefer"`
	DeferLimitDays        int         `json:"deferLimitDays,omitempty"`
	EstimatedTimeMin      int         `json:"estimatedTimeMinutes,omitempty"`
	EstimatedCost         float64     `json:"estimatedCost,omitempty"`
	CanBeOutsourced       bool        `json:"canBeOutsourced"`
	Steps                 []string    `json:"steps,omitempty"`
	EquipmentNeeded       []string    `json:"equipmentNeeded,omitempty"`
	ItemName              string      `json:"itemName,omitempty"`
	Location              string      `json:"location,omitempty"`
	CreatedAt             time.Time   `json:"createdAt" validate:"required"`
	UpdatedAt             time.Time   `json:"updatedAt" validate:"required"`
}

// Refreshable reports whether a generation pass may flip the instance
// back to pending. Archived and paused instances keep their status; the
// lifecycle actions that set those states live outside the engine.
func (t *TaskInstance) Refreshable() bool {
	return t.Status != StatusArchived && t.Status != StatusPaused
}

// global validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	if validate == nil {
		validate = validator.New()
	}
	err := validate.Struct(s)
	if err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMessages []string
		for _, e := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("Validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
	}
	return nil
}
