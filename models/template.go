package models

import "time"

// Criticality grades how important a maintenance task is.
type Criticality string

const (
	CriticalityLow    Criticality = "low"
	CriticalityMedium Criticality = "medium"
	CriticalityHigh   Criticality = "high"
)

// TemplateState tracks the review state of a task template.
type TemplateState string

const (
	TemplateVerified   TemplateState = "verified"
	TemplateDraft      TemplateState = "draft"
	TemplateDeprecated TemplateState = "deprecated"
)

// TemplateSeed carries the proposed fields for a task template. Seeds are
// never persisted directly; the template materializer merges them into
// the canonical catalog without clobbering admin edits.
type TemplateSeed struct {
	Title              string      `json:"title" yaml:"title" validate:"required,min=1,max=255"`
	Description        string      `json:"description,omitempty" yaml:"description,omitempty"`
	Category           string      `json:"category,omitempty" yaml:"category,omitempty"`
	RecurrenceInterval string      `json:"recurrenceInterval,omitempty" yaml:"recurrence_interval,omitempty"`
	Criticality        Criticality `json:"criticality,omitempty" yaml:"criticality,omitempty" validate:"omitempty,oneof=low medium high"`
	CanDefer           *bool       `json:"canDefer,omitempty" yaml:"can_defer,omitempty"`
	DeferLimitDays     int         `json:"deferLimitDays,omitempty" yaml:"defer_limit_days,omitempty" validate:"omitempty,min=0"`
	EstimatedTimeMin   int         `json:"estimatedTimeMinutes,omitempty" yaml:"estimated_time_minutes,omitempty" validate:"omitempty,min=0"`
	EstimatedCost      float64     `json:"estimatedCost,omitempty" yaml:"estimated_cost,omitempty" validate:"omitempty,min=0"`
	CanBeOutsourced    *bool       `json:"canBeOutsourced,omitempty" yaml:"can_be_outsourced,omitempty"`
	Steps              []string    `json:"steps,omitempty" yaml:"steps,omitempty"`
	EquipmentNeeded    []string    `json:"equipmentNeeded,omitempty" yaml:"equipment_needed,omitempty"`
	Resources          []string    `json:"resources,omitempty" yaml:"resources,omitempty"`
}

// TaskTemplate is the canonical, possibly admin-edited definition of a
// maintenance task. Identity for lookup is (Title, Category,
// RecurrenceInterval) rather than the synthetic ID, because multiple
// rules may converge on the same human-authored template.
type TaskTemplate struct {
	ID                 string        `json:"id" validate:"required,uuid4"`
	Title              string        `json:"title" validate:"required,min=1,max=255"`
	Description        string        `json:"description,omitempty"`
	Category           string        `json:"category,omitempty"`
	RecurrenceInterval string        `json:"recurrenceInterval,omitempty"`
	Criticality        Criticality   `json:"criticality" validate:"required,oneof=low medium high"`
	CanDefer           bool          `json:"canDefer"`
	DeferLimitDays     int           `json:"deferLimitDays,omitempty"`
	EstimatedTimeMin   int           `json:"estimatedTimeMinutes,omitempty"`
	EstimatedCost      float64       `json:"estimatedCost,omitempty"`
	CanBeOutsourced    bool          `json:"canBeOutsourced"`
	Steps              []string      `json:"steps,omitempty"`
	EquipmentNeeded    []string      `json:"equipmentNeeded,omitempty"`
	Resources          []string      `json:"resources,omitempty"`
	Version            int           `json:"version" validate:"required,min=1"`
	State              TemplateState `json:"state" validate:"required,oneof=verified draft deprecated"`
	Changelog          string        `json:"changelog,omitempty"`
	CatalogEntryID     *string       `json:"catalogEntryId,omitempty" validate:"omitempty,uuid4"`
	CreatedAt          time.Time     `json:"createdAt" validate:"required"`
	UpdatedAt          time.Time     `json:"updatedAt" validate:"required"`
}
