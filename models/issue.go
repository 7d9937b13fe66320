package models

import "time"

// IssueCode classifies what stage of a generation pass failed.
type IssueCode string

const (
	IssueTemplateEvalError      IssueCode = "template_eval_error"
	IssueUpsertError            IssueCode = "upsert_error"
	IssueNoMatchingTemplate     IssueCode = "no_matching_template"
	IssueEnrichmentLookupFailed IssueCode = "enrichment_lookup_failed"
)

// IssueStatus tracks triage state. The engine only ever creates issues
// as open; resolution happens in an external workflow.
type IssueStatus string

const (
	IssueOpen     IssueStatus = "open"
	IssueResolved IssueStatus = "resolved"
	IssueIgnored  IssueStatus = "ignored"
)

// GenerationIssue is an audit record of a non-fatal failure during task
// generation. Issues never abort processing of other candidates.
type GenerationIssue struct {
	ID           string      `json:"id" validate:"required,uuid4"`
	UserID       string      `json:"userId" validate:"required,uuid4"`
	HomeID       *string     `json:"homeId,omitempty" validate:"omitempty,uuid4"`
	RoomID       *string     `json:"roomId,omitempty" validate:"omitempty,uuid4"`
	TrackableID  *string     `json:"trackableId,omitempty" validate:"omitempty,uuid4"`
	Code         IssueCode   `json:"code" validate:"required,oneof=template_eval_error upsert_error no_matching_template enrichment_lookup_failed"`
	Status       IssueStatus `json:"status" validate:"required,oneof=open resolved ignored"`
	Message      string      `json:"message,omitempty"`
	DebugPayload string      `json:"debugPayload,omitempty"`
	CreatedAt    time.Time   `json:"createdAt" validate:"required"`
}
