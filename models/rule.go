package models

import "time"

// RuleScope identifies which kind of entity a rule is evaluated against.
type RuleScope string

const (
	ScopeHome      RuleScope = "home"
	ScopeRoom      RuleScope = "room"
	ScopeTrackable RuleScope = "trackable"
)

// ConditionTarget selects the segment of the evaluation context a
// condition reads from.
type ConditionTarget string

const (
	TargetHome       ConditionTarget = "home"
	TargetRoom       ConditionTarget = "room"
	TargetRoomDetail ConditionTarget = "room_detail"
	TargetTrackable  ConditionTarget = "trackable"
)

// Operator is the comparison a condition applies. Unknown operators are
// fail-closed at evaluation time and rejected at rule-pack import time.
type Operator string

const (
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
	OpEq          Operator = "eq"
	OpNe          Operator = "ne"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGte         Operator = "gte"
	OpLte         Operator = "lte"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

// KnownOperator reports whether op is one of the supported operators.
func KnownOperator(op Operator) bool {
	switch op {
	case OpExists, OpNotExists, OpEq, OpNe, OpContains, OpNotContains, OpGte, OpLte, OpIn, OpNotIn:
		return true
	}
	return false
}

// Condition is one predicate within a rule. All conditions of a rule are
// ANDed; evaluation follows Order but every operator is pure, so the
// result is order-independent.
type Condition struct {
	Order    int             `json:"order" yaml:"order"`
	Target   ConditionTarget `json:"target" yaml:"target" validate:"required,oneof=home room room_detail trackable"`
	Field    string          `json:"field" yaml:"field" validate:"required,min=1"`
	Operator Operator        `json:"operator" yaml:"operator" validate:"required"`
	Value    string          `json:"value,omitempty" yaml:"value,omitempty"`
	ValueSet []string        `json:"valueSet,omitempty" yaml:"value_set,omitempty"`
}

// Rule decides whether a template applies to a scope. Key is the stable
// identity used for template traceability and dedupe-key derivation.
// Rules are authored out-of-band (YAML packs, admin tooling) and are
// read-only to the engine.
type Rule struct {
	ID           string       `json:"id" validate:"required,uuid4"`
	Key          string       `json:"key" yaml:"key" validate:"required,min=1,max=255"`
	Scope        RuleScope    `json:"scope" yaml:"scope" validate:"required,oneof=home room trackable"`
	Enabled      bool         `json:"enabled" yaml:"enabled"`
	Conditions   []Condition  `json:"conditions" yaml:"conditions" validate:"dive"`
	TemplateSeed TemplateSeed `json:"templateSeed" yaml:"template" validate:"required"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
