package types

// CandidateTemplate is the expected structure for one maintenance-task
// candidate proposed by the enrichment collaborator. The response is
// untrusted: every field is defaulted or bounded during coercion, so all
// flags are pointers to distinguish "absent" from "false".
type CandidateTemplate struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	RecurrenceInterval string   `json:"recurrenceInterval"`
	Criticality        string   `json:"criticality"` // "low", "medium", "high"
	CanDefer           *bool    `json:"canDefer,omitempty"`
	DeferLimitDays     *int     `json:"deferLimitDays,omitempty"`
	EstimatedTimeMin   *int     `json:"estimatedTimeMinutes,omitempty"`
	EstimatedCost      *float64 `json:"estimatedCost,omitempty"`
	CanBeOutsourced    *bool    `json:"canBeOutsourced,omitempty"`
	Steps              []string `json:"steps,omitempty"`
	EquipmentNeeded    []string `json:"equipmentNeeded,omitempty"`
	Resources          []string `json:"resources,omitempty"`
}

// EnrichmentRequest describes the catalog entry the collaborator should
// propose maintenance tasks for.
type EnrichmentRequest struct {
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	Type     string `json:"type"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
}
