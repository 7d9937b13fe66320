package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nestkeeper/nestkeeper/internal/recurrence"
	"github.com/nestkeeper/nestkeeper/llm"
	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/prompts"
	"github.com/nestkeeper/nestkeeper/store"
	"github.com/nestkeeper/nestkeeper/types"
)

const (
	maxCandidates = 8
	maxListLen    = 10
)

// Enricher asks the LLM collaborator for task template candidates when
// the catalog has nothing for a trackable type, and persists coerced
// candidates through the normal template path. Every failure along the
// way degrades to an enrichment_lookup_failed issue and zero
// candidates; enrichment never fails a caller.
type Enricher struct {
	store        store.Store
	provider     llm.Provider
	templates    *TemplateMaterializer
	templatesDir string
	verbose      bool
}

func NewEnricher(st store.Store, provider llm.Provider, templatesDir string, verbose bool) *Enricher {
	return &Enricher{
		store:        st,
		provider:     provider,
		templates:    NewTemplateMaterializer(st),
		templatesDir: templatesDir,
		verbose:      verbose,
	}
}

// EnrichCatalogEntry proposes and persists templates for a catalog
// entry that has none. Returns the number of templates linked by this
// call; an entry with existing links is a no-op so the external
// collaborator is never re-invoked for a covered type.
func (e *Enricher) EnrichCatalogEntry(ctx context.Context, userID string, entry *models.CatalogEntry) (int, error) {
	linked, err := e.store.CountTemplatesForCatalog(ctx, entry.ID)
	if err != nil {
		return 0, fmt.Errorf("count templates for catalog entry %s: %w", entry.ID, err)
	}
	if linked > 0 {
		if e.verbose {
			fmt.Fprintf(os.Stderr, "[enrich] catalog entry %s already has %d linked template(s), skipping\n", entry.ID, linked)
		}
		return 0, nil
	}

	candidates := e.fetchCandidates(ctx, userID, entry)
	if len(candidates) == 0 {
		return 0, nil
	}

	created := 0
	for i := range candidates {
		seed := coerceCandidate(&candidates[i])
		if seed.Title == "" {
			continue
		}
		tpl, err := e.templates.EnsureTemplate(ctx, "enrichment:"+entry.ID, seed)
		if err != nil {
			e.recordFailure(ctx, userID, entry, fmt.Sprintf("candidate %q: %v", candidates[i].Title, err))
			continue
		}
		if tpl.CatalogEntryID == nil {
			tpl.CatalogEntryID = &entry.ID
			if err := e.store.UpdateTemplate(ctx, tpl); err != nil {
				e.recordFailure(ctx, userID, entry, fmt.Sprintf("link template %s: %v", tpl.ID, err))
				continue
			}
		}
		created++
	}
	return created, nil
}

// fetchCandidates runs the external call and the untrusted-text
// parsing. Any failure is logged as an issue and yields nil.
func (e *Enricher) fetchCandidates(ctx context.Context, userID string, entry *models.CatalogEntry) []types.CandidateTemplate {
	systemPrompt, err := prompts.GetPrompt(prompts.KeySuggestTemplates, e.templatesDir)
	if err != nil {
		e.recordFailure(ctx, userID, entry, fmt.Sprintf("load prompt: %v", err))
		return nil
	}

	req := types.EnrichmentRequest{
		Brand:    entry.Brand,
		Model:    entry.Model,
		Type:     entry.Type,
		Category: entry.Category,
		Notes:    entry.Notes,
	}
	raw, err := e.provider.SuggestTemplates(ctx, systemPrompt, req)
	if err != nil {
		e.recordFailure(ctx, userID, entry, fmt.Sprintf("provider call: %v", err))
		return nil
	}

	arr, ok := llm.ExtractJSONArray(raw)
	if !ok {
		e.recordFailure(ctx, userID, entry, "response contains no JSON array")
		return nil
	}
	var candidates []types.CandidateTemplate
	if err := json.Unmarshal([]byte(arr), &candidates); err != nil {
		e.recordFailure(ctx, userID, entry, fmt.Sprintf("decode candidates: %v", err))
		return nil
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// coerceCandidate bounds and defaults one untrusted candidate into a
// seed the normal template path can accept.
func coerceCandidate(c *types.CandidateTemplate) models.TemplateSeed {
	seed := models.TemplateSeed{
		Title:              c.Title,
		Description:        c.Description,
		Category:           c.Category,
		RecurrenceInterval: c.RecurrenceInterval,
		Steps:              truncateList(c.Steps),
		EquipmentNeeded:    truncateList(c.EquipmentNeeded),
		Resources:          truncateList(c.Resources),
	}

	switch models.Criticality(c.Criticality) {
	case models.CriticalityLow, models.CriticalityMedium, models.CriticalityHigh:
		seed.Criticality = models.Criticality(c.Criticality)
	default:
		seed.Criticality = models.CriticalityMedium
	}

	canDefer := true
	if c.CanDefer != nil {
		canDefer = *c.CanDefer
	}
	seed.CanDefer = &canDefer

	outsourced := false
	if c.CanBeOutsourced != nil {
		outsourced = *c.CanBeOutsourced
	}
	seed.CanBeOutsourced = &outsourced

	seed.DeferLimitDays = 7
	if c.DeferLimitDays != nil && *c.DeferLimitDays > 0 {
		seed.DeferLimitDays = *c.DeferLimitDays
	}
	seed.EstimatedTimeMin = 30
	if c.EstimatedTimeMin != nil && *c.EstimatedTimeMin > 0 {
		seed.EstimatedTimeMin = *c.EstimatedTimeMin
	}
	seed.EstimatedCost = 0
	if c.EstimatedCost != nil && *c.EstimatedCost > 0 {
		seed.EstimatedCost = *c.EstimatedCost
	}

	// Normalize parseable intervals to one canonical spelling so
	// "every 3 months" and "3 months" land on the same template
	// identity. Unparseable text is kept as written; due-date math
	// applies its own fallback.
	if rule, ok := recurrence.ParseInterval(seed.RecurrenceInterval); ok {
		seed.RecurrenceInterval = rule.String()
	}

	return seed
}

func truncateList(list []string) []string {
	if len(list) > maxListLen {
		return list[:maxListLen]
	}
	return list
}

func (e *Enricher) recordFailure(ctx context.Context, userID string, entry *models.CatalogEntry, message string) {
	iss := &models.GenerationIssue{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      models.IssueEnrichmentLookupFailed,
		Status:    models.IssueOpen,
		Message:   fmt.Sprintf("catalog entry %s (%s): %s", entry.ID, entry.Type, message),
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateIssue(ctx, iss); err != nil {
		fmt.Fprintf(os.Stderr, "[enrich] failed to record issue: %v\n", err)
	}
}
