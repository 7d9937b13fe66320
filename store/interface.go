package store

import (
	"context"

	"github.com/nestkeeper/nestkeeper/models"
)

// Store defines the persistence contract the generation engine runs on.
// The relational schema is an implementation detail; the behavioral
// contract is what matters:
//
//   - Task templates are looked up by (title, category, recurrence
//     interval), not by synthetic id, because multiple rules may
//     converge on the same human-authored template.
//   - Task instances are upserted under a UNIQUE(user_id, dedupe_key)
//     constraint. Concurrent upserts for the same logical instance
//     serialize at the constraint; two rows can never exist.
//   - Rules are read filtered by enabled=true with conditions attached.
type Store interface {
	// --- Scope entities ---

	// CreateHome persists a home. Used by seeding and tests; the engine
	// itself only reads scope entities.
	CreateHome(ctx context.Context, h *models.Home) error
	GetHome(ctx context.Context, id string) (*models.Home, error)
	CreateRoom(ctx context.Context, r *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	CreateTrackable(ctx context.Context, tr *models.Trackable) error
	GetTrackable(ctx context.Context, id string) (*models.Trackable, error)

	// --- Rules ---

	// ReplaceRule upserts a rule by its stable key, replacing its
	// condition rows wholesale. Used by rule-pack imports.
	ReplaceRule(ctx context.Context, r *models.Rule) error

	// ListEnabledRules returns enabled rules for a scope kind with
	// conditions eager-loaded in condition order.
	ListEnabledRules(ctx context.Context, scope models.RuleScope) ([]models.Rule, error)

	// ListRules returns all rules regardless of enabled state.
	ListRules(ctx context.Context) ([]models.Rule, error)

	// --- Task templates ---

	// GetTemplateByIdentity looks a template up by its identity triple.
	// Returns (nil, nil) when no template matches.
	GetTemplateByIdentity(ctx context.Context, title, category, recurrenceInterval string) (*models.TaskTemplate, error)
	CreateTemplate(ctx context.Context, t *models.TaskTemplate) error

	// UpdateTemplate writes the full template row. Merge-safety (never
	// clobbering admin-set fields) is the materializer's job; the store
	// persists whatever it is handed.
	UpdateTemplate(ctx context.Context, t *models.TaskTemplate) error
	ListTemplates(ctx context.Context) ([]models.TaskTemplate, error)

	// --- Catalog ---

	CreateCatalogEntry(ctx context.Context, e *models.CatalogEntry) error
	GetCatalogEntry(ctx context.Context, id string) (*models.CatalogEntry, error)

	// CountTemplatesForCatalog reports how many templates are linked to
	// a catalog entry. Enrichment is a no-op once the count is nonzero.
	CountTemplatesForCatalog(ctx context.Context, entryID string) (int, error)

	// --- Task instances ---

	// UpsertTaskInstance inserts or refreshes the instance identified by
	// (UserID, DedupeKey). The refresh path updates the due date, the
	// template-copied fields and flips status back to pending unless the
	// stored instance is archived or paused. It reports whether a new
	// row was created.
	UpsertTaskInstance(ctx context.Context, inst *models.TaskInstance) (created bool, err error)
	GetTaskInstanceByDedupeKey(ctx context.Context, userID, dedupeKey string) (*models.TaskInstance, error)
	ListTaskInstances(ctx context.Context, userID string) ([]models.TaskInstance, error)

	// --- Generation issues ---

	CreateIssue(ctx context.Context, iss *models.GenerationIssue) error
	ListIssues(ctx context.Context, status models.IssueStatus) ([]models.GenerationIssue, error)

	// Close releases the underlying database handle.
	Close() error
}
