// Package engine is the task-generation core: it evaluates rules
// against a scope, materializes templates and task instances, and
// converts per-rule failures into generation issues instead of
// propagating them. Re-running a pass for an unchanged scope refreshes
// existing instances and never duplicates them.
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nestkeeper/nestkeeper/internal/rules"
	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/store"
)

// Config tunes an Engine.
type Config struct {
	RuleCacheTTL time.Duration
	Verbose      bool
}

// Engine orchestrates one generation pass per scope:
// resolve -> evaluate -> materialize template -> materialize instance.
type Engine struct {
	store     store.Store
	rules     *RuleSource
	templates *TemplateMaterializer
	instances *InstanceMaterializer
	verbose   bool
}

// New assembles an engine on top of a store.
func New(st store.Store, cfg Config) *Engine {
	return &Engine{
		store:     st,
		rules:     NewRuleSource(st, cfg.RuleCacheTTL),
		templates: NewTemplateMaterializer(st),
		instances: NewInstanceMaterializer(st),
		verbose:   cfg.Verbose,
	}
}

// RuleSource exposes the engine's cache so rule imports can invalidate it.
func (e *Engine) RuleSource() *RuleSource { return e.rules }

// GenerationReport summarizes one pass. Issues counts rows written to
// the issue log, not errors returned to the caller.
type GenerationReport struct {
	RulesConsidered int
	RulesMatched    int
	Created         int
	Refreshed       int
	Issues          int
}

// Generate runs a full pass for one scope on behalf of one user. A
// failure in any single rule is recorded as a generation issue and the
// pass continues; only a failure to resolve the scope or load rules is
// returned as an error.
func (e *Engine) Generate(ctx context.Context, userID string, kind models.RuleScope, scopeID string) (*GenerationReport, error) {
	scope, err := ResolveScope(ctx, e.store, kind, scopeID)
	if err != nil {
		return nil, err
	}

	ruleSet, err := e.rules.RulesFor(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("load rules for %s scope: %w", kind, err)
	}

	report := &GenerationReport{RulesConsidered: len(ruleSet)}
	evalCtx := scope.Context()

	for i := range ruleSet {
		e.runRule(ctx, userID, scope, &ruleSet[i], evalCtx, report)
	}

	// A room or trackable with no applicable rule at all is a coverage
	// gap worth surfacing, distinct from any per-rule failure.
	if report.RulesMatched == 0 && kind != models.ScopeHome {
		e.recordIssue(ctx, userID, scope, models.IssueNoMatchingTemplate,
			fmt.Sprintf("no rule matched %s %s", kind, scopeID), "")
		report.Issues++
	}

	return report, nil
}

// runRule executes one rule end to end, converting any failure —
// including panics out of a malformed rule — into a logged issue.
func (e *Engine) runRule(ctx context.Context, userID string, scope *Scope, rule *models.Rule, evalCtx rules.Context, report *GenerationReport) {
	defer func() {
		if r := recover(); r != nil {
			e.recordIssue(ctx, userID, scope, models.IssueTemplateEvalError,
				fmt.Sprintf("rule %s panicked", rule.Key), fmt.Sprintf("%v", r))
			report.Issues++
		}
	}()

	if !rules.Evaluate(rule.Conditions, evalCtx) {
		return
	}
	report.RulesMatched++

	tpl, err := e.templates.EnsureTemplate(ctx, rule.Key, rule.TemplateSeed)
	if err != nil {
		e.recordIssue(ctx, userID, scope, models.IssueTemplateEvalError,
			fmt.Sprintf("rule %s: template materialization failed", rule.Key), err.Error())
		report.Issues++
		return
	}

	created, err := e.instances.UpsertInstance(ctx, userID, scope, tpl, models.SourceRule, nil)
	if err != nil {
		e.recordIssue(ctx, userID, scope, models.IssueUpsertError,
			fmt.Sprintf("rule %s: instance upsert failed", rule.Key), err.Error())
		report.Issues++
		return
	}
	if created {
		report.Created++
	} else {
		report.Refreshed++
	}
	if e.verbose {
		fmt.Fprintf(os.Stderr, "[engine] rule %s: instance %s\n", rule.Key, map[bool]string{true: "created", false: "refreshed"}[created])
	}
}

// recordIssue writes an audit row for a non-fatal failure. Issue
// insertion itself failing must not take down the pass; it degrades to
// a stderr note.
func (e *Engine) recordIssue(ctx context.Context, userID string, scope *Scope, code models.IssueCode, message, debug string) {
	iss := &models.GenerationIssue{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		Status:    models.IssueOpen,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if scope != nil {
		iss.HomeID = scope.HomeID()
		iss.RoomID = scope.RoomID()
		iss.TrackableID = scope.TrackableID()
	}
	if debug != "" {
		iss.DebugPayload = debug
	}
	if err := e.store.CreateIssue(ctx, iss); err != nil {
		fmt.Fprintf(os.Stderr, "[engine] failed to record %s issue: %v\n", code, err)
	}
}
