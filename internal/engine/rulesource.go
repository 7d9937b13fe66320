package engine

import (
	"context"
	"sync"
	"time"

	"github.com/nestkeeper/nestkeeper/models"
	"github.com/nestkeeper/nestkeeper/store"
)

// DefaultRuleCacheTTL bounds how stale cached rules may get. Rule edits
// are rare operator actions; a sub-10-second window is an acceptable
// trade for not scanning the rule table on every trigger.
const DefaultRuleCacheTTL = 10 * time.Second

type cachedRules struct {
	rules     []models.Rule
	fetchedAt time.Time
}

// RuleSource serves enabled rules per scope kind with a short-lived
// cache in front of the store. Invalidation is time-based only; there
// is no edit-driven invalidation, so a rule changed mid-window takes
// effect when the TTL lapses.
type RuleSource struct {
	store store.Store
	ttl   time.Duration

	mu    sync.Mutex
	cache map[models.RuleScope]cachedRules
}

// NewRuleSource wraps a store with a TTL cache. A non-positive ttl
// falls back to DefaultRuleCacheTTL.
func NewRuleSource(st store.Store, ttl time.Duration) *RuleSource {
	if ttl <= 0 {
		ttl = DefaultRuleCacheTTL
	}
	return &RuleSource{
		store: st,
		ttl:   ttl,
		cache: make(map[models.RuleScope]cachedRules),
	}
}

// RulesFor returns the enabled rules for a scope kind, from cache when
// fresh enough.
func (r *RuleSource) RulesFor(ctx context.Context, scope models.RuleScope) ([]models.Rule, error) {
	r.mu.Lock()
	if entry, ok := r.cache[scope]; ok && time.Since(entry.fetchedAt) < r.ttl {
		rules := entry.rules
		r.mu.Unlock()
		return rules, nil
	}
	r.mu.Unlock()

	rules, err := r.store.ListEnabledRules(ctx, scope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[scope] = cachedRules{rules: rules, fetchedAt: time.Now()}
	r.mu.Unlock()
	return rules, nil
}

// Invalidate drops all cached rules. Called after rule-pack imports so
// a freshly imported pack is visible immediately.
func (r *RuleSource) Invalidate() {
	r.mu.Lock()
	r.cache = make(map[models.RuleScope]cachedRules)
	r.mu.Unlock()
}
