package rules

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/nestkeeper/nestkeeper/models"
)

// Pack is a set of authored rules, typically shipped as a YAML file and
// imported into the rule store out-of-band.
type Pack struct {
	Name  string        `yaml:"name"`
	Rules []models.Rule `yaml:"rules"`
}

// LoadPack parses and validates a YAML rule pack. Import-time validation
// is strict where evaluation is lenient: an unknown operator here is a
// hard error so it never reaches the fail-closed path at runtime.
func LoadPack(r io.Reader) (*Pack, error) {
	var pack Pack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pack); err != nil {
		return nil, fmt.Errorf("parse rule pack: %w", err)
	}
	if len(pack.Rules) == 0 {
		return nil, fmt.Errorf("rule pack contains no rules")
	}

	seen := make(map[string]bool, len(pack.Rules))
	for i := range pack.Rules {
		rule := &pack.Rules[i]
		if rule.Key == "" {
			return nil, fmt.Errorf("rule %d: missing key", i)
		}
		if seen[rule.Key] {
			return nil, fmt.Errorf("rule %q: duplicate key", rule.Key)
		}
		seen[rule.Key] = true
		switch rule.Scope {
		case models.ScopeHome, models.ScopeRoom, models.ScopeTrackable:
		default:
			return nil, fmt.Errorf("rule %q: invalid scope %q", rule.Key, rule.Scope)
		}
		if rule.TemplateSeed.Title == "" {
			return nil, fmt.Errorf("rule %q: template seed needs a title", rule.Key)
		}
		for j := range rule.Conditions {
			cond := &rule.Conditions[j]
			if !models.KnownOperator(cond.Operator) {
				return nil, fmt.Errorf("rule %q condition %d: unknown operator %q", rule.Key, j, cond.Operator)
			}
			if cond.Field == "" {
				return nil, fmt.Errorf("rule %q condition %d: missing field", rule.Key, j)
			}
			switch cond.Target {
			case models.TargetHome, models.TargetRoom, models.TargetRoomDetail, models.TargetTrackable:
			default:
				return nil, fmt.Errorf("rule %q condition %d: invalid target %q", rule.Key, j, cond.Target)
			}
			if cond.Order == 0 {
				cond.Order = j + 1
			}
		}
	}
	return &pack, nil
}
