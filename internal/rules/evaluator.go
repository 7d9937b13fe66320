// Package rules evaluates rule conditions against a scope context and
// loads authored rule packs. Evaluation is fail-closed: malformed
// conditions make their rule not match, they never error.
package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/nestkeeper/nestkeeper/models"
)

// Context is the attribute bag a rule is evaluated against, keyed by
// condition target then field. Segments that do not apply to the scope
// (e.g. no room in a home-scope pass) are simply absent.
type Context map[models.ConditionTarget]map[string]any

// Lookup returns the value at [target][field]; ok=false when either
// segment is missing.
func (c Context) Lookup(target models.ConditionTarget, field string) (any, bool) {
	seg, ok := c[target]
	if !ok {
		return nil, false
	}
	v, ok := seg[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Evaluate reports whether every condition holds against the context.
// Conditions are ANDed in Order and short-circuit on the first failure;
// all operators are pure, so the result is order-independent.
func Evaluate(conds []models.Condition, ctx Context) bool {
	sorted := make([]models.Condition, len(conds))
	copy(sorted, conds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	for _, c := range sorted {
		if !evalOne(c, ctx) {
			return false
		}
	}
	return true
}

// isRoomType reports whether the condition compares the room's type,
// which gets canonicalized on both sides before equality/set operators.
func isRoomType(c models.Condition) bool {
	return c.Target == models.TargetRoom && c.Field == "type"
}

func evalOne(c models.Condition, ctx Context) bool {
	val, present := ctx.Lookup(c.Target, c.Field)

	switch c.Operator {
	case models.OpExists:
		return present
	case models.OpNotExists:
		return !present
	}

	// Every remaining operator needs a value to compare against.
	if !present {
		return false
	}

	switch c.Operator {
	case models.OpEq:
		return compareEq(c, val)
	case models.OpNe:
		return !compareEq(c, val)
	case models.OpContains:
		return strings.Contains(fold(toString(val)), fold(c.Value))
	case models.OpNotContains:
		return !strings.Contains(fold(toString(val)), fold(c.Value))
	case models.OpGte:
		a, aok := toNumber(val)
		b, bok := toNumber(c.Value)
		return aok && bok && a >= b
	case models.OpLte:
		a, aok := toNumber(val)
		b, bok := toNumber(c.Value)
		return aok && bok && a <= b
	case models.OpIn:
		return inSet(c, val)
	case models.OpNotIn:
		return !inSet(c, val)
	}
	// Unknown operator: fail closed so one malformed rule cannot take
	// down the pass for every other scope.
	return false
}

func compareEq(c models.Condition, val any) bool {
	left, right := fold(toString(val)), fold(c.Value)
	if isRoomType(c) {
		left, right = CanonicalRoomType(left), CanonicalRoomType(right)
	}
	return left == right
}

func inSet(c models.Condition, val any) bool {
	left := fold(toString(val))
	if isRoomType(c) {
		left = CanonicalRoomType(left)
	}
	for _, want := range c.ValueSet {
		right := fold(want)
		if isRoomType(c) {
			right = CanonicalRoomType(right)
		}
		if left == right {
			return true
		}
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// toNumber coerces a context or condition value to a float64. Anything
// that does not parse (including NaN) is not a number, and numeric
// operators fail closed on it.
func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t == t // NaN != NaN
	case float32:
		f := float64(t)
		return f, f == f
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, f == f
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
