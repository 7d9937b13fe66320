package rules

import (
	"math"
	"testing"

	"github.com/nestkeeper/nestkeeper/models"
)

func roomCtx(roomType string) Context {
	return Context{
		models.TargetRoom: {"type": roomType, "name": "somewhere"},
	}
}

func cond(target models.ConditionTarget, field string, op models.Operator, value string) models.Condition {
	return models.Condition{Target: target, Field: field, Operator: op, Value: value}
}

func TestEvaluateOperators(t *testing.T) {
	ctx := Context{
		models.TargetHome: {
			"year_built": 1992,
			"home_type":  "House",
			"has_yard":   true,
		},
		models.TargetTrackable: {
			"type":  "Water Heater",
			"brand": "Rheem",
			"age":   "12",
		},
	}

	tests := []struct {
		name string
		cond models.Condition
		want bool
	}{
		{"exists hit", cond(models.TargetHome, "year_built", models.OpExists, ""), true},
		{"exists miss", cond(models.TargetHome, "pool", models.OpExists, ""), false},
		{"not_exists on missing segment", cond(models.TargetRoom, "type", models.OpNotExists, ""), true},
		{"eq case-insensitive", cond(models.TargetHome, "home_type", models.OpEq, "house"), true},
		{"ne", cond(models.TargetHome, "home_type", models.OpNe, "condo"), true},
		{"contains", cond(models.TargetTrackable, "type", models.OpContains, "heater"), true},
		{"not_contains", cond(models.TargetTrackable, "type", models.OpNotContains, "dishwasher"), true},
		{"gte numeric context value", cond(models.TargetHome, "year_built", models.OpGte, "1980"), true},
		{"gte fails", cond(models.TargetHome, "year_built", models.OpGte, "2000"), false},
		{"lte string number coerced", cond(models.TargetTrackable, "age", models.OpLte, "15"), true},
		{"gte non-numeric fails closed", cond(models.TargetTrackable, "brand", models.OpGte, "5"), false},
		{"eq against missing field", cond(models.TargetHome, "pool", models.OpEq, "true"), false},
		{"bool eq", cond(models.TargetHome, "has_yard", models.OpEq, "true"), true},
		{"unknown operator fails closed", cond(models.TargetHome, "home_type", models.Operator("matches"), "house"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate([]models.Condition{tt.cond}, ctx); got != tt.want {
				t.Errorf("Evaluate(%+v) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestEvaluateIn(t *testing.T) {
	ctx := roomCtx("Kitchen")
	c := models.Condition{
		Target: models.TargetRoom, Field: "type", Operator: models.OpIn,
		ValueSet: []string{"kitchen", "bathroom"},
	}
	if !Evaluate([]models.Condition{c}, ctx) {
		t.Error("in should match kitchen")
	}
	c.Operator = models.OpNotIn
	if Evaluate([]models.Condition{c}, ctx) {
		t.Error("not_in should not match kitchen")
	}
}

func TestEvaluateConjunction(t *testing.T) {
	ctx := Context{
		models.TargetHome: {"year_built": 1950, "has_yard": true},
	}
	conds := []models.Condition{
		{Order: 2, Target: models.TargetHome, Field: "has_yard", Operator: models.OpEq, Value: "true"},
		{Order: 1, Target: models.TargetHome, Field: "year_built", Operator: models.OpLte, Value: "1960"},
	}
	if !Evaluate(conds, ctx) {
		t.Error("both conditions hold, expected match")
	}
	conds[0].Value = "false"
	if Evaluate(conds, ctx) {
		t.Error("one failing condition must fail the conjunction")
	}
	if !Evaluate(nil, ctx) {
		t.Error("empty condition list matches everything")
	}
}

func TestNaNFailsClosed(t *testing.T) {
	ctx := Context{models.TargetHome: {"score": math.NaN()}}
	ge := cond(models.TargetHome, "score", models.OpGte, "0")
	le := cond(models.TargetHome, "score", models.OpLte, "0")
	if Evaluate([]models.Condition{ge}, ctx) || Evaluate([]models.Condition{le}, ctx) {
		t.Error("NaN must never satisfy a numeric predicate")
	}
}

func TestRoomTypeCanonicalization(t *testing.T) {
	bedroomRule := cond(models.TargetRoom, "type", models.OpEq, "bedroom")
	for _, literal := range []string{"Primary Bedroom", "Guest Room", "Nursery", "bedroom", "MASTER BEDROOM", "Upstairs Guest Bedroom"} {
		if !Evaluate([]models.Condition{bedroomRule}, roomCtx(literal)) {
			t.Errorf("room type %q should canonicalize to bedroom", literal)
		}
	}
	if Evaluate([]models.Condition{bedroomRule}, roomCtx("Kitchen")) {
		t.Error("kitchen must not match bedroom")
	}

	// Canonicalization applies to in/not_in as well.
	inRule := models.Condition{
		Target: models.TargetRoom, Field: "type", Operator: models.OpIn,
		ValueSet: []string{"bathroom"},
	}
	if !Evaluate([]models.Condition{inRule}, roomCtx("Powder Room")) {
		t.Error("powder room should canonicalize to bathroom for in")
	}

	// But only for target=room, field=type.
	nameRule := cond(models.TargetRoom, "name", models.OpEq, "bedroom")
	if Evaluate([]models.Condition{nameRule}, Context{models.TargetRoom: {"name": "Guest Room"}}) {
		t.Error("canonicalization must not apply to other fields")
	}
}

func TestCanonicalRoomType(t *testing.T) {
	tests := map[string]string{
		"Primary Bedroom": "bedroom",
		"guest room":      "bedroom",
		"Nursery":         "bedroom",
		"Half Bath":       "bathroom",
		"EN SUITE":        "bathroom",
		"kitchenette":     "kitchen",
		"Family Room":     "living_room",
		"Mudroom":         "laundry",
		"Home Office":     "office",
		"living_room":     "living_room",
		"Wine Cellar":     "wine_cellar", // unknown passes through normalized
	}
	for in, want := range tests {
		if got := CanonicalRoomType(in); got != want {
			t.Errorf("CanonicalRoomType(%q) = %q, want %q", in, got, want)
		}
	}
}
