package rules

import (
	"strings"
	"testing"

	"github.com/nestkeeper/nestkeeper/models"
)

const samplePack = `
name: starter
rules:
  - key: room_bedroom_rotate_mattress_quarterly
    scope: room
    enabled: true
    conditions:
      - target: room
        field: type
        operator: eq
        value: bedroom
    template:
      title: Rotate mattress
      recurrence_interval: 3 months
      criticality: low
  - key: home_gutter_cleaning
    scope: home
    enabled: true
    conditions:
      - target: home
        field: has_yard
        operator: eq
        value: "true"
    template:
      title: Clean gutters
      recurrence_interval: 6 months
`

func TestLoadPack(t *testing.T) {
	pack, err := LoadPack(strings.NewReader(samplePack))
	if err != nil {
		t.Fatalf("LoadPack: %v", err)
	}
	if len(pack.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(pack.Rules))
	}
	r := pack.Rules[0]
	if r.Key != "room_bedroom_rotate_mattress_quarterly" || r.Scope != models.ScopeRoom {
		t.Errorf("unexpected first rule: %+v", r)
	}
	if r.TemplateSeed.Title != "Rotate mattress" || r.TemplateSeed.RecurrenceInterval != "3 months" {
		t.Errorf("seed not parsed: %+v", r.TemplateSeed)
	}
	if r.Conditions[0].Order != 1 {
		t.Errorf("order should default to position, got %d", r.Conditions[0].Order)
	}
}

func TestLoadPackRejectsUnknownOperator(t *testing.T) {
	bad := strings.Replace(samplePack, "operator: eq", "operator: matches", 1)
	if _, err := LoadPack(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for unknown operator")
	}
}

func TestLoadPackRejectsDuplicateKeys(t *testing.T) {
	bad := strings.Replace(samplePack, "home_gutter_cleaning", "room_bedroom_rotate_mattress_quarterly", 1)
	if _, err := LoadPack(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for duplicate key")
	}
}

func TestLoadPackRejectsMissingTitle(t *testing.T) {
	bad := strings.Replace(samplePack, "title: Clean gutters", "description: no title here", 1)
	if _, err := LoadPack(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for missing template title")
	}
}
