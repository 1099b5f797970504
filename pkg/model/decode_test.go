package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestOptionsPreserveOrderFromJSONObject(t *testing.T) {
	t.Parallel()

	var field Field
	payload := `{"key":"color","type":"select","options":{"red":"Red","blue":"Blue","amber":"Amber"}}`
	if err := json.Unmarshal([]byte(payload), &field); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Options{
		{Value: "red", Label: "Red"},
		{Value: "blue", Label: "Blue"},
		{Value: "amber", Label: "Amber"},
	}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestOptionsFromYAMLMappingAndSequence(t *testing.T) {
	t.Parallel()

	doc := `
mapping:
  "10": Ten
  "2": Two
sequence:
  - value: a
    label: A
`
	var out struct {
		Mapping  Options `yaml:"mapping"`
		Sequence Options `yaml:"sequence"`
	}
	if err := yaml.Unmarshal([]byte(doc), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff(Options{{Value: "10", Label: "Ten"}, {Value: "2", Label: "Two"}}, out.Mapping); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Options{{Value: "a", Label: "A"}}, out.Sequence); diff != "" {
		t.Fatalf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionsCompactForms(t *testing.T) {
	t.Parallel()

	payload := `{"kind":"event","recurrence":["none","!="],"count":3,"flag":true}`
	var conds Conditions
	if err := json.Unmarshal([]byte(payload), &conds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Conditions{
		{Field: "kind", Value: "event"},
		{Field: "recurrence", Value: "none", Operator: OperatorNotEqual},
		{Field: "count", Value: "3"},
		{Field: "flag", Value: "true"},
	}
	if diff := cmp.Diff(want, conds); diff != "" {
		t.Fatalf("conditions mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionsYAMLPair(t *testing.T) {
	t.Parallel()

	doc := `
kind: event
recurrence: [none, "!="]
`
	var conds Conditions
	if err := yaml.Unmarshal([]byte(doc), &conds); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Conditions{
		{Field: "kind", Value: "event"},
		{Field: "recurrence", Value: "none", Operator: OperatorNotEqual},
	}
	if diff := cmp.Diff(want, conds); diff != "" {
		t.Fatalf("conditions mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionsRejectUnknownOperator(t *testing.T) {
	t.Parallel()

	var conds Conditions
	err := json.Unmarshal([]byte(`{"kind":["event","<"]}`), &conds)
	if err == nil {
		t.Fatalf("expected error for unsupported operator")
	}
}

func TestFieldsKeyedMappingSetsKeys(t *testing.T) {
	t.Parallel()

	doc := `
id: event_details
fields:
  _event_start_date:
    type: date
    name: Start Date
  _event_venue:
    type: text
    default: Main Hall
    no_empty: true
`
	var box MetaBox
	if err := yaml.Unmarshal([]byte(doc), &box); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got := box.Fields.Keys(); !cmp.Equal(got, []string{"_event_start_date", "_event_venue"}) {
		t.Fatalf("keys = %v", got)
	}
	venue, ok := box.Fields.Get("_event_venue")
	if !ok {
		t.Fatalf("venue field missing")
	}
	if venue.Default != "Main Hall" || !venue.NoEmpty || venue.Type != FieldTypeText {
		t.Fatalf("unexpected venue field: %+v", venue)
	}
	if !box.HasDateField() {
		t.Fatalf("expected date field to be detected")
	}
}

func TestFieldsJSONObject(t *testing.T) {
	t.Parallel()

	payload := `{"id":"box","fields":{"b":{"type":"text"},"a":{"type":"checkbox"}}}`
	var box MetaBox
	if err := json.Unmarshal([]byte(payload), &box); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := box.Fields.Keys(); !cmp.Equal(got, []string{"b", "a"}) {
		t.Fatalf("keys = %v", got)
	}
}

func TestFieldMerge(t *testing.T) {
	t.Parallel()

	base := Field{
		Key:            "size",
		Type:           FieldTypeSelect,
		Name:           "Size",
		Options:        Options{{Value: "s", Label: "Small"}},
		CustomSanitize: func(v string) string { return v },
	}
	merged, err := base.Merge(map[string]any{
		"key":      "ignored",
		"name":     "Shirt size",
		"no_empty": true,
		"options":  map[string]any{"m": "Medium"},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Key != "size" || merged.Name != "Shirt size" || !merged.NoEmpty {
		t.Fatalf("unexpected merge result %+v", merged)
	}
	if diff := cmp.Diff(Options{{Value: "m", Label: "Medium"}}, merged.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if merged.CustomSanitize == nil {
		t.Fatalf("callbacks should survive a merge")
	}
	if base.Name != "Size" {
		t.Fatalf("merge must not mutate the receiver")
	}

	if _, err := base.Merge(map[string]any{"visibility": map[string]any{"kind": []any{"a", ">"}}}); err == nil {
		t.Fatalf("expected invalid operator error")
	}
}
