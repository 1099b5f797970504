package visibility

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/google/go-cmp/cmp"
)

type visibilityCase struct {
	name       string
	conditions model.Conditions
	values     Values
	want       bool
}

func visibilityCases() []visibilityCase {
	return []visibilityCase{
		{name: "no conditions", values: Values{"a": "x"}, want: true},
		{
			name:       "single equal",
			conditions: model.Conditions{{Field: "kind", Value: "event"}},
			values:     Values{"kind": "event"},
			want:       true,
		},
		{
			name:       "single equal fails",
			conditions: model.Conditions{{Field: "kind", Value: "event"}},
			values:     Values{"kind": "post"},
			want:       false,
		},
		{
			name:       "not equal",
			conditions: model.Conditions{{Field: "kind", Value: "event", Operator: model.OperatorNotEqual}},
			values:     Values{"kind": "post"},
			want:       true,
		},
		{
			name: "all conditions hold",
			conditions: model.Conditions{
				{Field: "kind", Value: "event"},
				{Field: "recurring", Value: "1"},
				{Field: "venue", Value: "", Operator: model.OperatorNotEqual},
			},
			values: Values{"kind": "event", "recurring": "1", "venue": "Hall"},
			want:   true,
		},
		{
			name: "one of three fails",
			conditions: model.Conditions{
				{Field: "kind", Value: "event"},
				{Field: "recurring", Value: "1"},
				{Field: "venue", Value: "", Operator: model.OperatorNotEqual},
			},
			values: Values{"kind": "event", "recurring": "1", "venue": " "},
			want:   false,
		},
		{
			name:       "missing controlling field compares as empty",
			conditions: model.Conditions{{Field: "recurring", Value: ""}},
			values:     Values{},
			want:       true,
		},
		{
			name:       "numeric loose equality",
			conditions: model.Conditions{{Field: "count", Value: "1"}},
			values:     Values{"count": "1.0"},
			want:       true,
		},
		{
			name:       "boolean loose equality",
			conditions: model.Conditions{{Field: "enabled", Value: "1"}},
			values:     Values{"enabled": "on"},
			want:       true,
		},
		{
			name:       "unchecked box equals zero",
			conditions: model.Conditions{{Field: "enabled", Value: "0"}},
			values:     Values{"enabled": ""},
			want:       true,
		},
		{
			name:       "exponent notation compares numerically",
			conditions: model.Conditions{{Field: "code", Value: "1e3"}},
			values:     Values{"code": "1000"},
			want:       true,
		},
		{
			name:       "overflowing numerals compare as infinity",
			conditions: model.Conditions{{Field: "size", Value: "1e400"}},
			values:     Values{"size": "2e400"},
			want:       true,
		},
		{
			name:       "overflow keeps its sign",
			conditions: model.Conditions{{Field: "size", Value: "1e400"}},
			values:     Values{"size": "-1e400"},
			want:       false,
		},
		{
			name:       "byte order mark is trimmed",
			conditions: model.Conditions{{Field: "kind", Value: "event"}},
			values:     Values{"kind": "\uFEFFevent"},
			want:       true,
		},
		{
			name:       "next line and no-break space are trimmed",
			conditions: model.Conditions{{Field: "kind", Value: "\u00A0event"}},
			values:     Values{"kind": "event\u0085"},
			want:       true,
		},
		{
			name:       "case matters for plain strings",
			conditions: model.Conditions{{Field: "kind", Value: "Event"}},
			values:     Values{"kind": "event"},
			want:       false,
		},
	}
}

func TestVisible(t *testing.T) {
	t.Parallel()

	for _, tc := range visibilityCases() {
		field := model.Field{Key: "target", Visibility: tc.conditions}
		if got := Visible(field, tc.values); got != tc.want {
			t.Errorf("%s: Visible() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClientEvaluatorMatchesServer(t *testing.T) {
	t.Parallel()

	vm := goja.New()
	if _, err := vm.RunString(Script()); err != nil {
		t.Fatalf("load script: %v", err)
	}
	wrapper, err := vm.RunString(`(function (c, v) { return CTMB.conditionsMet(JSON.parse(c), JSON.parse(v)); })`)
	if err != nil {
		t.Fatalf("compile wrapper: %v", err)
	}
	conditionsMet, ok := goja.AssertFunction(wrapper)
	if !ok {
		t.Fatalf("wrapper is not callable")
	}

	for _, tc := range visibilityCases() {
		rule := Rules(model.Fields{{Key: "target", Visibility: tc.conditions}})["target"]
		conditions, _ := json.Marshal(rule.Conditions)
		values, _ := json.Marshal(tc.values)

		res, err := conditionsMet(goja.Undefined(), vm.ToValue(string(conditions)), vm.ToValue(string(values)))
		if err != nil {
			t.Fatalf("%s: call: %v", tc.name, err)
		}
		server := Visible(model.Field{Visibility: tc.conditions}, tc.values)
		if res.ToBoolean() != server {
			t.Errorf("%s: client=%v server=%v", tc.name, res.ToBoolean(), server)
		}
	}
}

func TestClientDateListMatchesServer(t *testing.T) {
	t.Parallel()

	vm := goja.New()
	if _, err := vm.RunString(Script()); err != nil {
		t.Fatalf("load script: %v", err)
	}
	parse, err := vm.RunString(`(function (raw) { return CTMB.parseDates(raw).join(','); })`)
	if err != nil {
		t.Fatalf("compile wrapper: %v", err)
	}
	parseDates, _ := goja.AssertFunction(parse)

	inputs := []string{
		"2024-05-02,2024-01-15,2024-05-02",
		"2021-02-30, 2024-02-29 ,1900-02-29",
		"",
		"bogus,2023-12-31",
	}
	for _, input := range inputs {
		res, err := parseDates(goja.Undefined(), vm.ToValue(input))
		if err != nil {
			t.Fatalf("parseDates(%q): %v", input, err)
		}
		if want := datelist.Parse(input).String(); res.String() != want {
			t.Errorf("parseDates(%q) = %q, want %q", input, res.String(), want)
		}
	}

	add, _ := vm.RunString(`CTMB.addDate("2024-03-10", "2024-01-01") + "|" + CTMB.removeDate("2024-01-01,2024-03-10", "2024-01-01")`)
	if got := add.String(); got != "2024-01-01,2024-03-10|2024-03-10" {
		t.Fatalf("add/remove = %q", got)
	}
}

func TestClientDateFormatMatchesServer(t *testing.T) {
	t.Parallel()

	vm := goja.New()
	if _, err := vm.RunString(Script()); err != nil {
		t.Fatalf("load script: %v", err)
	}
	wrapper, err := vm.RunString(`(function (raw, settings) { return CTMB.formatDates(raw, JSON.parse(settings)); })`)
	if err != nil {
		t.Fatalf("compile wrapper: %v", err)
	}
	formatDates, _ := goja.AssertFunction(wrapper)

	settings, err := json.Marshal(datelist.LocaleFor("en").Client(""))
	if err != nil {
		t.Fatalf("encode settings: %v", err)
	}
	localizer := datelist.NewLocalizer()
	for _, raw := range []string{"2024-03-03", "2024-03-05,2024-03-03,bogus", ""} {
		res, err := formatDates(goja.Undefined(), vm.ToValue(raw), vm.ToValue(string(settings)))
		if err != nil {
			t.Fatalf("formatDates(%q): %v", raw, err)
		}
		if want := localizer.Markup(raw); res.String() != want {
			t.Errorf("formatDates(%q)\nclient: %s\nserver: %s", raw, res.String(), want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		{Key: "kind", Type: model.FieldTypeSelect},
		{Key: "venue", Type: model.FieldTypeText, Visibility: model.Conditions{{Field: "kind", Value: "event"}}},
		{Key: "internal", Type: model.FieldTypeText, Hidden: true},
		{Key: "hero", Type: model.FieldTypeText, PageTemplates: []string{"landing.php"}},
	}

	got := Evaluate(nil, fields, Values{"kind": "post"}, "default")
	want := []State{
		{Key: "kind", Visible: true, Managed: true},
		{Key: "venue", Visible: false, Managed: true},
		{Key: "internal", Visible: false, Managed: false},
		{Key: "hero", Visible: false, Managed: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}

	always := EvaluatorFunc(func(model.Field, Values) bool { return true })
	states := Evaluate(always, fields, nil, "landing.php")
	for _, state := range states {
		if state.Key != "internal" && !state.Visible {
			t.Fatalf("expected %s visible with custom evaluator", state.Key)
		}
	}
}

func TestPayload(t *testing.T) {
	t.Parallel()

	fields := model.Fields{
		{Key: "kind"},
		{Key: "venue", Visibility: model.Conditions{{Field: "kind", Value: "event"}}},
		{Key: "internal", Hidden: true, Visibility: model.Conditions{{Field: "kind", Value: "x"}}},
	}
	payload, err := Payload(fields)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	want := `{"venue":{"conditions":[{"field":"kind","value":"event","operator":"=="}]}}`
	if payload != want {
		t.Fatalf("payload = %s, want %s", payload, want)
	}
	if strings.Contains(payload, "internal") {
		t.Fatalf("hidden field leaked into payload")
	}
}

func TestAssetsFS(t *testing.T) {
	t.Parallel()

	if !strings.Contains(Script(), "conditionsMet") {
		t.Fatalf("embedded script missing evaluator")
	}
	if _, err := AssetsFS().Open(StylesheetName); err != nil {
		t.Fatalf("stylesheet not embedded: %v", err)
	}
}
