package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/testsupport"
	"github.com/google/go-cmp/cmp"
)

type stubDriver struct {
	t         *testing.T
	responses []any
	pos       int
	asked     []string
	infos     []string
	inputs    []InputConfig
	selects   []SelectConfig
}

func (s *stubDriver) next(message string) any {
	s.t.Helper()
	s.asked = append(s.asked, message)
	if s.pos >= len(s.responses) {
		s.t.Fatalf("unexpected prompt %q", message)
	}
	value := s.responses[s.pos]
	s.pos++
	if err, ok := value.(error); ok {
		return err
	}
	return value
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputs = append(s.inputs, cfg)
	switch v := s.next(cfg.Message).(type) {
	case error:
		return "", v
	case string:
		if cfg.Validator != nil {
			if err := cfg.Validator(v); err != nil {
				return "", err
			}
		}
		return v, nil
	default:
		s.t.Fatalf("input %q: unexpected response %T", cfg.Message, v)
		return "", nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	switch v := s.next(cfg.Message).(type) {
	case error:
		return false, v
	case bool:
		return v, nil
	default:
		s.t.Fatalf("confirm %q: unexpected response %T", cfg.Message, v)
		return false, nil
	}
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	switch v := s.next(cfg.Message).(type) {
	case error:
		return 0, v
	case int:
		return v, nil
	default:
		s.t.Fatalf("select %q: unexpected response %T", cfg.Message, v)
		return 0, nil
	}
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.selects = append(s.selects, cfg)
	switch v := s.next(cfg.Message).(type) {
	case error:
		return nil, v
	case []int:
		return v, nil
	default:
		s.t.Fatalf("multiselect %q: unexpected response %T", cfg.Message, v)
		return nil, nil
	}
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	switch v := s.next(cfg.Message).(type) {
	case error:
		return "", v
	case string:
		return v, nil
	default:
		s.t.Fatalf("textarea %q: unexpected response %T", cfg.Message, v)
		return "", nil
	}
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func TestFillValuesNewRecord(t *testing.T) {
	driver := &stubDriver{t: t, responses: []any{
		0,                                   // kind: Event
		"Main hall",                         // venue
		"2024-03-05, 2024-03-03,2024-03-03", // dates
		true,                                // featured
		"9:30 pm",                           // starts
	}}
	filler := New(WithDriver(driver))

	got, err := filler.FillValues(context.Background(), testsupport.EventBox(), nil)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]string{
		"kind":     "event",
		"venue":    "Main hall",
		"dates":    "2024-03-03,2024-03-05",
		"featured": "1",
		"starts":   "21:30",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	wantAsked := []string{"Kind", "Venue", "Dates", "Featured (Show on the home page)", "Starts at"}
	if diff := cmp.Diff(wantAsked, driver.asked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	if driver.selects[0].DefaultIndex != 0 {
		t.Fatalf("expected default option offered, got index %d", driver.selects[0].DefaultIndex)
	}
	if len(driver.infos) != 1 || driver.infos[0] != "  March 3, 2024\n  March 5, 2024" {
		t.Fatalf("unexpected date preview %q", driver.infos)
	}
}

func TestFillSkipsFieldsHiddenByEarlierAnswers(t *testing.T) {
	driver := &stubDriver{t: t, responses: []any{
		1,     // kind: Notice
		"",    // dates
		false, // featured
		"",    // starts
	}}
	filler := New(WithDriver(driver))

	current := map[string]string{"kind": "event", "venue": "Old hall"}
	form, err := filler.Fill(context.Background(), testsupport.EventBox(), current)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	for _, message := range driver.asked {
		if message == "Venue" {
			t.Fatalf("venue should not be asked once kind is notice")
		}
	}
	want := url.Values{
		"kind":     {"notice"},
		"venue":    {"Old hall"},
		"dates":    {""},
		"featured": {""},
		"starts":   {""},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infos) != 0 {
		t.Fatalf("no preview expected for empty dates, got %q", driver.infos)
	}
}

func TestFillOffersSavedValues(t *testing.T) {
	driver := &stubDriver{t: t, responses: []any{
		0, "Old hall", "2024-03-03", false, "21:00",
	}}
	filler := New(WithDriver(driver))

	current := map[string]string{"kind": "event", "venue": "Old hall", "dates": "2024-03-03", "starts": "21:00"}
	if _, err := filler.Fill(context.Background(), testsupport.EventBox(), current); err != nil {
		t.Fatalf("fill: %v", err)
	}
	defaults := []string{}
	for _, cfg := range driver.inputs {
		defaults = append(defaults, cfg.Default)
	}
	if diff := cmp.Diff([]string{"Old hall", "2024-03-03", "21:00"}, defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if driver.infos[0] != "  March 3, 2024 (Sunday)" {
		t.Fatalf("unexpected single date preview %q", driver.infos[0])
	}
}

func TestFillHiddenAndTemplateFields(t *testing.T) {
	box := testsupport.EventBox()
	box.Fields[1].Hidden = true
	box.Fields[4].PageTemplates = []string{"landing.php"}

	driver := &stubDriver{t: t, responses: []any{0, "", false}}
	filler := New(WithDriver(driver), WithPageTemplate("default"))

	got, err := filler.FillValues(context.Background(), box, map[string]string{"venue": "Kept", "starts": "10:00"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got["venue"] != "Kept" {
		t.Fatalf("hidden field should keep its value, got %q", got["venue"])
	}
	if got["starts"] != "" {
		t.Fatalf("field outside the page template should be cleared, got %q", got["starts"])
	}
	if diff := cmp.Diff([]string{"Kind", "Dates", "Featured (Show on the home page)"}, driver.asked); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestFillChoiceLists(t *testing.T) {
	box := model.MetaBox{ID: "tags", Fields: model.Fields{
		{
			Key:     "tags",
			Type:    model.FieldTypeCheckboxMultiple,
			Options: model.Options{{Value: "a", Label: "Alpha"}, {Value: "b", Label: "Beta"}, {Value: "c"}},
		},
		{Key: "notes", Type: model.FieldTypeTextarea, Name: "<em>Notes</em>"},
	}}
	driver := &stubDriver{t: t, responses: []any{[]int{0, 2}, "line one\nline two"}}
	filler := New(WithDriver(driver))

	form, err := filler.Fill(context.Background(), box, map[string]string{"tags": "b"})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, form["tags[]"]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta", "c"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, driver.selects[0].Defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if form.Get("notes") != "line one\nline two" || driver.asked[1] != "Notes" {
		t.Fatalf("unexpected notes %q asked as %q", form.Get("notes"), driver.asked[1])
	}
}

func TestFillStopsOnAbort(t *testing.T) {
	driver := &stubDriver{t: t, responses: []any{ErrAborted}}
	filler := New(WithDriver(driver))

	_, err := filler.Fill(context.Background(), testsupport.EventBox(), nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFillRejectsInvalidInput(t *testing.T) {
	box := model.MetaBox{ID: "x", Fields: model.Fields{{Key: "when", Type: model.FieldTypeDate}}}
	driver := &stubDriver{t: t, responses: []any{"2024-03-03,2024-03-04"}}

	_, err := New(WithDriver(driver)).Fill(context.Background(), box, nil)
	if !errors.Is(err, errSingleDate) {
		t.Fatalf("expected single date error, got %v", err)
	}
}

func TestValidators(t *testing.T) {
	cases := []struct {
		fieldType model.FieldType
		value     string
		valid     bool
	}{
		{model.FieldTypeURL, "example.com/path", true},
		{model.FieldTypeURL, "javascript:alert(1)", false},
		{model.FieldTypeNumber, "12.7", true},
		{model.FieldTypeRange, "twelve", false},
		{model.FieldTypeTime, "noon", true},
		{model.FieldTypeTime, "25:99", false},
		{model.FieldTypeTime, "  ", true},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%s", tc.fieldType, tc.value), func(t *testing.T) {
			err := Validator(tc.fieldType)(tc.value)
			if (err == nil) != tc.valid {
				t.Fatalf("valid=%v, got err %v", tc.valid, err)
			}
		})
	}
	if Validator(model.FieldTypeText) != nil {
		t.Fatalf("text fields take any input")
	}

	check := dateValidator(true)
	if err := check("2024-02-29, 2024-03-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := check("2023-02-29"); !errors.Is(err, errInvalidDate) {
		t.Fatalf("expected invalid date, got %v", err)
	}
}

func TestPreviewUsesLocale(t *testing.T) {
	localizer := datelist.NewLocalizer(datelist.WithLocale("es"))
	if got := Preview(localizer, "2024-03-03,2024-03-10"); got != "  3 de marzo de 2024\n  10 de marzo de 2024" {
		t.Fatalf("unexpected preview %q", got)
	}
	if Preview(localizer, "bogus") != "" {
		t.Fatalf("invalid dates should not preview")
	}
}

func TestIndexHelpers(t *testing.T) {
	options := []string{"a", "b", "c"}
	if indexOf(options, "c") != 2 || indexOf(options, "z") != -1 {
		t.Fatalf("indexOf mismatch")
	}
	if diff := cmp.Diff([]int{0, 2}, indicesOf(options, []string{"c", "a"})); diff != "" {
		t.Fatalf("indicesOf mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, defaultsFromIndices(options, []int{1, 9})); diff != "" {
		t.Fatalf("defaultsFromIndices mismatch (-want +got):\n%s", diff)
	}
}
