package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-metabox/pkg/model"
)

// EventBox returns the meta box used across package tests: a select that
// controls a conditional text field, a date list, a checkbox and a time.
func EventBox() model.MetaBox {
	return model.MetaBox{
		ID:       "event",
		Title:    "Event details",
		PostType: "page",
		Fields: model.Fields{
			{
				Key:     "kind",
				Type:    model.FieldTypeSelect,
				Name:    "Kind",
				Default: "event",
				NoEmpty: true,
				Options: model.Options{
					{Value: "event", Label: "Event"},
					{Value: "notice", Label: "Notice"},
				},
			},
			{
				Key:        "venue",
				Type:       model.FieldTypeText,
				Name:       "Venue",
				Visibility: model.Conditions{{Field: "kind", Value: "event"}},
			},
			{
				Key:          "dates",
				Type:         model.FieldTypeDate,
				Name:         "Dates",
				DateButton:   "Add date",
				DateMultiple: true,
			},
			{
				Key:           "featured",
				Type:          model.FieldTypeCheckbox,
				Name:          "Featured",
				CheckboxLabel: "Show on the <strong>home page</strong>",
			},
			{
				Key:  "starts",
				Type: model.FieldTypeTime,
				Name: "Starts at",
			},
		},
	}
}

// Form builds a url.Values from alternating key/value pairs.
func Form(pairs ...string) url.Values {
	form := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		form.Add(pairs[i], pairs[i+1])
	}
	return form
}

// MustLoadMetaBox loads a JSON fixture into a MetaBox.
func MustLoadMetaBox(t *testing.T, path string) model.MetaBox {
	t.Helper()

	box, err := LoadMetaBox(path)
	if err != nil {
		t.Fatalf("load meta box: %v", err)
	}
	return box
}

// LoadMetaBox reads a JSON fixture into a MetaBox, returning an error for
// callers managing setup outside of *testing.T.
func LoadMetaBox(path string) (model.MetaBox, error) {
	if path == "" {
		return model.MetaBox{}, errors.New("testsupport: meta box path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.MetaBox{}, fmt.Errorf("testsupport: read meta box: %w", err)
	}
	var out model.MetaBox
	if err := json.Unmarshal(data, &out); err != nil {
		return model.MetaBox{}, fmt.Errorf("testsupport: unmarshal meta box: %w", err)
	}
	return out, nil
}

// FixturePath resolves a file under this package's testdata directory.
func FixturePath(name string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("testdata", name)
	}
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
