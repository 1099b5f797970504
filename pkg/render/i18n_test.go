package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/render"
	"github.com/google/go-cmp/cmp"
)

type stubTranslator map[string]string

func (t stubTranslator) Translate(_ string, key string, _ ...any) (string, error) {
	if msg, ok := t[key]; ok {
		return msg, nil
	}
	return "", errors.New("missing translation")
}

func TestLocalizeField_TranslatesLabelsAndFallsBack(t *testing.T) {
	field := model.Field{
		Key:        "size",
		Type:       model.FieldTypeSelect,
		Name:       "Size",
		Desc:       "Pick one",
		AfterInput: "cm",
		Options: model.Options{
			{Value: "s", Label: "Small"},
			{Value: "l", Label: "Large"},
		},
	}
	original := field.Options

	render.LocalizeField(&field, "es", stubTranslator{
		"Size":  "Tamaño",
		"Small": "Pequeño",
	}, nil)

	if field.Name != "Tamaño" {
		t.Fatalf("expected translated name, got %q", field.Name)
	}
	if field.Desc != "Pick one" || field.AfterInput != "cm" {
		t.Fatalf("expected untranslated text to fall back, got %q / %q", field.Desc, field.AfterInput)
	}
	want := model.Options{{Value: "s", Label: "Pequeño"}, {Value: "l", Label: "Large"}}
	if diff := cmp.Diff(want, field.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if original[0].Label != "Small" {
		t.Fatalf("localization must not mutate the shared option slice")
	}
}

func TestLocalizeField_CustomMissingHandler(t *testing.T) {
	field := model.Field{Key: "title", Type: model.FieldTypeText, Name: "Title"}

	render.LocalizeField(&field, "fr", stubTranslator{}, func(locale, key string, _ []any, err error) string {
		if err == nil {
			t.Fatalf("expected translator error to be forwarded")
		}
		return "[" + locale + ":" + key + "]"
	})

	if field.Name != "[fr:Title]" {
		t.Fatalf("unexpected missing handler output %q", field.Name)
	}
	if field.Desc != "" {
		t.Fatalf("empty text must stay empty, got %q", field.Desc)
	}
}

func TestLocalizeField_NoTranslator(t *testing.T) {
	field := model.Field{Key: "title", Name: "Title"}
	render.LocalizeField(&field, "es", nil, nil)
	if field.Name != "Title" {
		t.Fatalf("field should be untouched, got %q", field.Name)
	}
}

func TestTemplateI18nFuncs(t *testing.T) {
	funcs := render.TemplateI18nFuncs(stubTranslator{"Save": "Guardar"}, render.TemplateI18nConfig{})

	translate, ok := funcs["translate"].(func(any, string, ...any) string)
	if !ok {
		t.Fatalf("translate helper has unexpected type %T", funcs["translate"])
	}
	if got := translate(map[string]any{"locale": "es"}, "Save"); got != "Guardar" {
		t.Fatalf("expected translation, got %q", got)
	}
	if got := translate("es", "Cancel"); got != "Cancel" {
		t.Fatalf("expected key fallback, got %q", got)
	}

	current, ok := funcs["current_locale"].(func(any) string)
	if !ok {
		t.Fatalf("current_locale helper has unexpected type %T", funcs["current_locale"])
	}
	if got := current(struct{ Locale string }{Locale: "de"}); got != "" {
		t.Fatalf("struct lookup is case sensitive, got %q", got)
	}
	if got := current(map[string]string{"locale": "pt"}); got != "pt" {
		t.Fatalf("expected locale from map, got %q", got)
	}
}
