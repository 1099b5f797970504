package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-metabox/pkg/model"
)

// Translator resolves a message key for a locale. Field labels double as
// message keys, so a catalogue keyed by the English text is enough.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate delegates to the underlying function.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingTranslationHandler decides the text used when a key has no
// translation.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// ErrMissingTranslator reports that a translation was requested without a
// translator.
var ErrMissingTranslator = errors.New("render: translator not configured")

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if values, ok := arg.(map[string]any); ok {
			if fallback, ok := values["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}

// LocalizeField translates the human readable parts of a field in place:
// labels, help text, button captions and option labels. Without a translator
// the field is left untouched.
func LocalizeField(field *model.Field, locale string, t Translator, onMissing MissingTranslationHandler) {
	if field == nil || t == nil {
		return
	}
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	for _, text := range []*string{
		&field.Name,
		&field.AfterName,
		&field.AfterInput,
		&field.Desc,
		&field.CheckboxLabel,
		&field.UploadButton,
		&field.UploadTitle,
		&field.DateButton,
	} {
		*text = translate(locale, *text, *text, t, onMissing)
	}

	if len(field.Options) > 0 {
		options := make(model.Options, len(field.Options))
		for i, option := range field.Options {
			option.Label = translate(locale, option.Label, option.Label, t, onMissing)
			options[i] = option
		}
		field.Options = options
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return key
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}

	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}
