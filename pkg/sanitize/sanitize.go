// Package sanitize validates and normalises posted meta box values per field
// type before they are persisted.
package sanitize

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
	"go.uber.org/zap"
)

// Sanitizer cleans posted values. It is safe for concurrent use once built.
type Sanitizer struct {
	unfilteredHTML bool
	pageTemplate   string
	hasTemplate    bool
	logger         *zap.Logger
}

// Option customises a Sanitizer.
type Option func(*Sanitizer)

// WithUnfilteredHTML marks the submitter as trusted to post raw HTML into
// fields that allow it. Untrusted submitters get the user content policy.
func WithUnfilteredHTML(allowed bool) Option {
	return func(s *Sanitizer) {
		s.unfilteredHTML = allowed
	}
}

// WithPageTemplate records the page template posted alongside the form.
// Fields restricted to page templates lose their value when it does not match.
func WithPageTemplate(name string) Option {
	return func(s *Sanitizer) {
		s.pageTemplate = name
		s.hasTemplate = true
	}
}

// WithLogger attaches a logger used for fallback diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sanitizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Sanitizer.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Values sanitizes every declared field of box from the posted form and then
// applies the box level callback. Keys that were not posted still receive a
// value (empty or default).
func (s *Sanitizer) Values(box model.MetaBox, form url.Values) map[string]string {
	out := make(map[string]string, len(box.Fields))
	for _, field := range box.Fields {
		out[field.Key] = s.Field(field, Lookup(form, field.Key))
	}
	if box.CustomSanitize != nil {
		if replaced := box.CustomSanitize(out); replaced != nil {
			out = replaced
		}
	}
	return out
}

// Lookup returns the posted values for key, including the bracketed list
// form used by multi-value controls.
func Lookup(form url.Values, key string) []string {
	if form == nil {
		return nil
	}
	values := append([]string(nil), form[key]...)
	return append(values, form[key+"[]"]...)
}

// Field sanitizes the posted values for a single field.
//
// Invalid non-empty input falls back to the configured default (which may be
// empty). An empty result falls back to the default only when the field
// disallows empty values.
func (s *Sanitizer) Field(field model.Field, posted []string) string {
	raw := scalar(posted)

	if s.blockedByTemplate(field, posted) {
		posted = nil
		raw = ""
	}

	value, ok := s.byType(field, raw, posted)
	if field.CustomSanitize != nil {
		value = field.CustomSanitize(value)
	}
	value = strings.TrimSpace(value)

	if !ok {
		s.logger.Debug("sanitize: invalid value, using default",
			zap.String("field", field.Key),
			zap.String("type", string(field.Type)),
		)
		return field.Default
	}
	if model.IsEmptyValue(value) {
		if field.NoEmpty && !model.IsEmptyValue(field.Default) {
			return field.Default
		}
		return ""
	}
	return value
}

func (s *Sanitizer) blockedByTemplate(field model.Field, posted []string) bool {
	if len(field.PageTemplates) == 0 || !hasContent(posted) {
		return false
	}
	if !s.hasTemplate {
		return true
	}
	return !field.AllowsTemplate(s.pageTemplate)
}

// byType applies the per-type rule. The boolean is false when non-empty input
// could not be turned into a valid value.
func (s *Sanitizer) byType(field model.Field, raw string, posted []string) (string, bool) {
	trimmed := strings.TrimSpace(raw)

	switch field.Type {
	case model.FieldTypeText, model.FieldTypeTextarea:
		return s.text(field, raw), true

	case model.FieldTypeCheckbox:
		if checked(posted) {
			return "1", true
		}
		return "", true

	case model.FieldTypeCheckboxMultiple:
		return checkboxMultiple(field.Options, posted)

	case model.FieldTypeRadio, model.FieldTypeSelect:
		if trimmed == "" {
			return "", true
		}
		if field.Options.Has(trimmed) {
			return trimmed, true
		}
		return "", false

	case model.FieldTypeNumber, model.FieldTypeRange:
		if trimmed == "" {
			return "", true
		}
		n, ok := Integer(trimmed)
		if !ok {
			return "", false
		}
		return strconv.Itoa(n), true

	case model.FieldTypeURL, model.FieldTypeUpload:
		if trimmed == "" {
			return "", true
		}
		normalized, ok := URL(trimmed)
		return normalized, ok

	case model.FieldTypeUploadTextarea:
		if hasHTTPScheme(trimmed) {
			normalized, ok := URL(trimmed)
			return normalized, ok
		}
		return raw, true

	case model.FieldTypeDate:
		if trimmed == "" {
			return "", true
		}
		list := datelist.Parse(trimmed)
		if list.Len() == 0 {
			return "", false
		}
		return list.String(), true

	case model.FieldTypeTime:
		if trimmed == "" {
			return "", true
		}
		clock, ok := Time(trimmed)
		return clock, ok

	default:
		return "", trimmed == ""
	}
}

func (s *Sanitizer) text(field model.Field, raw string) string {
	if !field.AllowHTML {
		return PlainText(raw)
	}
	if s.unfilteredHTML {
		return raw
	}
	return contentPolicy().Sanitize(raw)
}

// PlainText strips every tag from value and decodes entities. Decoding may
// surface markup that was posted entity-encoded, so stripping repeats until
// the text is stable; a value that never settles loses its angle brackets.
func PlainText(value string) string {
	text := strings.TrimSpace(value)
	for range maxStripPasses {
		next := strings.TrimSpace(html.UnescapeString(stripPolicy().Sanitize(text)))
		if next == text {
			return text
		}
		text = next
	}
	return strings.NewReplacer("<", "", ">", "").Replace(text)
}

const maxStripPasses = 8

// Integer coerces a posted number to an int. Decimal input is truncated toward
// zero; anything else is rejected.
func Integer(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != f || f > 1<<53 || f < -(1<<53) {
		return 0, false
	}
	return int(f), true
}

func checkboxMultiple(options model.Options, posted []string) (string, bool) {
	selected := make(map[string]struct{}, len(posted))
	for _, value := range posted {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				selected[part] = struct{}{}
			}
		}
	}
	if len(selected) == 0 {
		return "", true
	}

	kept := make([]string, 0, len(selected))
	for _, option := range options {
		if _, ok := selected[option.Value]; ok {
			kept = append(kept, option.Value)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ","), true
}

// scalar picks the effective value of a single-value control. Repeated keys
// resolve to the last one posted, matching how browsers submit a hidden
// fallback input followed by the real control.
func scalar(posted []string) string {
	if len(posted) == 0 {
		return ""
	}
	return posted[len(posted)-1]
}

func checked(posted []string) bool {
	for _, value := range posted {
		switch strings.TrimSpace(value) {
		case "", "0":
		default:
			return true
		}
	}
	return false
}

func hasContent(posted []string) bool {
	for _, value := range posted {
		if !model.IsEmptyValue(value) {
			return true
		}
	}
	return false
}
