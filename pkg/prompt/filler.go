package prompt

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/sanitize"
	"github.com/goliatone/go-metabox/pkg/visibility"
	"go.uber.org/zap"
)

// Filler asks for meta box values one field at a time.
type Filler struct {
	driver         PromptDriver
	locale         string
	dateFormat     string
	pageTemplate   string
	hasTemplate    bool
	unfilteredHTML bool
	logger         *zap.Logger
}

// New builds a Filler. Without WithDriver it prompts on the terminal.
func New(opts ...Option) *Filler {
	f := &Filler{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f
}

// Fill prompts for every applicable field of box and returns the form a
// browser would post. current holds the saved values; a nil map marks a new
// record so defaults are offered for every field. Fields that are hidden,
// excluded by the page template or not visible given earlier answers are not
// asked and keep their current value.
func (f *Filler) Fill(ctx context.Context, box model.MetaBox, current map[string]string) (url.Values, error) {
	firstAdd := current == nil
	localizer := datelist.NewLocalizer(datelist.WithLocale(f.locale), datelist.WithDateFormat(f.dateFormat))

	answers := make(visibility.Values, len(box.Fields))
	for _, field := range box.Fields {
		answers[field.Key] = model.ResolveValue(field, current[field.Key], firstAdd)
	}

	form := url.Values{}
	for _, field := range box.Fields {
		value := answers[field.Key]

		if f.hasTemplate && !field.AllowsTemplate(f.pageTemplate) {
			f.logger.Debug("prompt: field not used by page template", zap.String("field", field.Key))
			continue
		}
		if field.Hidden || !visibility.Visible(field, answers) {
			f.logger.Debug("prompt: keeping current value", zap.String("field", field.Key))
			post(form, field, value)
			continue
		}

		answer, err := f.ask(ctx, field, value, localizer)
		if err != nil {
			return nil, fmt.Errorf("prompt: field %q: %w", field.Key, err)
		}
		answers[field.Key] = answer
		post(form, field, answer)
	}
	return form, nil
}

// FillValues runs Fill and sanitizes the result for storage.
func (f *Filler) FillValues(ctx context.Context, box model.MetaBox, current map[string]string) (map[string]string, error) {
	form, err := f.Fill(ctx, box, current)
	if err != nil {
		return nil, err
	}
	opts := []sanitize.Option{
		sanitize.WithUnfilteredHTML(f.unfilteredHTML),
		sanitize.WithLogger(f.logger),
	}
	if f.hasTemplate {
		opts = append(opts, sanitize.WithPageTemplate(f.pageTemplate))
	}
	return sanitize.New(opts...).Values(box, form), nil
}

func (f *Filler) ask(ctx context.Context, field model.Field, value string, localizer *datelist.Localizer) (string, error) {
	message := label(field)
	help := sanitize.StripTags(field.Desc)

	switch field.Type {
	case model.FieldTypeCheckbox:
		if text := sanitize.StripTags(field.CheckboxLabel); text != "" {
			message = message + " (" + text + ")"
		}
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: value == "1", Help: help})
		if err != nil || !ok {
			return "", err
		}
		return "1", nil

	case model.FieldTypeRadio, model.FieldTypeSelect:
		if len(field.Options) == 0 {
			return value, nil
		}
		idx, err := f.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      optionLabels(field.Options),
			DefaultIndex: optionIndex(field.Options, value),
			Help:         help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx].Value, nil

	case model.FieldTypeCheckboxMultiple:
		if len(field.Options) == 0 {
			return value, nil
		}
		var defaults []int
		for _, part := range strings.Split(value, ",") {
			if idx := optionIndex(field.Options, strings.TrimSpace(part)); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		picked, err := f.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  optionLabels(field.Options),
			Defaults: defaults,
			Help:     help,
		})
		if err != nil {
			return "", err
		}
		values := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(field.Options) {
				values = append(values, field.Options[idx].Value)
			}
		}
		return strings.Join(values, ","), nil

	case model.FieldTypeTextarea, model.FieldTypeUploadTextarea:
		return f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: value, Help: help})

	case model.FieldTypeDate:
		answer, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   value,
			Help:      help,
			Validator: dateValidator(field.DateMultiple),
		})
		if err != nil {
			return "", err
		}
		answer = datelist.Parse(answer).String()
		if preview := Preview(localizer, answer); preview != "" {
			if err := f.driver.Info(ctx, preview); err != nil {
				return "", err
			}
		}
		return answer, nil

	default:
		return f.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   value,
			Help:      help,
			Validator: Validator(field.Type),
		})
	}
}

// Preview renders a stored date list as plain text in the localizer's
// format, one date per line.
func Preview(localizer *datelist.Localizer, raw string) string {
	list := datelist.Parse(raw)
	if list.Len() == 0 {
		return ""
	}
	lines := make([]string, 0, list.Len())
	for _, date := range list.Dates() {
		text := localizer.Format(date)
		if list.Len() == 1 {
			text += " (" + localizer.Weekday(date) + ")"
		}
		lines = append(lines, "  "+text)
	}
	return strings.Join(lines, "\n")
}

var (
	errInvalidURL    = errors.New("enter a valid URL")
	errInvalidNumber = errors.New("enter a whole number")
	errInvalidTime   = errors.New("enter a time such as 9:30 or 9:30 pm")
	errInvalidDate   = errors.New("enter dates as YYYY-MM-DD")
	errSingleDate    = errors.New("only one date is allowed")
)

// Validator returns the input check for scalar field types. Empty input is
// always accepted.
func Validator(fieldType model.FieldType) func(string) error {
	var check func(string) bool
	var failure error
	switch fieldType {
	case model.FieldTypeURL, model.FieldTypeUpload:
		check = func(v string) bool { _, ok := sanitize.URL(v); return ok }
		failure = errInvalidURL
	case model.FieldTypeNumber, model.FieldTypeRange:
		check = func(v string) bool { _, ok := sanitize.Integer(v); return ok }
		failure = errInvalidNumber
	case model.FieldTypeTime:
		check = func(v string) bool { _, ok := sanitize.Time(v); return ok }
		failure = errInvalidTime
	default:
		return nil
	}
	return func(value string) error {
		if strings.TrimSpace(value) == "" || check(value) {
			return nil
		}
		return failure
	}
}

func dateValidator(multiple bool) func(string) error {
	return func(value string) error {
		var count int
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !datelist.Valid(part) {
				return errInvalidDate
			}
			count++
		}
		if !multiple && count > 1 {
			return errSingleDate
		}
		return nil
	}
}

func post(form url.Values, field model.Field, value string) {
	if field.Type != model.FieldTypeCheckboxMultiple {
		form.Set(field.Key, value)
		return
	}
	name := field.Key + "[]"
	form.Del(name)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			form.Add(name, part)
		}
	}
}

func label(field model.Field) string {
	if name := sanitize.StripTags(field.Name); name != "" {
		return name
	}
	return field.Key
}

func optionLabels(options model.Options) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		if option.Label == "" {
			out = append(out, option.Value)
			continue
		}
		out = append(out, option.Label)
	}
	return out
}

func optionIndex(options model.Options, value string) int {
	for i, option := range options {
		if option.Value == value {
			return i
		}
	}
	return -1
}
