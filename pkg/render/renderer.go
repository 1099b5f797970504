package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/render/components"
	rendertemplate "github.com/goliatone/go-metabox/pkg/render/template"
	gotemplate "github.com/goliatone/go-metabox/pkg/render/template/gotemplate"
	"github.com/goliatone/go-metabox/pkg/visibility"
)

// afterInputTypes lists the field types that render the after_input suffix.
var afterInputTypes = map[model.FieldType]struct{}{
	model.FieldTypeText:   {},
	model.FieldTypeSelect: {},
	model.FieldTypeNumber: {},
	model.FieldTypeRange:  {},
	model.FieldTypeUpload: {},
	model.FieldTypeURL:    {},
	model.FieldTypeDate:   {},
	model.FieldTypeTime:   {},
}

// Option configures the Renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	evaluator        visibility.Evaluator
	translator       Translator
	onMissing        MissingTranslationHandler
	templateFuncs    map[string]any
	locale           string
	dateFormat       string
	timeFormat       string
}

// WithTemplatesFS supplies an alternate chrome template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads chrome templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default control registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithEvaluator overrides the server side visibility evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(cfg *config) {
		if evaluator != nil {
			cfg.evaluator = evaluator
		}
	}
}

// WithTranslator translates field labels before rendering.
func WithTranslator(translator Translator) Option {
	return func(cfg *config) {
		cfg.translator = translator
	}
}

// WithMissingTranslationHandler customises the text used when a label has no
// translation.
func WithMissingTranslationHandler(handler MissingTranslationHandler) Option {
	return func(cfg *config) {
		cfg.onMissing = handler
	}
}

// WithTemplateFuncs registers extra helpers with the built-in template engine.
func WithTemplateFuncs(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFuncs == nil {
			cfg.templateFuncs = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFuncs[name] = fn
		}
	}
}

// WithLocale sets the locale used when a request does not name one.
func WithLocale(locale string) Option {
	return func(cfg *config) {
		cfg.locale = strings.TrimSpace(locale)
	}
}

// WithDateFormat overrides the display format of date fields.
func WithDateFormat(format string) Option {
	return func(cfg *config) {
		cfg.dateFormat = strings.TrimSpace(format)
	}
}

// WithTimeFormat sets the site time format handed to the client time picker.
// Formats the picker cannot round-trip fall back to "g:i a".
func WithTimeFormat(format string) Option {
	return func(cfg *config) {
		cfg.timeFormat = strings.TrimSpace(format)
	}
}

// Renderer produces the HTML of a meta box: one control per field wrapped in
// the field chrome, inside the box chrome.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	registry   *components.Registry
	evaluator  visibility.Evaluator
	translator Translator
	onMissing  MissingTranslationHandler
	locale     string
	dateFormat string
	timeFormat string
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.evaluator == nil {
		cfg.evaluator = visibility.Default
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		funcs := make(map[string]any, len(cfg.templateFuncs)+2)
		if cfg.translator != nil {
			for name, fn := range TemplateI18nFuncs(cfg.translator, TemplateI18nConfig{OnMissing: cfg.onMissing}) {
				funcs[name] = fn
			}
		}
		for name, fn := range cfg.templateFuncs {
			funcs[name] = fn
		}
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithTemplateFunc(funcs),
		)
		if err != nil {
			return nil, fmt.Errorf("metabox renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		registry:   cfg.registry,
		evaluator:  cfg.evaluator,
		translator: cfg.translator,
		onMissing:  cfg.onMissing,
		locale:     cfg.locale,
		dateFormat: cfg.dateFormat,
		timeFormat: cfg.timeFormat,
	}, nil
}

func (r *Renderer) Name() string {
	return "metabox"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Registry exposes the control registry so callers can add field types.
func (r *Renderer) Registry() *components.Registry {
	return r.registry
}

// Render produces the meta box markup. Fields whose control renders nothing
// (unknown types, selects without options) are left out entirely.
func (r *Renderer) Render(ctx context.Context, box model.MetaBox, opts RenderOptions) ([]byte, error) {
	if err := r.ready(ctx); err != nil {
		return nil, err
	}

	fields := r.localizeFields(box.Fields, r.localeFor(opts))
	themeCtx := buildThemeContext(opts.Theme)
	localizer := r.localizerFor(opts)
	states := visibility.Evaluate(r.evaluator, fields, visibility.Values(opts.Values), opts.PageTemplate)

	rendered := make([]string, 0, len(fields))
	hasVisible := false
	for idx, field := range fields {
		markup, err := r.renderField(field, opts, states[idx].Visible, localizer, themeCtx)
		if err != nil {
			return nil, err
		}
		if markup == "" {
			continue
		}
		rendered = append(rendered, markup)
		if states[idx].Visible {
			hasVisible = true
		}
	}

	payload, err := visibility.Payload(fields)
	if err != nil {
		return nil, fmt.Errorf("metabox renderer: %w", err)
	}
	calendar, err := r.calendarPayload(fields, localizer)
	if err != nil {
		return nil, err
	}

	templateName := themeCtx.partial(PartialBox, boxTemplate)
	result, err := r.templates.RenderTemplate(templateName, map[string]any{
		"id":            box.ID,
		"title":         box.Title,
		"theme":         themeCtx,
		"visibility":    payload,
		"datepicker":    calendar,
		"has_visible":   hasVisible,
		"hidden_fields": SortedHiddenFields(opts.Hidden),
		"fields":        rendered,
	})
	if err != nil {
		return nil, fmt.Errorf("metabox renderer: render template %q: %w", templateName, err)
	}
	return []byte(result), nil
}

// RenderField renders a single field with its chrome. The field's initial
// visibility is evaluated against opts.Values.
func (r *Renderer) RenderField(ctx context.Context, field model.Field, opts RenderOptions) (string, error) {
	if err := r.ready(ctx); err != nil {
		return "", err
	}
	fields := r.localizeFields(model.Fields{field}, r.localeFor(opts))
	states := visibility.Evaluate(r.evaluator, fields, visibility.Values(opts.Values), opts.PageTemplate)
	return r.renderField(fields[0], opts, states[0].Visible, r.localizerFor(opts), buildThemeContext(opts.Theme))
}

// Assets lists the stylesheets and scripts the box's field types depend on,
// deduplicated in field order.
func (r *Renderer) Assets(box model.MetaBox) ([]string, []components.Script) {
	types := make([]model.FieldType, 0, len(box.Fields))
	for _, field := range box.Fields {
		types = append(types, field.Type)
	}
	return r.registry.Assets(types)
}

func (r *Renderer) ready(ctx context.Context) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if r == nil || r.templates == nil {
		return errors.New("metabox renderer: template renderer is nil")
	}
	return nil
}

func (r *Renderer) renderField(field model.Field, opts RenderOptions, visible bool, localizer *datelist.Localizer, themeCtx themeContext) (string, error) {
	control, err := r.renderControl(field, opts, localizer)
	if err != nil {
		return "", err
	}
	if control == "" {
		return "", nil
	}

	payload := map[string]any{
		"key":              field.Key,
		"type":             string(field.Type),
		"field_class":      fieldClass(field),
		"field_attributes": components.SortedAttrs(field.FieldAttributes),
		"visible":          visible,
		"name":             field.Name,
		"after_name":       field.AfterName,
		"desc":             field.Desc,
		"control":          control,
	}
	if _, ok := afterInputTypes[field.Type]; ok {
		payload["after_input"] = field.AfterInput
	}

	templateName := themeCtx.partial(PartialField, fieldTemplate)
	result, err := r.templates.RenderTemplate(templateName, payload)
	if err != nil {
		return "", fmt.Errorf("metabox renderer: render field %q: %w", field.Key, err)
	}
	return result, nil
}

func (r *Renderer) renderControl(field model.Field, opts RenderOptions, localizer *datelist.Localizer) (string, error) {
	value := opts.Values[field.Key]
	data := components.Data(field, value)

	if field.CustomRender != nil {
		return field.CustomRender(model.RenderData{
			Key:       field.Key,
			Field:     field,
			Value:     value,
			ElementID: data.ElementID,
			Name:      data.Name,
			Classes:   data.Classes,
		}), nil
	}

	descriptor, ok := r.registry.Descriptor(field.Type)
	if !ok {
		return "", nil
	}

	data.Localizer = localizer
	data.LocalizeURL = opts.LocalizeURL
	data.LocalizeNonce = opts.LocalizeNonce

	var buf bytes.Buffer
	if err := descriptor.Renderer(&buf, field, data); err != nil {
		return "", fmt.Errorf("metabox renderer: render %q control: %w", field.Key, err)
	}
	return buf.String(), nil
}

func (r *Renderer) localeFor(opts RenderOptions) string {
	if locale := strings.TrimSpace(opts.Locale); locale != "" {
		return locale
	}
	return r.locale
}

func (r *Renderer) localizerFor(opts RenderOptions) *datelist.Localizer {
	return datelist.NewLocalizer(
		datelist.WithLocale(r.localeFor(opts)),
		datelist.WithDateFormat(r.dateFormat),
	)
}

// calendarPayload encodes the client calendar settings for boxes with date or
// time fields, and is empty otherwise.
func (r *Renderer) calendarPayload(fields model.Fields, localizer *datelist.Localizer) (string, error) {
	for _, field := range fields {
		if field.Type != model.FieldTypeDate && field.Type != model.FieldTypeTime {
			continue
		}
		raw, err := json.Marshal(localizer.Locale().Client(r.timeFormat))
		if err != nil {
			return "", fmt.Errorf("metabox renderer: encode calendar settings: %w", err)
		}
		return string(raw), nil
	}
	return "", nil
}

func (r *Renderer) localizeFields(fields model.Fields, locale string) model.Fields {
	out := make(model.Fields, len(fields))
	copy(out, fields)
	if r.translator == nil {
		return out
	}
	for idx := range out {
		LocalizeField(&out[idx], locale, r.translator, r.onMissing)
	}
	return out
}

// fieldClass builds the chrome container classes.
func fieldClass(field model.Field) string {
	classes := []string{"ctmb-field", "ctmb-field-type-" + string(field.Type)}
	if field.Hidden {
		classes = append(classes, "ctmb-hidden")
	}
	if custom := strings.TrimSpace(field.FieldClass); custom != "" {
		classes = append(classes, custom)
	}
	return strings.Join(classes, " ")
}
