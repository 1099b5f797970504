package gotemplate

import (
	"fmt"
	"html"
	"io"
	"io/fs"
	"strings"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-metabox/pkg/render/template"
	"github.com/goliatone/go-metabox/pkg/sanitize"
)

// Option configures the go-template engine before construction.
type Option func(*config)

type config struct {
	templates  fs.FS
	extension  string
	templateFn map[string]any
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the template extension; ".tmpl" by default.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
// Pongo2 filter functions become filters, other functions become globals.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// Engine satisfies the template.TemplateRenderer contract with a
// github.com/goliatone/go-template engine. Output is autoescaped; markup
// built elsewhere must be passed through the safe filter.
type Engine struct {
	*gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine with the meta box filters registered.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: ".tmpl",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	if cfg.templates == nil {
		return nil, fmt.Errorf("gotemplate: templates fs is required")
	}

	funcs := map[string]any{
		"label_html": pongo2.FilterFunction(filterLabelHTML),
		"attrs":      pongo2.FilterFunction(filterAttrs),
	}
	for name, fn := range cfg.templateFn {
		if name == "" || fn == nil {
			continue
		}
		funcs[name] = fn
	}

	engine, err := gotemplatepkg.NewRenderer(
		gotemplatepkg.WithFS(cfg.templates),
		gotemplatepkg.WithExtension(cfg.extension),
		gotemplatepkg.WithTemplateFunc(funcs),
	)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load templates: %w", err)
	}
	return &Engine{Engine: engine}, nil
}

// Render renders a named template, or template content when name carries
// template syntax.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.Engine == nil {
		return "", fmt.Errorf("gotemplate: engine is nil")
	}
	return e.Engine.Render(name, data, out...)
}

// filterLabelHTML keeps the small set of inline tags allowed in labels and
// descriptions and marks the result safe.
func filterLabelHTML(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	cleaned := sanitize.LabelPolicy().Sanitize(strings.TrimSpace(in.String()))
	return pongo2.AsSafeValue(cleaned), nil
}

// filterAttrs renders a list of {name, value} maps as escaped attribute
// pairs with a leading space.
func filterAttrs(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var b strings.Builder
	in.Iterate(func(_, _ int, key, _ *pongo2.Value) bool {
		entry, ok := key.Interface().(map[string]any)
		if !ok {
			return true
		}
		name := strings.TrimSpace(fmt.Sprint(entry["name"]))
		if name == "" || strings.ContainsAny(name, " \t\n\"'<>=/") {
			return true
		}
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(fmt.Sprint(entry["value"])))
		b.WriteByte('"')
		return true
	}, func() {})
	return pongo2.AsSafeValue(b.String()), nil
}
