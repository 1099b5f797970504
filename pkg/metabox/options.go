package metabox

import (
	"context"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/nonce"
	"github.com/goliatone/go-metabox/pkg/render"
	"github.com/goliatone/go-metabox/pkg/store"
)

// Authorizer decides whether the caller may edit a record.
type Authorizer interface {
	CanEdit(ctx context.Context, recordID string) bool
}

// AuthorizerFunc adapts a function into an Authorizer.
type AuthorizerFunc func(ctx context.Context, recordID string) bool

// CanEdit delegates to the underlying function.
func (fn AuthorizerFunc) CanEdit(ctx context.Context, recordID string) bool {
	return fn(ctx, recordID)
}

// FieldFilter rewrites a field after overrides and visibility are applied.
type FieldFilter func(model.Field) model.Field

// BoxFilter rewrites the whole definition before preparation.
type BoxFilter func(model.MetaBox) model.MetaBox

// Option customises a Box.
type Option func(*config)

type config struct {
	store        store.Store
	renderer     *render.Renderer
	nonces       *nonce.Manager
	authorizer   Authorizer
	logger       *zap.Logger
	visible      []string
	visibleSet   bool
	overrides    map[string]map[string]any
	fieldFilters map[string][]FieldFilter
	boxFilters   []BoxFilter
	localizeURL  string
	theme        *theme.RendererConfig
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

// WithStore selects where values are persisted. Defaults to an in-memory
// store.
func WithStore(s store.Store) Option {
	return func(cfg *config) {
		if s != nil {
			cfg.store = s
		}
	}
}

// WithRenderer injects a configured renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.renderer = r
		}
	}
}

// WithNonces enables anti-forgery tokens. Save refuses every submission
// without a token manager.
func WithNonces(m *nonce.Manager) Option {
	return func(cfg *config) {
		cfg.nonces = m
	}
}

// WithAuthorizer installs the edit permission check run on save.
func WithAuthorizer(a Authorizer) Option {
	return func(cfg *config) {
		cfg.authorizer = a
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithVisibleFields lists the keys that are shown. Fields left out are still
// rendered but flagged hidden and never displayed.
func WithVisibleFields(keys ...string) Option {
	return func(cfg *config) {
		cfg.visible = append([]string(nil), keys...)
		cfg.visibleSet = true
	}
}

// WithFieldOverrides merges attribute maps over field definitions, keyed by
// field key. Attribute names follow the JSON/YAML configuration names.
func WithFieldOverrides(overrides map[string]map[string]any) Option {
	return func(cfg *config) {
		if len(overrides) == 0 {
			return
		}
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]map[string]any, len(overrides))
		}
		for key, attrs := range overrides {
			cfg.overrides[key] = attrs
		}
	}
}

// WithFieldFilter registers a rewrite for one field, run last during
// preparation.
func WithFieldFilter(key string, filter FieldFilter) Option {
	return func(cfg *config) {
		if filter == nil {
			return
		}
		if cfg.fieldFilters == nil {
			cfg.fieldFilters = make(map[string][]FieldFilter)
		}
		cfg.fieldFilters[key] = append(cfg.fieldFilters[key], filter)
	}
}

// WithBoxFilter registers a rewrite of the whole definition, run first.
func WithBoxFilter(filter BoxFilter) Option {
	return func(cfg *config) {
		if filter != nil {
			cfg.boxFilters = append(cfg.boxFilters, filter)
		}
	}
}

// WithLocalizeURL points date fields at the date localization endpoint.
func WithLocalizeURL(url string) Option {
	return func(cfg *config) {
		cfg.localizeURL = strings.TrimSpace(url)
	}
}

// WithTheme applies a resolved theme configuration to every render.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithThemeSelector resolves the theme through a go-theme selector on each
// render. Empty name and variant select the provider defaults.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = name
		cfg.themeVariant = variant
	}
}
