// Package metabox ties a meta box definition to storage, rendering and the
// save pipeline: prepare once, then Render and Save per request.
package metabox

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-metabox/components/datelocalizer"
	"github.com/goliatone/go-metabox/pkg/model"
	"github.com/goliatone/go-metabox/pkg/nonce"
	"github.com/goliatone/go-metabox/pkg/render"
	"github.com/goliatone/go-metabox/pkg/render/components"
	"github.com/goliatone/go-metabox/pkg/sanitize"
	"github.com/goliatone/go-metabox/pkg/store"
	"github.com/goliatone/go-metabox/pkg/visibility"
)

// PageTemplateInput is the form input carrying the selected page template.
const PageTemplateInput = "page_template"

var (
	// ErrAutosave aborts saves triggered by background autosave requests,
	// which do not carry meta values.
	ErrAutosave = errors.New("metabox: autosave skipped")
	// ErrEmptySubmission aborts saves without any posted data.
	ErrEmptySubmission = errors.New("metabox: empty submission")
	// ErrInvalidNonce aborts saves with a missing or invalid token.
	ErrInvalidNonce = errors.New("metabox: invalid nonce")
	// ErrForbidden aborts saves the authorizer rejects.
	ErrForbidden = errors.New("metabox: permission denied")
)

// RenderRequest carries the per-request inputs of Render.
type RenderRequest struct {
	// FirstAdd marks a record that is being created, so every default shows.
	FirstAdd bool
	// PageTemplate is the record's current page template.
	PageTemplate string
	// Locale selects translations and date vocabulary.
	Locale string
}

// SaveRequest carries one form submission.
type SaveRequest struct {
	Form url.Values
	// Autosave is set for background saves; they never write meta values.
	Autosave bool
	// UnfilteredHTML marks the submitter as trusted to post raw HTML.
	UnfilteredHTML bool
}

// Box is a prepared meta box. It is safe for concurrent use.
type Box struct {
	def          model.MetaBox
	store        store.Store
	renderer     *render.Renderer
	nonces       *nonce.Manager
	authorizer   Authorizer
	logger       *zap.Logger
	localizeURL  string
	theme        *theme.RendererConfig
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
}

// New prepares def: box filters run first, then per-field overrides, the
// visible-field list and field filters. Keys must be unique and non-empty.
func New(def model.MetaBox, opts ...Option) (*Box, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	for _, filter := range cfg.boxFilters {
		def = filter(def)
	}
	if strings.TrimSpace(def.ID) == "" {
		return nil, errors.New("metabox: id is required")
	}

	visible := make(map[string]struct{}, len(cfg.visible))
	for _, key := range cfg.visible {
		visible[key] = struct{}{}
	}

	seen := make(map[string]struct{}, len(def.Fields))
	fields := make(model.Fields, 0, len(def.Fields))
	for _, field := range def.Fields {
		if strings.TrimSpace(field.Key) == "" {
			return nil, fmt.Errorf("metabox: %s: field key is required", def.ID)
		}
		if _, dup := seen[field.Key]; dup {
			return nil, fmt.Errorf("metabox: %s: duplicate field key %q", def.ID, field.Key)
		}
		seen[field.Key] = struct{}{}

		if attrs, ok := cfg.overrides[field.Key]; ok && len(attrs) > 0 {
			merged, err := field.Merge(attrs)
			if err != nil {
				return nil, fmt.Errorf("metabox: %s: override %q: %w", def.ID, field.Key, err)
			}
			field = merged
		}
		if cfg.visibleSet {
			_, shown := visible[field.Key]
			field.Hidden = !shown
		}
		for _, filter := range cfg.fieldFilters[field.Key] {
			field = filter(field)
		}
		fields = append(fields, field)
	}
	def.Fields = fields

	if cfg.store == nil {
		cfg.store = store.NewMemory()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.renderer == nil {
		renderer, err := render.New()
		if err != nil {
			return nil, fmt.Errorf("metabox: %w", err)
		}
		cfg.renderer = renderer
	}

	return &Box{
		def:          def,
		store:        cfg.store,
		renderer:     cfg.renderer,
		nonces:       cfg.nonces,
		authorizer:   cfg.authorizer,
		logger:       cfg.logger.With(zap.String("meta_box", def.ID)),
		localizeURL:  cfg.localizeURL,
		theme:        cfg.theme,
		selector:     cfg.selector,
		themeName:    cfg.themeName,
		themeVariant: cfg.themeVariant,
	}, nil
}

// ID returns the meta box id.
func (b *Box) ID() string { return b.def.ID }

// Definition returns the prepared definition.
func (b *Box) Definition() model.MetaBox {
	def := b.def
	def.Fields = append(model.Fields(nil), b.def.Fields...)
	return def
}

// NonceName is the form input that carries the anti-forgery token.
func (b *Box) NonceName() string { return b.def.ID + "_nonce" }

// NonceAction scopes the token to saving this box.
func (b *Box) NonceAction() string { return b.def.ID + "_save" }

// HasVisibleFields reports whether any field is shown. A box without visible
// fields is rendered hidden.
func (b *Box) HasVisibleFields() bool {
	for _, field := range b.def.Fields {
		if !field.Hidden {
			return true
		}
	}
	return false
}

// CanEdit reports whether the configured authorizer lets the caller edit
// recordID. Boxes without an authorizer allow everyone.
func (b *Box) CanEdit(ctx context.Context, recordID string) bool {
	if b.authorizer == nil {
		return true
	}
	return b.authorizer.CanEdit(ctx, recordID)
}

// HasDateField reports whether the date widget assets are needed.
func (b *Box) HasDateField() bool {
	return b.def.HasDateField()
}

// VisibilityPayload returns the JSON rules read by the client script.
func (b *Box) VisibilityPayload() (string, error) {
	return visibility.Payload(b.def.Fields)
}

// Assets lists the stylesheets and scripts the box needs.
func (b *Box) Assets() ([]string, []components.Script) {
	return b.renderer.Assets(b.def)
}

// Values loads the record's saved values and resolves defaults for display.
func (b *Box) Values(ctx context.Context, recordID string, firstAdd bool) (map[string]string, error) {
	saved, err := b.store.GetAll(ctx, recordID, b.def.Fields.Keys())
	if err != nil {
		return nil, fmt.Errorf("metabox: load values: %w", err)
	}
	out := make(map[string]string, len(b.def.Fields))
	for _, field := range b.def.Fields {
		out[field.Key] = model.ResolveValue(field, saved[field.Key], firstAdd)
	}
	return out, nil
}

// Render produces the edit markup for a record.
func (b *Box) Render(ctx context.Context, recordID string, req RenderRequest) ([]byte, error) {
	values, err := b.Values(ctx, recordID, req.FirstAdd)
	if err != nil {
		return nil, err
	}
	themeCfg, err := b.themeConfig()
	if err != nil {
		return nil, err
	}

	opts := render.RenderOptions{
		Values:       values,
		PageTemplate: req.PageTemplate,
		Locale:       req.Locale,
		Theme:        themeCfg,
		LocalizeURL:  b.localizeURL,
	}
	if b.nonces != nil {
		token, err := b.nonces.Issue(b.NonceAction(), recordID)
		if err != nil {
			return nil, fmt.Errorf("metabox: issue nonce: %w", err)
		}
		opts.Hidden = append(opts.Hidden, render.NonceField(b.NonceName(), token))
		if b.localizeURL != "" && b.HasDateField() {
			localizeToken, err := b.nonces.Issue(LocalizeAction, "")
			if err != nil {
				return nil, fmt.Errorf("metabox: issue localize nonce: %w", err)
			}
			opts.LocalizeNonce = localizeToken
		}
	}

	output, err := b.renderer.Render(ctx, b.def, opts)
	if err != nil {
		return nil, fmt.Errorf("metabox: %w", err)
	}
	return output, nil
}

// LocalizeAction scopes tokens accepted by the date localization endpoint.
const LocalizeAction = datelocalizer.DefaultAction

// Save validates the submission and writes every declared field in one
// batch. Security failures return a sentinel error and write nothing.
func (b *Box) Save(ctx context.Context, recordID string, req SaveRequest) (map[string]string, error) {
	if err := b.authorize(ctx, recordID, req); err != nil {
		b.logger.Debug("save aborted", zap.String("record", recordID), zap.Error(err))
		return nil, err
	}

	opts := []sanitize.Option{
		sanitize.WithUnfilteredHTML(req.UnfilteredHTML),
		sanitize.WithLogger(b.logger),
	}
	if _, ok := req.Form[PageTemplateInput]; ok {
		opts = append(opts, sanitize.WithPageTemplate(req.Form.Get(PageTemplateInput)))
	}
	values := sanitize.New(opts...).Values(b.def, req.Form)

	if err := b.store.SetMany(ctx, recordID, values); err != nil {
		b.logger.Error("save failed", zap.String("record", recordID), zap.Error(err))
		return nil, fmt.Errorf("metabox: save: %w", err)
	}
	b.logger.Debug("saved", zap.String("record", recordID), zap.Int("fields", len(values)))
	return values, nil
}

func (b *Box) authorize(ctx context.Context, recordID string, req SaveRequest) error {
	if len(req.Form) == 0 {
		return ErrEmptySubmission
	}
	if req.Autosave {
		return ErrAutosave
	}
	if b.nonces == nil {
		return fmt.Errorf("%w: no token manager configured", ErrInvalidNonce)
	}
	if err := b.nonces.Verify(req.Form.Get(b.NonceName()), b.NonceAction(), recordID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNonce, err)
	}
	if !b.CanEdit(ctx, recordID) {
		return ErrForbidden
	}
	return nil
}
