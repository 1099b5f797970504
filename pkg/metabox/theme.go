package metabox

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

func (b *Box) themeConfig() (*theme.RendererConfig, error) {
	if b.selector == nil {
		return b.theme, nil
	}
	selection, err := b.selector.Select(b.themeName, b.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("metabox: select theme: %w", err)
	}
	return rendererConfig(selection), nil
}

// rendererConfig flattens a selection: variant tokens, templates and asset
// files win over the manifest's, and every token is exposed as a CSS custom
// property.
func rendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}
	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}

	variant := manifest.Variants[selection.Variant]
	cfg.Tokens = mergeStrings(manifest.Tokens, variant.Tokens)
	cfg.Partials = mergeStrings(manifest.Templates, variant.Templates)
	if len(cfg.Tokens) > 0 {
		cfg.CSSVars = make(map[string]string, len(cfg.Tokens))
		for name, value := range cfg.Tokens {
			cfg.CSSVars["--"+name] = value
		}
	}

	files := mergeStrings(manifest.Assets.Files, variant.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func mergeStrings(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range over {
		out[key] = value
	}
	return out
}
