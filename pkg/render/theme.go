package render

import (
	"regexp"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// themeContext is the template-facing view of a theme selection.
type themeContext struct {
	Name         string            `json:"name,omitempty"`
	Variant      string            `json:"variant,omitempty"`
	Tokens       map[string]string `json:"tokens,omitempty"`
	CSSVarsStyle string            `json:"css_vars_style,omitempty"`

	partials map[string]string
}

var (
	cssVarNamePattern = regexp.MustCompile(`^--[A-Za-z0-9_-]+$`)
	themeNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

func buildThemeContext(cfg *theme.RendererConfig) themeContext {
	if cfg == nil {
		return themeContext{}
	}
	ctx := themeContext{
		Tokens:   copyStringMap(cfg.Tokens),
		partials: copyStringMap(cfg.Partials),
	}
	if themeNamePattern.MatchString(cfg.Theme) {
		ctx.Name = cfg.Theme
	}
	if themeNamePattern.MatchString(cfg.Variant) {
		ctx.Variant = cfg.Variant
	}
	ctx.CSSVarsStyle = cssVarsStyle(cfg.CSSVars)
	return ctx
}

// partial returns the template registered for key, or fallback.
func (t themeContext) partial(key, fallback string) string {
	if candidate := strings.TrimSpace(t.partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

// cssVarsStyle scopes custom properties to the meta box wrapper. Names that
// are not custom property identifiers and values that could close the rule
// are skipped.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if !cssVarNamePattern.MatchString(key) {
			continue
		}
		if strings.ContainsAny(vars[key], "{};<>\\") {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(".ctmb-meta-box {\n")
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(strings.TrimSpace(vars[key]))
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// AssetURL resolves a bundled asset name through the theme when it provides
// a resolver, falling back to prefix + name.
func AssetURL(cfg *theme.RendererConfig, prefix, name string) string {
	if cfg != nil && cfg.AssetURL != nil {
		if resolved := strings.TrimSpace(cfg.AssetURL(name)); resolved != "" {
			return resolved
		}
	}
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + strings.TrimLeft(name, "/")
}
