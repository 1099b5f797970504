package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data the renderer uses without mutating
// the meta box configuration.
type RenderOptions struct {
	// Values holds the value shown for each field key, already resolved
	// against saved data and defaults. Visibility conditions read the same
	// values.
	Values map[string]string
	// PageTemplate is the page template currently selected for the record.
	// Fields limited to page templates start hidden when it does not match.
	PageTemplate string
	// Hidden lists extra hidden inputs emitted inside the box, such as the
	// anti-forgery token.
	Hidden []HiddenField
	// LocalizeURL and LocalizeNonce let date fields refresh their display
	// through the date localization endpoint.
	LocalizeURL   string
	LocalizeNonce string
	// Locale selects translations when a Translator is configured and the
	// calendar vocabulary used by date fields.
	Locale string
	// Theme carries the resolved go-theme selection: partial overrides for
	// the chrome templates, tokens and CSS custom properties.
	Theme *theme.RendererConfig
}
