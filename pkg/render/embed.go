package render

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const (
	// PartialField names the theme partial that replaces the field chrome.
	PartialField = "metabox.field"
	// PartialBox names the theme partial that replaces the meta box wrapper.
	PartialBox = "metabox.box"

	fieldTemplate = "field"
	boxTemplate   = "metabox"
)

// TemplatesFS exposes the embedded chrome templates so callers can copy and
// customise them.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}
