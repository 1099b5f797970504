package visibility

import (
	"embed"
	"io/fs"
)

//go:embed assets/*
var embeddedAssets embed.FS

const (
	ScriptName     = "metabox.js"
	StylesheetName = "metabox.css"
)

// AssetsFS exposes the client runtime (script and stylesheet) so callers can
// serve it over HTTP or copy it into their own asset pipeline.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// Script returns the embedded client runtime source.
func Script() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+ScriptName)
	if err != nil {
		return ""
	}
	return string(data)
}
