// Package metabox is the top-level entry point: it re-exports the common
// types and wraps the prepare, load and import steps for callers that do not
// need the individual packages.
package metabox

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-metabox/pkg/config"
	pkgmetabox "github.com/goliatone/go-metabox/pkg/metabox"
	"github.com/goliatone/go-metabox/pkg/model"
	pkgopenapi "github.com/goliatone/go-metabox/pkg/openapi"
	"github.com/goliatone/go-metabox/pkg/store"
)

// MetaBox is the configuration of one admin panel and its fields.
type MetaBox = model.MetaBox

// Field describes one form field.
type Field = model.Field

// Box is a prepared meta box.
type Box = pkgmetabox.Box

// Option configures Box preparation.
type Option = pkgmetabox.Option

// RenderRequest carries the per-request inputs of Box.Render.
type RenderRequest = pkgmetabox.RenderRequest

// SaveRequest carries one form submission for Box.Save.
type SaveRequest = pkgmetabox.SaveRequest

// New prepares def for rendering and saving.
func New(def MetaBox, options ...Option) (*Box, error) {
	return pkgmetabox.New(def, options...)
}

// RenderHTML renders def with values as the saved data of a throwaway
// record. It is the simplest entry point for callers that just want markup.
func RenderHTML(ctx context.Context, def MetaBox, values map[string]string, options ...Option) ([]byte, error) {
	const record = "render"
	memory := store.NewMemory()
	if len(values) > 0 {
		if err := memory.SetMany(ctx, record, values); err != nil {
			return nil, err
		}
	}
	box, err := New(def, append([]Option{pkgmetabox.WithStore(memory)}, options...)...)
	if err != nil {
		return nil, err
	}
	return box.Render(ctx, record, RenderRequest{FirstAdd: len(values) == 0})
}

// LoadFS prepares every meta box defined in the YAML or JSON files of fsys.
func LoadFS(fsys fs.FS, options ...Option) ([]*Box, error) {
	set, err := config.LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	return set.PrepareAll(options...)
}

// LoadDir is LoadFS over a directory on disk.
func LoadDir(dir string, options ...Option) ([]*Box, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("metabox: definitions dir: %w", err)
	}
	return LoadFS(os.DirFS(dir), options...)
}

// ImportOpenAPI builds a meta box definition from the component schema or
// operation named by target in the document at raw (a path or http(s) URL).
func ImportOpenAPI(ctx context.Context, raw, target string, options ...pkgopenapi.LoaderOption) (MetaBox, error) {
	src, err := pkgopenapi.ParseSource(raw)
	if err != nil {
		return MetaBox{}, err
	}
	return pkgopenapi.LoadBox(ctx, pkgopenapi.NewLoader(options...), src, target)
}
