package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-metabox/pkg/metabox"
	"github.com/goliatone/go-metabox/pkg/model"
)

// Definition is one loaded meta box plus its preparation settings.
type Definition struct {
	Box model.MetaBox
	// VisibleFields is nil when the file does not restrict visibility.
	VisibleFields []string
	Overrides     map[string]map[string]any
	// Source is the file the definition came from.
	Source string
}

// Options converts the preparation settings into metabox options.
func (d Definition) Options() []metabox.Option {
	var opts []metabox.Option
	if d.VisibleFields != nil {
		opts = append(opts, metabox.WithVisibleFields(d.VisibleFields...))
	}
	if len(d.Overrides) > 0 {
		opts = append(opts, metabox.WithFieldOverrides(d.Overrides))
	}
	return opts
}

// Prepare builds a Box from the definition. extra options run after the
// loaded settings.
func (d Definition) Prepare(extra ...metabox.Option) (*metabox.Box, error) {
	return metabox.New(d.Box, append(d.Options(), extra...)...)
}

// Set holds loaded definitions in load order.
type Set struct {
	definitions map[string]Definition
	order       []string
}

// LoadFS walks fsys and parses every JSON/YAML file as meta box definitions.
// When fsys is nil or holds no definition files, the returned set is empty.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{definitions: make(map[string]Definition)}
	if fsys == nil {
		return set, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		defs, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, def := range defs {
			if err := set.add(def); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Parse decodes one file worth of definitions. source is used in errors.
func Parse(data []byte, source string) ([]Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("config: file %s is empty", source)
	}

	var doc documentFile
	if err := decode(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", source, err)
	}

	if len(doc.MetaBoxes) == 0 {
		var single boxFile
		if err := decode(data, &single); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", source, err)
		}
		def, err := normaliseBox(single, "", source)
		if err != nil {
			return nil, err
		}
		return []Definition{def}, nil
	}

	ids := make([]string, 0, len(doc.MetaBoxes))
	for id := range doc.MetaBoxes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Definition, 0, len(ids))
	for _, id := range ids {
		def, err := normaliseBox(doc.MetaBoxes[id], id, source)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

// Definition returns the definition for id.
func (s *Set) Definition(id string) (Definition, bool) {
	if s == nil {
		return Definition{}, false
	}
	def, ok := s.definitions[id]
	return def, ok
}

// IDs lists loaded box ids in load order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Empty reports whether the set holds any definitions.
func (s *Set) Empty() bool {
	return s == nil || len(s.definitions) == 0
}

// PrepareAll builds a Box for every definition, in load order.
func (s *Set) PrepareAll(extra ...metabox.Option) ([]*metabox.Box, error) {
	boxes := make([]*metabox.Box, 0, len(s.IDs()))
	for _, id := range s.IDs() {
		box, err := s.definitions[id].Prepare(extra...)
		if err != nil {
			return nil, fmt.Errorf("config: prepare %q: %w", id, err)
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

func (s *Set) add(def Definition) error {
	if existing, exists := s.definitions[def.Box.ID]; exists {
		return fmt.Errorf("config: duplicate meta box %q (files %s and %s)", def.Box.ID, existing.Source, def.Source)
	}
	s.definitions[def.Box.ID] = def
	s.order = append(s.order, def.Box.ID)
	return nil
}

type documentFile struct {
	MetaBoxes map[string]boxFile `json:"meta_boxes" yaml:"meta_boxes"`
}

type boxFile struct {
	model.MetaBox  `yaml:",inline"`
	VisibleFields  []string                  `json:"visible_fields" yaml:"visible_fields"`
	FieldOverrides map[string]map[string]any `json:"field_overrides" yaml:"field_overrides"`
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid JSON or YAML: %w", err)
	}
	return nil
}

func normaliseBox(raw boxFile, id, source string) (Definition, error) {
	box := raw.MetaBox
	id = strings.TrimSpace(id)
	box.ID = strings.TrimSpace(box.ID)
	switch {
	case box.ID == "" && id == "":
		return Definition{}, fmt.Errorf("config: file %s defines a meta box without id", source)
	case box.ID == "":
		box.ID = id
	case id != "" && box.ID != id:
		return Definition{}, fmt.Errorf("config: file %s meta box %q declares id %q", source, id, box.ID)
	}

	keys := make(map[string]struct{}, len(box.Fields))
	for idx, field := range box.Fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return Definition{}, fmt.Errorf("config: file %s meta box %q field %d has no key", source, box.ID, idx)
		}
		if _, dup := keys[key]; dup {
			return Definition{}, fmt.Errorf("config: file %s meta box %q defines duplicate field %q", source, box.ID, key)
		}
		keys[key] = struct{}{}
	}

	def := Definition{Box: box, Source: source}
	if raw.VisibleFields != nil {
		def.VisibleFields = make([]string, 0, len(raw.VisibleFields))
		for _, key := range raw.VisibleFields {
			key = strings.TrimSpace(key)
			if _, ok := keys[key]; !ok {
				return Definition{}, fmt.Errorf("config: file %s meta box %q lists unknown visible field %q", source, box.ID, key)
			}
			def.VisibleFields = append(def.VisibleFields, key)
		}
	}
	if len(raw.FieldOverrides) > 0 {
		def.Overrides = make(map[string]map[string]any, len(raw.FieldOverrides))
		for key, attrs := range raw.FieldOverrides {
			if _, ok := keys[key]; !ok {
				return Definition{}, fmt.Errorf("config: file %s meta box %q overrides unknown field %q", source, box.ID, key)
			}
			def.Overrides[key] = attrs
		}
	}
	return def, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
