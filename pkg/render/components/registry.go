package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-metabox/pkg/datelist"
	"github.com/goliatone/go-metabox/pkg/model"
)

// Renderer writes the control markup for one field into buf. Implementations
// own the escaping of every interpolated value.
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries the resolved value and naming for the control being
// rendered plus helpers some types need.
type ComponentData struct {
	// Value is the saved or default value, unescaped.
	Value string
	// ElementID is the id of the primary control ("ctmb-input-<key>").
	ElementID string
	// Name is the posted input name; list controls append "[]".
	Name string
	// Classes is the space separated class list of the control.
	Classes string

	// Localizer formats date lists for display.
	Localizer *datelist.Localizer
	// LocalizeURL and LocalizeNonce point the client at the date
	// localization endpoint.
	LocalizeURL   string
	LocalizeNonce string
}

// Script describes JavaScript dependencies a component needs to emit once per
// render.
type Script struct {
	Src    string
	Inline string
	Async  bool
	Defer  bool
	Module bool
	Attrs  map[string]string
}

// Descriptor bundles the renderer implementation with any asset dependencies.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	Scripts     []Script
}

// Registry tracks component descriptors keyed by field type. Callers can
// register new types or override the built-in controls.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with the field type. Existing entries are
// replaced.
func (r *Registry) Register(fieldType model.FieldType, descriptor Descriptor) error {
	name := normalize(string(fieldType))
	if name == "" {
		return fmt.Errorf("components: field type is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying default
// registry setup.
func (r *Registry) MustRegister(fieldType model.FieldType, descriptor Descriptor) {
	if err := r.Register(fieldType, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by field type.
func (r *Registry) Descriptor(fieldType model.FieldType) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(string(fieldType))]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Names returns a sorted slice of registered field types.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Assets resolves dependency aggregates for the provided field types.
func (r *Registry) Assets(types []model.FieldType) (stylesheets []string, scripts []Script) {
	if len(types) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seenStyles := make(map[string]struct{})
	seenScripts := make(map[string]struct{})

	for _, fieldType := range types {
		descriptor, ok := r.components[normalize(string(fieldType))]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seenStyles[href]; exists {
				continue
			}
			seenStyles[href] = struct{}{}
			stylesheets = append(stylesheets, href)
		}
		for _, script := range descriptor.Scripts {
			key := scriptKey(script)
			if _, exists := seenScripts[key]; exists {
				continue
			}
			seenScripts[key] = struct{}{}
			scripts = append(scripts, script)
		}
	}
	return stylesheets, scripts
}

func cloneDescriptor(src Descriptor) Descriptor {
	clone := Descriptor{
		Name:        src.Name,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
		Scripts:     make([]Script, len(src.Scripts)),
	}
	for idx, script := range src.Scripts {
		clone.Scripts[idx] = Script{
			Src:    script.Src,
			Inline: script.Inline,
			Async:  script.Async,
			Defer:  script.Defer,
			Module: script.Module,
			Attrs:  cloneStringMap(script.Attrs),
		}
	}
	return clone
}

func cloneStringMap(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func scriptKey(script Script) string {
	if script.Src != "" {
		return "src:" + script.Src
	}
	return "inline:" + script.Inline
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
