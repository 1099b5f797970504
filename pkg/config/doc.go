// Package config loads meta box definitions from YAML or JSON files.
//
// A file either describes a single box (top-level "id") or several under
// "meta_boxes", keyed by id. Besides the box itself each entry may carry
// "visible_fields" and "field_overrides", which are applied when the box is
// prepared.
package config
