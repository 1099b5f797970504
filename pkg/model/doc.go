// Package model defines the declarative meta box configuration consumed by the
// renderer, sanitizer and visibility evaluator. A MetaBox groups an ordered
// list of Field definitions; each field carries a type tag, optional default,
// ordered option list for choice types, visibility conditions on sibling
// fields, and free-form rendering hints (classes, attributes, help text).
//
// Configurations are read-only once prepared. Options, Conditions and Fields
// decode from both YAML and JSON, accepting either list form or the keyed
// mapping form while preserving declaration order.
package model
