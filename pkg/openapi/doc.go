// Package openapi builds meta box definitions from OpenAPI 3 documents.
//
// A component schema (or the request body of an operation) becomes one meta
// box: each property turns into a field whose type is derived from the
// property's type, format and enum. The "x-metabox" extension on a property
// overrides any field attribute, and "x-order" controls field order.
package openapi
