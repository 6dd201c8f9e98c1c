// Package pipeline runs an import end to end: file checks, parsing, column
// mapping, location resolution against the store, location creation and
// row transformation. It also drives export enrichment and templates.
package pipeline
