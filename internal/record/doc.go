// Package record holds the typed cell values and rows produced by the CSV
// parser and consumed by the location resolver and transformer.
package record
