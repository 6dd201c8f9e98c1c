package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent normalizes an identifier or CSV header for fuzzy matching.
// The normalization pipeline:
// 1. Case-fold to lower.
// 2. Strip separators (_, -, whitespace).
//
// "Start Location ID", "start_location_id" and "startLocationId" all
// normalize to "startlocationid".
func NormalizeIdent(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}

// NormalizeAddress normalizes a street address for comparison: lowercase,
// punctuation stripped, runs of whitespace collapsed to a single space.
func NormalizeAddress(s string) string {
	var stripped strings.Builder

	stripped.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}

		stripped.WriteRune(r)
	}

	return strings.Join(strings.Fields(stripped.String()), " ")
}

// isSeparator returns true if the rune is a common identifier separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}
