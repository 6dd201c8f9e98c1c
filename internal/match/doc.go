// Package match provides name normalization, Levenshtein distance, string
// similarity and candidate ranking used to map CSV headers to schema fields
// and to compare location names and addresses.
//
// Key functions:
//   - NormalizeIdent: normalizes headers and field names for comparison
//   - NormalizeAddress: normalizes street addresses for comparison
//   - Levenshtein: computes edit distance between strings
//   - Similarity: edit-distance similarity in [0, 1]
//   - Rank: ranks candidate names against a query
package match
