// Package columnmap infers how arbitrary CSV headers map onto the canonical
// fields of a table schema and summarizes which columns describe locations.
//
// Header matching uses exact normalized names first and falls back to
// edit-distance similarity; see match.Rank.
package columnmap
