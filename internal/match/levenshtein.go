package match

import "strings"

// Levenshtein returns the edit distance between a and b: the fewest rune
// insertions, deletions or substitutions turning one into the other. It keeps
// a single row of min(len(a), len(b))+1 cells.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	// row[i] holds the distance between ra[:i] and the prefix of rb seen so
	// far; diag is the previous row's value at i-1.
	row := make([]int, len(ra)+1)
	for i := range row {
		row[i] = i
	}

	for j, r := range rb {
		diag := row[0]
		row[0] = j + 1

		for i := 1; i <= len(ra); i++ {
			above := row[i]

			cost := 1
			if ra[i-1] == r {
				cost = 0
			}

			row[i] = min(above+1, row[i-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(ra)]
}

// Similarity computes a normalized similarity score between 0 and 1.
// 1.0 means identical strings, 0.0 means completely different.
// The score is: (longer - distance) / longer, where longer is the rune length
// of the longer string. Two empty strings are identical; one empty string
// against a non-empty one scores 0.
func Similarity(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 && lb == 0 {
		return 1.0
	}

	longer := max(la, lb)

	return float64(longer-Levenshtein(a, b)) / float64(longer)
}

// IdentSimilarity computes the similarity of two identifiers after
// normalizing them. This is the score used for header matching.
func IdentSimilarity(a, b string) float64 {
	return Similarity(NormalizeIdent(a), NormalizeIdent(b))
}

// AddressSimilarity computes the similarity of two street addresses after
// normalizing them.
func AddressSimilarity(a, b string) float64 {
	return Similarity(NormalizeAddress(a), NormalizeAddress(b))
}

// NameSimilarity computes the case-insensitive similarity of two display
// names. Surrounding whitespace is ignored.
func NameSimilarity(a, b string) float64 {
	return Similarity(strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b)))
}
