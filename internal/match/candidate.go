package match

import "sort"

// Candidate is a potential match of a query name against one known name.
type Candidate struct {
	// Name is the known name as given by the caller.
	Name string
	// Index is the position of Name in the list passed to Rank.
	Index int
	// Score is the normalized similarity (0-1); 1.0 only for exact
	// normalized matches.
	Score float64

	NormalizedQuery string
	NormalizedName  string
}

// Exact reports whether the candidate matched after normalization.
func (c Candidate) Exact() bool {
	return c.NormalizedQuery == c.NormalizedName
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores query against every name and returns the candidates sorted by
// score (descending). Ties keep the order of names, so callers that list
// names in schema order get schema order among equal scores.
func Rank(query string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))

	normQuery := NormalizeIdent(query)

	for i, name := range names {
		normName := NormalizeIdent(name)

		score := Similarity(normQuery, normName)
		if normQuery == normName {
			score = 1.0
		}

		candidates = append(candidates, Candidate{
			Name:            name,
			Index:           i,
			Score:           score,
			NormalizedQuery: normQuery,
			NormalizedName:  normName,
		})
	}

	sort.Stable(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by original index for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Index < c[j].Index
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// Above returns candidates whose score is strictly greater than threshold.
func (c CandidateList) Above(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score > threshold {
			result = append(result, cand)
		}
	}

	return result
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// DefaultFuzzyThreshold is the similarity a fuzzy header match must exceed.
const DefaultFuzzyThreshold = 0.6
