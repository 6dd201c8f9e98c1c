package location

import (
	"sort"
	"strings"

	"vrp-import/internal/geo"
	"vrp-import/internal/match"
)

// MatchOptions holds the matching thresholds.
type MatchOptions struct {
	// ExactNameConfidence is the score of a case-insensitive name match.
	ExactNameConfidence float64 `yaml:"exact_name_confidence"`
	// CoordinateThresholdKm is the largest distance that counts as the same
	// place.
	CoordinateThresholdKm float64 `yaml:"coordinate_threshold_km"`
	// CoordinateFloor is the lowest score a coordinate match gets.
	CoordinateFloor float64 `yaml:"coordinate_floor"`
	// AddressThreshold is the minimum normalized address similarity.
	AddressThreshold float64 `yaml:"address_threshold"`
	// FuzzyNameThreshold is the minimum name similarity.
	FuzzyNameThreshold float64 `yaml:"fuzzy_name_threshold"`
}

// Default matching thresholds.
const (
	DefaultExactNameConfidence   = 0.95
	DefaultCoordinateThresholdKm = 0.1
	DefaultCoordinateFloor       = 0.7
	DefaultAddressThreshold      = 0.85
	DefaultFuzzyNameThreshold    = 0.7
)

// DefaultMatchOptions returns the documented defaults.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		ExactNameConfidence:   DefaultExactNameConfidence,
		CoordinateThresholdKm: DefaultCoordinateThresholdKm,
		CoordinateFloor:       DefaultCoordinateFloor,
		AddressThreshold:      DefaultAddressThreshold,
		FuzzyNameThreshold:    DefaultFuzzyNameThreshold,
	}
}

// Matcher ranks existing locations against candidates.
type Matcher struct {
	opts MatchOptions
}

// NewMatcher creates a matcher with opts.
func NewMatcher(opts MatchOptions) *Matcher {
	return &Matcher{opts: opts}
}

// Options returns the thresholds in use.
func (m *Matcher) Options() MatchOptions {
	return m.opts
}

// FindMatches scores every existing location against c. Each location
// contributes at most one match, from the first rule it satisfies. The result
// is sorted by confidence (descending); ties keep the order of existing.
func (m *Matcher) FindMatches(c Candidate, existing []Existing) []Match {
	if c.IsEmpty() {
		return []Match{}
	}

	matches := make(MatchList, 0)

	for _, loc := range existing {
		if mt, ok := m.score(c, loc); ok {
			matches = append(matches, mt)
		}
	}

	sort.Stable(matches)

	return matches
}

func (m *Matcher) score(c Candidate, loc Existing) (Match, bool) {
	result := Match{
		ID:      loc.ID,
		Name:    loc.Name,
		Address: loc.Address,
	}

	locPoint, hasPoint := loc.Point()
	if hasPoint {
		result.Coordinates = ptr(locPoint)
	}

	name := strings.TrimSpace(c.Name)
	locName := strings.TrimSpace(loc.Name)

	if name != "" && strings.EqualFold(name, locName) {
		result.MatchType = MatchExact
		result.Confidence = m.opts.ExactNameConfidence

		return result, true
	}

	if c.Coordinates != nil && hasPoint && m.opts.CoordinateThresholdKm > 0 {
		d := geo.Haversine(*c.Coordinates, locPoint)
		if d <= m.opts.CoordinateThresholdKm {
			result.MatchType = MatchCoordinate
			result.Confidence = max(m.opts.CoordinateFloor, 1-d/m.opts.CoordinateThresholdKm)
			result.Distance = ptr(d)

			return result, true
		}
	}

	if strings.TrimSpace(c.Address) != "" && strings.TrimSpace(loc.Address) != "" {
		if sim := match.AddressSimilarity(c.Address, loc.Address); sim >= m.opts.AddressThreshold {
			result.MatchType = MatchAddress
			result.Confidence = sim

			return result, true
		}
	}

	if name != "" && locName != "" {
		if sim := match.NameSimilarity(name, locName); sim >= m.opts.FuzzyNameThreshold {
			result.MatchType = MatchFuzzy
			result.Confidence = sim

			return result, true
		}
	}

	return Match{}, false
}

// MatchList sorts matches by confidence, highest first.
type MatchList []Match

// Len implements sort.Interface.
func (l MatchList) Len() int { return len(l) }

// Swap implements sort.Interface.
func (l MatchList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Less implements sort.Interface.
func (l MatchList) Less(i, j int) bool { return l[i].Confidence > l[j].Confidence }

// Best returns the highest-confidence match, or nil.
func (l MatchList) Best() *Match {
	if len(l) == 0 {
		return nil
	}

	return &l[0]
}
