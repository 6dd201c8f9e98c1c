package location

import (
	"strings"

	"vrp-import/internal/geo"
)

// MatchType names the rule that produced a Match.
type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchCoordinate MatchType = "coordinate"
	MatchAddress    MatchType = "address"
	MatchFuzzy      MatchType = "fuzzy"
)

// Kind is the decision taken for one import row.
type Kind string

const (
	UseExisting  Kind = "use_existing"
	ManualSelect Kind = "manual_select"
	CreateNew    Kind = "create_new"
	Skip         Kind = "skip"
)

// ParseKind validates a resolution kind name.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case UseExisting, ManualSelect, CreateNew, Skip:
		return k, true
	}

	return "", false
}

// Existing is a record of the location master.
type Existing struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"locationLat,omitempty"`
	Lon     *float64 `json:"locationLon,omitempty"`
}

// Point returns the coordinates of the location, if it has valid ones.
func (e Existing) Point() (geo.Point, bool) {
	return pointOf(e.Lat, e.Lon)
}

// Candidate is the location-shaped part of an import row.
type Candidate struct {
	Name        string     `json:"name,omitempty"`
	Address     string     `json:"address,omitempty"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`
}

// IsEmpty reports whether the candidate carries nothing to match on.
func (c Candidate) IsEmpty() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Address) == "" && c.Coordinates == nil
}

// Match is one existing location ranked against a candidate.
type Match struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address,omitempty"`
	Coordinates *geo.Point `json:"coordinates,omitempty"`
	MatchType   MatchType  `json:"matchType"`
	Confidence  float64    `json:"confidence"`
	// Distance in km, set for coordinate matches.
	Distance *float64 `json:"distance,omitempty"`
}

// NewLocation is the data of a location to be created.
type NewLocation struct {
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"locationLat,omitempty"`
	Lon     *float64 `json:"locationLon,omitempty"`
}

// Point returns the coordinates of the new location, if it has valid ones.
func (n NewLocation) Point() (geo.Point, bool) {
	return pointOf(n.Lat, n.Lon)
}

// Resolution is the decision for one import row. It is created once during
// planning and consumed once by the transformer.
type Resolution struct {
	// ImportRowIndex is the 0-based index of the row in the parsed data.
	ImportRowIndex     int          `json:"importRowIndex"`
	SourceName         string       `json:"sourceName,omitempty"`
	SourceAddress      string       `json:"sourceAddress,omitempty"`
	SourceCoordinates  *geo.Point   `json:"sourceCoordinates,omitempty"`
	Resolution         Kind         `json:"resolution"`
	SelectedLocationID string       `json:"selectedLocationId,omitempty"`
	NewLocationData    *NewLocation `json:"newLocationData,omitempty"`
	Matches            []Match      `json:"matches"`
}

// Decide returns a copy of r with a caller's decision applied. It is how a
// manual_select row gets settled; any resolution may be overridden.
func (r Resolution) Decide(kind Kind, selectedID string) Resolution {
	out := r
	out.Resolution = kind
	out.SelectedLocationID = ""

	switch kind {
	case UseExisting:
		out.SelectedLocationID = selectedID
	case CreateNew:
		if out.NewLocationData == nil {
			nl := newLocationFrom(Candidate{
				Name:        r.SourceName,
				Address:     r.SourceAddress,
				Coordinates: r.SourceCoordinates,
			}, nil)
			out.NewLocationData = &nl
		}
	}

	return out
}

func pointOf(lat, lon *float64) (geo.Point, bool) {
	if lat == nil || lon == nil {
		return geo.Point{}, false
	}

	p := geo.NewPoint(*lat, *lon)

	return p, p.Valid()
}

func ptr[T any](v T) *T {
	return &v
}
