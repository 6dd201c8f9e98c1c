package columnmap

import (
	"strings"

	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

// LocationAnalysis summarizes the location-related columns of a parsed file.
type LocationAnalysis struct {
	CoordinateColumns []string `json:"coordinateColumns"`
	AddressColumns    []string `json:"addressColumns"`
	LocationIDColumns []string `json:"locationIdColumns"`
	// NeedsLocationResolution is true iff coordinate or address columns exist
	// and no location-id column does.
	NeedsLocationResolution bool `json:"needsLocationResolution"`
	// EstimatedLocationCount counts distinct address+coordinate signatures.
	EstimatedLocationCount int `json:"estimatedLocationCount"`
}

// Analyze classifies headers and estimates how many distinct locations the
// rows reference.
func Analyze(headers []string, rows []record.Row) LocationAnalysis {
	a := LocationAnalysis{
		CoordinateColumns: []string{},
		AddressColumns:    []string{},
		LocationIDColumns: []string{},
	}

	for _, h := range headers {
		switch {
		case schema.IsLocationIDHeader(h):
			a.LocationIDColumns = append(a.LocationIDColumns, h)
		case schema.IsCoordinateHeader(h):
			a.CoordinateColumns = append(a.CoordinateColumns, h)
		case schema.IsAddressHeader(h):
			a.AddressColumns = append(a.AddressColumns, h)
		}
	}

	hasLocationData := len(a.CoordinateColumns) > 0 || len(a.AddressColumns) > 0
	a.NeedsLocationResolution = hasLocationData && len(a.LocationIDColumns) == 0

	if !hasLocationData {
		return a
	}

	signatureCols := append(append([]string{}, a.AddressColumns...), a.CoordinateColumns...)
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		parts := make([]string, len(signatureCols))
		blank := true

		for i, col := range signatureCols {
			parts[i] = strings.TrimSpace(row.Get(col).Text())
			if parts[i] != "" {
				blank = false
			}
		}

		if blank {
			continue
		}

		seen[strings.Join(parts, "|")] = struct{}{}
	}

	a.EstimatedLocationCount = len(seen)

	return a
}
