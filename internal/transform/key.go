package transform

import (
	"strings"

	"vrp-import/internal/geo"
	"vrp-import/internal/location"
	"vrp-import/internal/match"
)

// CoordinateKeyDecimals is the rounding used for coordinate keys (about 0.1 m).
const CoordinateKeyDecimals = 6

// LocationKey identifies a location to be created so that rows sharing it
// map to the same new id: the normalized address, else the rounded
// coordinates, else the normalized name.
func LocationKey(nl location.NewLocation) string {
	if addr := match.NormalizeAddress(nl.Address); addr != "" {
		return "addr:" + addr
	}

	if p, ok := nl.Point(); ok {
		return "geo:" + geo.RoundedKey(p, CoordinateKeyDecimals)
	}

	return "name:" + match.NormalizeAddress(strings.TrimSpace(nl.Name))
}
