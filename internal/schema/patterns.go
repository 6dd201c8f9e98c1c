package schema

import (
	"strings"

	"vrp-import/internal/match"
)

// HeaderAxis classifies a header as a latitude or longitude column by name.
func HeaderAxis(header string) Axis {
	n := match.NormalizeIdent(header)
	switch {
	case n == "lat" || n == "latitude" ||
		strings.HasSuffix(n, "lat") || strings.HasSuffix(n, "latitude"):
		return AxisLat
	case n == "lon" || n == "lng" || n == "long" || n == "longitude" ||
		strings.HasSuffix(n, "lon") || strings.HasSuffix(n, "lng") || strings.HasSuffix(n, "longitude"):
		return AxisLon
	}

	return AxisNone
}

// IsCoordinateHeader reports whether header names a latitude or longitude column.
func IsCoordinateHeader(header string) bool {
	return HeaderAxis(header) != AxisNone
}

// IsAddressHeader reports whether header names a street address column.
func IsAddressHeader(header string) bool {
	n := match.NormalizeIdent(header)
	return strings.Contains(n, "address") || n == "street"
}

// IsLocationIDHeader reports whether header names a location-id column.
func IsLocationIDHeader(header string) bool {
	return strings.HasSuffix(match.NormalizeIdent(header), "locationid")
}
