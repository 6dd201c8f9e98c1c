package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/TomiHiltunen/geohash-golang"
)

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Coordinate bounds.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0
)

// Point is a WGS84 position. It is encoded in JSON as [lon, lat].
type Point struct {
	Lon float64
	Lat float64
}

// NewPoint returns the point at (lat, lon).
func NewPoint(lat, lon float64) Point {
	return Point{Lon: lon, Lat: lat}
}

// Valid reports whether both components are inside their bounds.
func (p Point) Valid() bool {
	return ValidLat(p.Lat) && ValidLon(p.Lon)
}

// String formats the point as "lat, lon".
func (p Point) String() string {
	return fmt.Sprintf("%g, %g", p.Lat, p.Lon)
}

// MarshalJSON encodes the point as [lon, lat].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

// UnmarshalJSON decodes a [lon, lat] pair.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("point must be [lon, lat]: %w", err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("point must be [lon, lat], got %d values", len(pair))
	}

	p.Lon, p.Lat = pair[0], pair[1]

	return nil
}

// ValidLat reports whether lat is in [-90, 90].
func ValidLat(lat float64) bool {
	return inRange(MinLat, lat, MaxLat)
}

// ValidLon reports whether lon is in [-180, 180].
func ValidLon(lon float64) bool {
	return inRange(MinLon, lon, MaxLon)
}

// inRange checks if a value is within the specified range, both inclusive.
// NaN is never in range.
func inRange(lo, value, hi float64) bool {
	return lo <= value && value <= hi
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	// Rounding can push h marginally outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// maxGeohashPrecision is the length of hashes returned by geohash.Encode.
const maxGeohashPrecision = 12

// Cell returns the geohash of p truncated to precision characters. Points in
// the same cell share the returned key. Precision 7 cells are roughly
// 150 m x 150 m.
func Cell(p Point, precision int) string {
	precision = min(max(precision, 1), maxGeohashPrecision)

	gh := geohash.Encode(p.Lat, p.Lon)
	if len(gh) < precision {
		return gh
	}

	return gh[:precision]
}

// RoundedKey formats p with lat and lon rounded to the given number of
// decimals, e.g. "37.770000,-122.410000".
func RoundedKey(p Point, decimals int) string {
	return fmt.Sprintf("%.*f,%.*f", decimals, p.Lat, decimals, p.Lon)
}
