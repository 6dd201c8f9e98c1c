// Package geo provides coordinate points, coordinate bounds checks,
// great-circle distance and geohash cell keys.
package geo
