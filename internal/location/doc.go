// Package location reconciles imported rows against the location master.
//
// A Matcher ranks existing locations against a candidate by exact name,
// coordinate proximity, address similarity and fuzzy name, in that order of
// precedence. A Resolver turns the ranked matches into a Resolution per row:
// reuse an existing location, ask for a manual choice, or create a new one.
// An Enhancer optionally fills missing coordinates or addresses of new
// locations through a Geocoder; its failures never fail an import.
package location
