// Package transform rewrites rows between their CSV shape and their stored
// shape.
//
// On import, ApplyResolutions replaces raw coordinates with the id of the
// resolved location. On export, EnrichForExport puts names, addresses and
// coordinates of referenced locations back next to their ids.
package transform
