package transform

import (
	"vrp-import/internal/location"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

// ExportOptions selects what EnrichForExport adds.
type ExportOptions struct {
	Names       bool `yaml:"names" json:"names"`
	Addresses   bool `yaml:"addresses" json:"addresses"`
	Coordinates bool `yaml:"coordinates" json:"coordinates"`
	// LegacyFlat removes the id fields after enrichment.
	LegacyFlat bool `yaml:"legacy_flat" json:"legacyFlat"`
}

// DefaultExportOptions enriches with everything and keeps ids.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Names: true, Addresses: true, Coordinates: true}
}

// IDs returns the distinct location ids referenced by rows, in first-seen
// order.
func IDs(rows []record.Row) []string {
	seen := make(map[string]struct{})

	var ids []string

	for _, row := range rows {
		for _, rf := range schema.RefFields {
			id, ok := row.Text(rf.ID)
			if !ok {
				continue
			}

			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	return ids
}

// EnrichForExport returns copies of rows with the referenced locations'
// fields added next to each id field. Values already present are kept.
// References to unknown ids are left as they are.
func EnrichForExport(rows []record.Row, byID map[string]location.Existing, opts ExportOptions) []record.Row {
	out := make([]record.Row, len(rows))

	for i, row := range rows {
		row = row.Clone()
		out[i] = row

		for _, rf := range schema.RefFields {
			id, ok := row.Text(rf.ID)
			if !ok {
				continue
			}

			loc, found := byID[id]

			if found {
				enrich(row, rf, loc, opts)
			}

			if opts.LegacyFlat && found {
				delete(row, rf.ID)
			}
		}
	}

	return out
}

func enrich(row record.Row, rf schema.RefField, loc location.Existing, opts ExportOptions) {
	setMissing := func(key string, v record.Value) {
		if !row.Has(key) {
			row[key] = v
		}
	}

	if opts.Names && loc.Name != "" {
		setMissing(rf.Name, record.String(loc.Name))
	}

	// Plain location rows may carry the address under "address".
	if opts.Addresses && loc.Address != "" && !(rf.ID == "locationId" && row.Has("address")) {
		setMissing(rf.Address, record.String(loc.Address))
	}

	if p, ok := loc.Point(); opts.Coordinates && ok {
		setMissing(rf.Lat, record.Number(p.Lat))
		setMissing(rf.Lon, record.Number(p.Lon))
	}
}
