package transform

import (
	"vrp-import/internal/location"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

// skipKeys are the non-coordinate location fields removed from skipped rows.
var skipKeys = []string{"address", "locationAddress", "locationName"}

// ApplyResolutions returns the rows rewritten for persistence. created maps
// LocationKey values to the ids of newly created locations. Rows are cloned;
// the input is not modified.
//
//   - use_existing and create_new set the location-id field and drop the raw
//     coordinate pair the location was taken from. For the locations table
//     only the id is set.
//   - skip drops every location field.
//   - manual_select rows, rows without a resolution, and create_new rows
//     whose location was not created are returned unchanged.
func ApplyResolutions(rows []record.Row, resolutions []location.Resolution, created map[string]string, tbl *schema.Table) []record.Row {
	byRow := make(map[int]location.Resolution, len(resolutions))
	for _, r := range resolutions {
		byRow[r.ImportRowIndex] = r
	}

	out := make([]record.Row, len(rows))

	for i, row := range rows {
		row = row.Clone()
		out[i] = row

		res, ok := byRow[i]
		if !ok {
			continue
		}

		switch res.Resolution {
		case location.UseExisting:
			substitute(row, tbl, res.SelectedLocationID)
		case location.CreateNew:
			if res.NewLocationData == nil {
				continue
			}

			if id, ok := created[LocationKey(*res.NewLocationData)]; ok {
				substitute(row, tbl, id)
			}
		case location.Skip:
			strip(row)
		}
	}

	return out
}

// CreatedID returns the id created for the location of res, if any.
func CreatedID(res location.Resolution, created map[string]string) (string, bool) {
	if res.Resolution != location.CreateNew || res.NewLocationData == nil {
		return "", false
	}

	id, ok := created[LocationKey(*res.NewLocationData)]

	return id, ok
}

func substitute(row record.Row, tbl *schema.Table, id string) {
	if id == "" {
		return
	}

	if tbl.Type == schema.Locations {
		row[tbl.DefaultLocationRef()] = record.String(id)
		return
	}

	field, lat, lon := target(row, tbl)
	row[field] = record.String(id)

	if lat != "" {
		delete(row, lat)
		delete(row, lon)
	}
}

// target picks the id field and coordinate pair of the row's location, in
// the order candidates are extracted: plain location coordinates, then start
// coordinates, then the table's default reference.
func target(row record.Row, tbl *schema.Table) (field, lat, lon string) {
	def := tbl.DefaultLocationRef()

	if row.Has("locationLat") && row.Has("locationLon") {
		return def, "locationLat", "locationLon"
	}

	if row.Has("startLat") && row.Has("startLon") {
		if tbl.IsLocationRef("startLocationId") {
			return "startLocationId", "startLat", "startLon"
		}

		return def, "startLat", "startLon"
	}

	if rf, ok := schema.RefFieldFor(def); ok {
		return def, rf.Lat, rf.Lon
	}

	return def, "", ""
}

func strip(row record.Row) {
	for _, rf := range schema.RefFields {
		delete(row, rf.ID)
		delete(row, rf.Lat)
		delete(row, rf.Lon)
		delete(row, rf.Name)
		delete(row, rf.Address)
	}

	for _, k := range skipKeys {
		delete(row, k)
	}
}
