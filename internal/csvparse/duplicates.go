package csvparse

import (
	"fmt"

	"vrp-import/internal/diagnostic"
	"vrp-import/internal/geo"
	"vrp-import/internal/schema"
)

// duplicateHints warns about rows whose location coordinates fall into the
// same geohash cell as an earlier row. The hint is advisory only.
func duplicateHints(res *Result, tbl *schema.Table, precision int) {
	ref := schema.RefFields[0]

	latCol, okLat := headerFor(res.Headers, ref.Lat)
	lonCol, okLon := headerFor(res.Headers, ref.Lon)

	if !okLat || !okLon {
		return
	}

	bad := res.RowsWithErrors()
	first := make(map[string]int)

	for i, row := range res.Data {
		rowNumber := res.RowNumber(i)
		if _, ok := bad[rowNumber]; ok {
			continue
		}

		lat, okLat := row.Get(latCol).Num()
		lon, okLon := row.Get(lonCol).Num()

		if !okLat || !okLon {
			continue
		}

		cell := geo.Cell(geo.NewPoint(lat, lon), precision)
		if prev, seen := first[cell]; seen {
			res.AddWarning(rowNumber, latCol, diagnostic.CodeDuplicateHint,
				fmt.Sprintf("%s location is very close to row %d; it may be a duplicate", tbl.Type, prev), cell)

			continue
		}

		first[cell] = rowNumber
	}
}
