package csvexport

import (
	"io"

	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

var (
	num  = record.Number
	str  = record.String
	nums = record.Numbers
)

func windows(pairs ...[2]float64) record.Value {
	out := make([]record.Value, len(pairs))
	for i, p := range pairs {
		out[i] = nums(p[0], p[1])
	}

	return record.Array(out...)
}

// samples holds one example row per table. Each parses without errors.
var samples = map[schema.TableType]record.Row{
	schema.Vehicles: {
		"id": str("vehicle-1"), "description": str("Delivery van"), "profile": str("car"),
		"startLat": num(37.7749), "startLon": num(-122.4194), "endLat": num(37.7749), "endLon": num(-122.4194),
		"capacity": nums(1000, 50, 20), "skills": nums(1, 2),
		"twStart": num(28800), "twEnd": num(64800),
		"speedFactor": num(1), "maxTasks": num(20),
		"costFixed": num(100), "costPerHour": num(30), "costPerKm": num(0.5),
	},
	schema.Jobs: {
		"id": str("job-1"), "description": str("Deliver to Market St"),
		"locationLat": num(37.7937), "locationLon": num(-122.3965), "address": str("1 Market St, San Francisco, CA"),
		"setup": num(60), "service": num(300),
		"delivery": nums(10, 1, 0), "pickup": nums(0, 0, 0), "skills": nums(1),
		"priority": num(10), "timeWindows": windows([2]float64{32400, 43200}),
	},
	schema.Locations: {
		"name": str("Main Depot"), "address": str("500 Terry Francois St, San Francisco, CA"),
		"locationLat": num(37.7706), "locationLon": num(-122.3871),
		"locationType": str("depot"), "operatingHours": str("08:00-18:00"),
		"contactInfo": str("+1 555 0100"), "timezone": str("America/Los_Angeles"),
	},
	schema.Routes: {
		"vehicleId": str("vehicle-1"), "jobId": str("job-1"), "type": str("job"), "sequence": num(1),
		"locationLat": num(37.7937), "locationLon": num(-122.3965),
		"arrival": num(32400), "duration": num(900), "distance": num(5200), "service": num(300), "waitingTime": num(0),
		"load": nums(10, 1, 0), "description": str("First stop"),
	},
	schema.Shipments: {
		"id": str("shipment-1"), "description": str("Depot to Market St"),
		"pickupLat": num(37.7706), "pickupLon": num(-122.3871), "deliveryLat": num(37.7937), "deliveryLon": num(-122.3965),
		"amount": nums(5), "skills": nums(1), "priority": num(20),
		"pickupService": num(120), "deliveryService": num(180),
		"pickupTimeWindows":   windows([2]float64{28800, 36000}),
		"deliveryTimeWindows": windows([2]float64{36000, 50400}),
	},
}

// Sample returns a copy of the example row of table, or nil.
func Sample(table schema.TableType) record.Row {
	row, ok := samples[table]
	if !ok {
		return nil
	}

	return row.Clone()
}

// Template writes the header row of tbl and, if withSample is set, its
// example row.
func Template(w io.Writer, tbl *schema.Table, withSample bool) error {
	var rows []record.Row

	if withSample {
		if row := Sample(tbl.Type); row != nil {
			rows = append(rows, row)
		}
	}

	return Write(w, tbl.FieldNames(), rows)
}
