package schema

import "fmt"

// Registry maps table types to their schemas. Parsers and mappers receive a
// registry at construction time instead of reading package state.
type Registry map[TableType]*Table

// Table returns the schema for t.
func (r Registry) Table(t TableType) (*Table, error) {
	tbl, ok := r[t]
	if !ok || tbl == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, t)
	}

	return tbl, nil
}

// With returns a copy of the registry where the given tables replace the
// built-in ones of the same type.
func (r Registry) With(tables ...*Table) Registry {
	out := make(Registry, len(r)+len(tables))
	for k, v := range r {
		out[k] = v
	}

	for _, t := range tables {
		out[t.Type] = t
	}

	return out
}

// RefField ties a location-id field to the raw coordinate columns and the
// enrichment columns that describe the same location.
type RefField struct {
	ID      string
	Lat     string
	Lon     string
	Name    string
	Address string
}

// RefFields lists the location-id variants in lookup order.
var RefFields = []RefField{
	{ID: "locationId", Lat: "locationLat", Lon: "locationLon", Name: "locationName", Address: "locationAddress"},
	{ID: "startLocationId", Lat: "startLat", Lon: "startLon", Name: "startLocationName", Address: "startLocationAddress"},
	{ID: "endLocationId", Lat: "endLat", Lon: "endLon", Name: "endLocationName", Address: "endLocationAddress"},
	{ID: "pickupLocationId", Lat: "pickupLat", Lon: "pickupLon", Name: "pickupLocationName", Address: "pickupLocationAddress"},
	{ID: "deliveryLocationId", Lat: "deliveryLat", Lon: "deliveryLon", Name: "deliveryLocationName", Address: "deliveryLocationAddress"},
}

// RefFieldFor returns the RefField whose ID is id.
func RefFieldFor(id string) (RefField, bool) {
	for _, rf := range RefFields {
		if rf.ID == id {
			return rf, true
		}
	}

	return RefField{}, false
}

func str(name string) Field  { return Field{Name: name, Type: TypeString} }
func num(name string) Field  { return Field{Name: name, Type: TypeNumber} }
func ref(name string) Field  { return Field{Name: name, Type: TypeLocationID} }
func crd(name string) Field  { return Field{Name: name, Type: TypeCoordinate} }
func list(name string) Field { return Field{Name: name, Type: TypeArray} }

func qty(name string) Field {
	return Field{Name: name, Type: TypeArray, Rule: RuleQuantity}
}

func windows(name string) Field {
	return Field{Name: name, Type: TypeArray, Rule: RuleTimeWindows}
}

func priority() Field {
	return Field{Name: "priority", Type: TypeNumber, Rule: RulePriority}
}

// Default returns the built-in schemas of every table type.
func Default() Registry {
	return Registry{
		Vehicles: {
			Type: Vehicles,
			Fields: []Field{
				str("id"), str("description"), str("profile"),
				ref("startLocationId"), ref("endLocationId"),
				crd("startLat"), crd("startLon"), crd("endLat"), crd("endLon"),
				qty("capacity"), list("skills"),
				num("twStart"), num("twEnd"),
				num("speedFactor"), num("maxTasks"),
				num("costFixed"), num("costPerHour"), num("costPerKm"),
			},
			LocationRefs: []string{"startLocationId", "endLocationId"},
			TimeWindows:  []TimeWindowPair{{Start: "twStart", End: "twEnd"}},
		},
		Jobs: {
			Type: Jobs,
			Fields: []Field{
				str("id"), str("description"),
				ref("locationId"), crd("locationLat"), crd("locationLon"), str("address"),
				num("setup"), num("service"),
				qty("delivery"), qty("pickup"), list("skills"),
				priority(), windows("timeWindows"),
			},
			LocationRefs: []string{"locationId"},
		},
		Locations: {
			Type: Locations,
			Fields: []Field{
				str("id"), {Name: "name", Type: TypeString, Required: true}, str("address"),
				crd("locationLat"), crd("locationLon"),
				str("locationType"), str("operatingHours"), str("contactInfo"), str("timezone"),
			},
			LocationRefs: []string{"id"},
		},
		Routes: {
			Type: Routes,
			Fields: []Field{
				str("vehicleId"), str("jobId"), str("type"), num("sequence"),
				ref("locationId"), crd("locationLat"), crd("locationLon"),
				num("arrival"), num("duration"), num("distance"), num("service"), num("waitingTime"),
				qty("load"), str("description"),
			},
			LocationRefs: []string{"locationId"},
		},
		Shipments: {
			Type: Shipments,
			Fields: []Field{
				str("id"), str("description"),
				ref("pickupLocationId"), ref("deliveryLocationId"),
				crd("pickupLat"), crd("pickupLon"), crd("deliveryLat"), crd("deliveryLon"),
				qty("amount"), list("skills"), priority(),
				num("pickupService"), num("deliveryService"),
				windows("pickupTimeWindows"), windows("deliveryTimeWindows"),
			},
			LocationRefs: []string{"pickupLocationId", "deliveryLocationId"},
		},
	}
}
