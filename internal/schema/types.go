package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTable is returned when a table type is not part of a registry.
var ErrUnknownTable = errors.New("unknown table type")

// TableType is the declared destination table of an import.
type TableType string

const (
	Vehicles  TableType = "vehicles"
	Jobs      TableType = "jobs"
	Locations TableType = "locations"
	Routes    TableType = "routes"
	Shipments TableType = "shipments"
)

// TableTypes lists every built-in table type in a stable order.
var TableTypes = []TableType{Vehicles, Jobs, Locations, Routes, Shipments}

// ParseTableType converts a user supplied name into a TableType.
func ParseTableType(s string) (TableType, error) {
	t := TableType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TableTypes {
		if t == known {
			return t, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

// DataType is the semantic type of a schema field or mapped column.
type DataType string

const (
	TypeString     DataType = "string"
	TypeNumber     DataType = "number"
	TypeBoolean    DataType = "boolean"
	TypeArray      DataType = "array"
	TypeObject     DataType = "object"
	TypeLocationID DataType = "location_id"
	TypeCoordinate DataType = "coordinate"
)

// KeepsText reports whether cells of this type must not be coerced to numbers
// or booleans during parsing.
func (d DataType) KeepsText() bool {
	return d == TypeString || d == TypeLocationID
}

// Rule selects an extra semantic check applied to a field after parsing.
type Rule string

const (
	RuleNone        Rule = ""
	RuleQuantity    Rule = "quantity"     // flat numeric array (capacity, delivery, pickup)
	RuleTimeWindows Rule = "time_windows" // list of [start, end] pairs
	RulePriority    Rule = "priority"     // number in [0, 100]
)

// Axis identifies which half of a coordinate a field holds.
type Axis int

const (
	AxisNone Axis = iota
	AxisLat
	AxisLon
)

// Field is one canonical column of a table.
type Field struct {
	Name     string   `yaml:"name"`
	Type     DataType `yaml:"type"`
	Required bool     `yaml:"required,omitempty"`
	Rule     Rule     `yaml:"rule,omitempty"`
}

// Axis derives the coordinate axis from the field name for coordinate fields.
func (f Field) Axis() Axis {
	if f.Type != TypeCoordinate {
		return AxisNone
	}

	return HeaderAxis(f.Name)
}

// TimeWindowPair names the start and end columns of a flat time window.
type TimeWindowPair struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Table is the schema of one table type.
type Table struct {
	Type   TableType `yaml:"type"`
	Fields []Field   `yaml:"fields"`
	// LocationRefs are the location-id fields of this table, default first.
	LocationRefs []string         `yaml:"location_refs,omitempty"`
	TimeWindows  []TimeWindowPair `yaml:"time_windows,omitempty"`
}

// Field returns the field with the given exact name.
func (t *Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// FieldNames returns the field names in schema order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}

	return names
}

// IsLocationRef reports whether name is one of the table's location-id fields.
func (t *Table) IsLocationRef(name string) bool {
	for _, ref := range t.LocationRefs {
		if ref == name {
			return true
		}
	}

	return false
}

// DefaultLocationRef is the location-id field used when a row does not say
// which location variant it carries.
func (t *Table) DefaultLocationRef() string {
	if len(t.LocationRefs) == 0 {
		return "locationId"
	}

	return t.LocationRefs[0]
}
