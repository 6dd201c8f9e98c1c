package columnmap

import (
	"fmt"

	"vrp-import/internal/match"
	"vrp-import/internal/schema"
)

// Mapping is the inferred mapping of one source column.
type Mapping struct {
	SourceColumn               string          `json:"sourceColumn"`
	TargetField                string          `json:"targetField"`
	Confidence                 float64         `json:"confidence"`
	DataType                   schema.DataType `json:"dataType"`
	IsRequired                 bool            `json:"isRequired"`
	IsLocationReference        bool            `json:"isLocationReference"`
	RequiresLocationResolution bool            `json:"requiresLocationResolution"`
	// Exact is set when the header normalizes to the field name.
	Exact bool `json:"exact,omitempty"`
	// Ambiguous is set when the runner-up field scored within the
	// ambiguity margin of the chosen one.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Mapped reports whether the column was matched to a schema field.
func (m Mapping) Mapped() bool {
	return m.Confidence > 0
}

// Options configures header matching.
type Options struct {
	// FuzzyThreshold is the similarity a fuzzy match must exceed (default 0.6).
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
	// AmbiguityMargin flags fuzzy matches whose runner-up is this close (default 0.05).
	AmbiguityMargin float64 `yaml:"ambiguity_margin"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold:  match.DefaultFuzzyThreshold,
		AmbiguityMargin: 0.05,
	}
}

// Mapper maps headers onto the schemas of a registry. It holds no state
// besides its configuration and is safe for concurrent use.
type Mapper struct {
	registry schema.Registry
	opts     Options
}

// NewMapper creates a mapper over the given registry.
func NewMapper(registry schema.Registry, opts Options) *Mapper {
	return &Mapper{registry: registry, opts: opts}
}

// Registry returns the registry the mapper was built with.
func (m *Mapper) Registry() schema.Registry {
	return m.registry
}

// MapColumns returns one mapping per header, in header order.
func (m *Mapper) MapColumns(headers []string, table schema.TableType) ([]Mapping, error) {
	tbl, err := m.registry.Table(table)
	if err != nil {
		return nil, err
	}

	names := tbl.FieldNames()
	mappings := make([]Mapping, 0, len(headers))

	for _, header := range headers {
		mappings = append(mappings, m.mapHeader(header, tbl, names))
	}

	return mappings, nil
}

// Suggest returns the n best ranked schema fields for header.
func (m *Mapper) Suggest(header string, table schema.TableType, n int) (match.CandidateList, error) {
	tbl, err := m.registry.Table(table)
	if err != nil {
		return nil, err
	}

	return match.Rank(header, tbl.FieldNames()).Top(n), nil
}

func (m *Mapper) mapHeader(header string, tbl *schema.Table, names []string) Mapping {
	resolution := schema.IsCoordinateHeader(header) || schema.IsAddressHeader(header)

	mapping := Mapping{
		SourceColumn:               header,
		TargetField:                header,
		DataType:                   schema.TypeString,
		RequiresLocationResolution: resolution,
	}

	if resolution && schema.IsCoordinateHeader(header) {
		mapping.DataType = schema.TypeCoordinate
	}

	candidates := match.Rank(header, names)

	best := candidates.Best()
	if best != nil && (best.Exact() || best.Score > m.opts.FuzzyThreshold) {
		field := tbl.Fields[best.Index]

		mapping.TargetField = field.Name
		mapping.DataType = field.Type
		mapping.IsRequired = field.Required

		mapping.Confidence = best.Score
		mapping.Exact = best.Exact()

		if !mapping.Exact {
			mapping.Ambiguous = candidates.IsAmbiguous(m.opts.AmbiguityMargin)
		}
	}

	mapping.IsLocationReference = tbl.IsLocationRef(mapping.TargetField) ||
		(tbl.Type != schema.Locations && schema.IsLocationIDHeader(header))

	return mapping
}

// String renders a mapping for logs and CLI output.
func (m Mapping) String() string {
	if !m.Mapped() {
		return fmt.Sprintf("%s -> (unmapped)", m.SourceColumn)
	}

	return fmt.Sprintf("%s -> %s (%.2f)", m.SourceColumn, m.TargetField, m.Confidence)
}
