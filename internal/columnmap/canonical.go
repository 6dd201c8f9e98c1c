package columnmap

import (
	"slices"

	"vrp-import/internal/record"
)

// Canonicalize renames the keys of rows from exactly mapped columns to their
// schema field names, in place, and returns the renamed headers. mappings
// must be the result of MapColumns for headers. A field name already carried
// by another header is left to that header.
func Canonicalize(rows []record.Row, headers []string, mappings []Mapping) []string {
	taken := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		taken[h] = struct{}{}
	}

	renamed := slices.Clone(headers)

	for i, m := range mappings {
		if i >= len(headers) || headers[i] != m.SourceColumn {
			continue
		}

		if !m.Exact || m.SourceColumn == m.TargetField {
			continue
		}

		if _, dup := taken[m.TargetField]; dup {
			continue
		}

		taken[m.TargetField] = struct{}{}
		renamed[i] = m.TargetField

		for _, row := range rows {
			if v, ok := row[m.SourceColumn]; ok {
				delete(row, m.SourceColumn)
				row[m.TargetField] = v
			}
		}
	}

	return renamed
}
