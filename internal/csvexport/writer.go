package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

// Write writes a header row and one line per row. Null cells are empty;
// arrays and objects are written as compact JSON.
func Write(w io.Writer, headers []string, rows []record.Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(headers))

	for i, row := range rows {
		for j, h := range headers {
			line[j] = row.Get(h).Text()
		}

		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// Headers returns the columns to export for rows: the table's fields that
// occur in any row, in schema order, followed by the other keys sorted.
func Headers(rows []record.Row, tbl *schema.Table) []string {
	present := make(map[string]struct{})

	for _, row := range rows {
		for k := range row {
			present[k] = struct{}{}
		}
	}

	headers := make([]string, 0, len(present))

	for _, name := range tbl.FieldNames() {
		if _, ok := present[name]; ok {
			headers = append(headers, name)
			delete(present, name)
		}
	}

	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}

	sort.Strings(rest)

	return append(headers, rest...)
}
