package csvparse

import (
	"vrp-import/internal/columnmap"
	"vrp-import/internal/diagnostic"
	"vrp-import/internal/record"
)

// Meta describes the parsed file.
type Meta struct {
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
	Encoding    string `json:"encoding"`
	Size        int    `json:"size"`
}

// Result is the outcome of a Parse call. Errors and warnings are always
// present, even when the file parsed cleanly.
type Result struct {
	Data    []record.Row `json:"data"`
	Headers []string     `json:"headers"`
	diagnostic.Report
	Meta             Meta                        `json:"meta"`
	LocationAnalysis *columnmap.LocationAnalysis `json:"locationAnalysis,omitempty"`

	// rowNumbers[i] is the issue row number of Data[i].
	rowNumbers []int
}

func newResult(size int) *Result {
	return &Result{
		Data:    []record.Row{},
		Headers: []string{},
		Report: diagnostic.Report{
			Errors:   []diagnostic.Issue{},
			Warnings: []diagnostic.Issue{},
		},
		Meta: Meta{Encoding: EncodingUTF8, Size: size},
	}
}

// RowNumber returns the issue row number (1-based) of Data[i].
func (r *Result) RowNumber(i int) int {
	if i < 0 || i >= len(r.rowNumbers) {
		return i + 1
	}

	return r.rowNumbers[i]
}

// ErrorRows returns the indices into Data of rows with at least one error.
// A file-level error marks every row.
func (r *Result) ErrorRows() []int {
	bad := r.RowsWithErrors()
	_, fileLevel := bad[0]

	var out []int

	for i := range r.Data {
		if _, ok := bad[r.RowNumber(i)]; ok || fileLevel {
			out = append(out, i)
		}
	}

	return out
}

// ValidRows returns the rows without errors, preserving their Data indices
// in the returned slice of indices.
func (r *Result) ValidRows() ([]record.Row, []int) {
	bad := make(map[int]struct{})
	for _, i := range r.ErrorRows() {
		bad[i] = struct{}{}
	}

	rows := make([]record.Row, 0, len(r.Data))
	indices := make([]int, 0, len(r.Data))

	for i, row := range r.Data {
		if _, ok := bad[i]; ok {
			continue
		}

		rows = append(rows, row)
		indices = append(indices, i)
	}

	return rows, indices
}
