package csvparse

import (
	"fmt"

	"vrp-import/internal/diagnostic"
	"vrp-import/internal/geo"
	"vrp-import/internal/match"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

// Priority bounds; values outside only warn.
const (
	MinPriority = 0
	MaxPriority = 100
)

// validateRows applies the table-specific semantic checks to every parsed
// row, rewriting cells to their coerced form where a check normalizes them.
func validateRows(res *Result, tbl *schema.Table) {
	if len(res.Headers) == 0 {
		return
	}

	cols := resolveColumns(tbl, res.Headers)

	for i, row := range res.Data {
		validateRow(res, tbl, cols, res.RowNumber(i), row)
	}
}

func validateRow(res *Result, tbl *schema.Table, cols columns, rowNumber int, row record.Row) {
	for i, h := range cols.headers {
		v := row.Get(h)
		if v.IsNull() {
			continue
		}

		field := cols.fields[i]

		axis := schema.HeaderAxis(h)
		if field != nil {
			axis = field.Axis()
		}

		if axis != schema.AxisNone {
			checkCoordinate(res, rowNumber, h, axis, row)
			continue
		}

		if field == nil {
			continue
		}

		switch field.Rule {
		case schema.RuleQuantity:
			checkQuantity(res, rowNumber, h, row)
		case schema.RuleTimeWindows:
			checkTimeWindows(res, rowNumber, h, row)
		case schema.RulePriority:
			checkPriority(res, rowNumber, h, row)
		}
	}

	for _, tw := range tbl.TimeWindows {
		checkTimeWindowPair(res, rowNumber, cols.byField[tw.Start], cols.byField[tw.End], row)
	}

	for _, f := range tbl.Fields {
		if !f.Required {
			continue
		}

		h, ok := cols.byField[f.Name]
		if !ok {
			res.AddError(rowNumber, f.Name, diagnostic.CodeRequiredField,
				fmt.Sprintf("%s is required for %s", f.Name, tbl.Type), nil)

			continue
		}

		if text := row.Get(h).Text(); text == "" {
			res.AddError(rowNumber, h, diagnostic.CodeRequiredField,
				fmt.Sprintf("%s is required for %s", f.Name, tbl.Type), nil)
		}
	}
}

func checkCoordinate(res *Result, rowNumber int, h string, axis schema.Axis, row record.Row) {
	v := row.Get(h)

	n, ok := v.AsNumber()
	if !ok {
		res.AddError(rowNumber, h, diagnostic.CodeCoordinateType,
			fmt.Sprintf("%s must be a number", h), v.Interface())

		return
	}

	row[h] = record.Number(n)

	switch axis {
	case schema.AxisLat:
		if !geo.ValidLat(n) {
			res.AddError(rowNumber, h, diagnostic.CodeCoordinateRange,
				fmt.Sprintf("latitude must be between %g and %g", geo.MinLat, geo.MaxLat), n)
		}
	case schema.AxisLon:
		if !geo.ValidLon(n) {
			res.AddError(rowNumber, h, diagnostic.CodeCoordinateRange,
				fmt.Sprintf("longitude must be between %g and %g", geo.MinLon, geo.MaxLon), n)
		}
	}
}

// checkQuantity requires a flat array of numbers. Strings get a second chance
// through the lenient list parser; a bare number becomes a one-element array.
func checkQuantity(res *Result, rowNumber int, h string, row record.Row) {
	v := row.Get(h)

	switch v.Kind() {
	case record.KindArray:
		if _, ok := v.NumberSlice(); ok {
			return
		}
	case record.KindNumber:
		n, _ := v.Num()
		row[h] = record.Numbers(n)

		return
	case record.KindString:
		s, _ := v.Str()
		if ns, ok := parseNumberList(s); ok {
			row[h] = record.Numbers(ns...)
			return
		}
	}

	res.AddError(rowNumber, h, diagnostic.CodeInvalidArray,
		fmt.Sprintf("%s must be an array of numbers, e.g. [1000,50,20]", h), v.Interface())
}

// checkTimeWindows requires a list of [start, end] pairs; a single flat pair
// is accepted and wrapped.
func checkTimeWindows(res *Result, rowNumber int, h string, row record.Row) {
	v := row.Get(h)

	elems, ok := v.Elems()
	if !ok {
		res.AddError(rowNumber, h, diagnostic.CodeTimeWindowType,
			fmt.Sprintf("%s must be a list of [start, end] pairs", h), v.Interface())

		return
	}

	if len(elems) == 2 && elems[0].Kind() != record.KindArray && elems[1].Kind() != record.KindArray {
		elems = []record.Value{v}
	}

	windows := make([]record.Value, 0, len(elems))

	for _, e := range elems {
		pair, ok := e.Elems()
		if !ok || len(pair) != 2 {
			res.AddError(rowNumber, h, diagnostic.CodeTimeWindowType,
				fmt.Sprintf("%s must be a list of [start, end] pairs", h), v.Interface())

			return
		}

		start, okStart := pair[0].AsNumber()
		end, okEnd := pair[1].AsNumber()

		if !okStart || !okEnd {
			res.AddError(rowNumber, h, diagnostic.CodeTimeWindowType,
				fmt.Sprintf("%s time window values must be numbers", h), e.Interface())

			return
		}

		if start >= end {
			res.AddWarning(rowNumber, h, diagnostic.CodeTimeWindowOrder,
				fmt.Sprintf("%s time window start %g is not before end %g", h, start, end), e.Interface())
		}

		windows = append(windows, record.Numbers(start, end))
	}

	row[h] = record.Array(windows...)
}

func checkTimeWindowPair(res *Result, rowNumber int, startCol, endCol string, row record.Row) {
	start, okStart := timeValue(res, rowNumber, startCol, row)
	end, okEnd := timeValue(res, rowNumber, endCol, row)

	if okStart && okEnd && start >= end {
		res.AddWarning(rowNumber, startCol, diagnostic.CodeTimeWindowOrder,
			fmt.Sprintf("%s %g is not before %s %g", startCol, start, endCol, end), []float64{start, end})
	}
}

func timeValue(res *Result, rowNumber int, col string, row record.Row) (float64, bool) {
	if col == "" || !row.Has(col) {
		return 0, false
	}

	v := row.Get(col)

	n, ok := v.AsNumber()
	if !ok {
		res.AddError(rowNumber, col, diagnostic.CodeTimeWindowType,
			fmt.Sprintf("%s must be a number", col), v.Interface())

		return 0, false
	}

	row[col] = record.Number(n)

	return n, true
}

func checkPriority(res *Result, rowNumber int, h string, row record.Row) {
	v := row.Get(h)

	n, ok := v.AsNumber()
	if !ok {
		res.AddError(rowNumber, h, diagnostic.CodePriorityType,
			fmt.Sprintf("%s must be a number", h), v.Interface())

		return
	}

	row[h] = record.Number(n)

	if n < MinPriority || n > MaxPriority {
		res.AddWarning(rowNumber, h, diagnostic.CodePriorityRange,
			fmt.Sprintf("%s %g is outside %d-%d", h, n, MinPriority, MaxPriority), n)
	}
}

// headerFor returns the header carrying field name, matched by normalized
// name.
func headerFor(headers []string, name string) (string, bool) {
	norm := match.NormalizeIdent(name)
	for _, h := range headers {
		if match.NormalizeIdent(h) == norm {
			return h, true
		}
	}

	return "", false
}
