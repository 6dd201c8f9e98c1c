package csvparse

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"vrp-import/internal/columnmap"
	"vrp-import/internal/diagnostic"
	"vrp-import/internal/match"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

// Parser parses CSV files against the tables of a registry. It holds no
// per-file state and may be shared.
type Parser struct {
	registry schema.Registry
}

// NewParser creates a parser over registry.
func NewParser(registry schema.Registry) *Parser {
	return &Parser{registry: registry}
}

// columns resolves each header to its schema field, if any.
type columns struct {
	headers []string
	fields  []*schema.Field
	// byField maps schema field names to the header carrying them.
	byField map[string]string
}

func resolveColumns(tbl *schema.Table, headers []string) columns {
	byNorm := make(map[string]*schema.Field, len(tbl.Fields))
	for i := range tbl.Fields {
		byNorm[match.NormalizeIdent(tbl.Fields[i].Name)] = &tbl.Fields[i]
	}

	cols := columns{
		headers: headers,
		fields:  make([]*schema.Field, len(headers)),
		byField: make(map[string]string, len(headers)),
	}

	for i, h := range headers {
		f, ok := byNorm[match.NormalizeIdent(h)]
		if !ok {
			continue
		}

		cols.fields[i] = f
		if _, dup := cols.byField[f.Name]; !dup {
			cols.byField[f.Name] = h
		}
	}

	return cols
}

// Parse parses data as a CSV file destined for table. It never returns nil
// and never fails: every problem is reported in the result's issues.
func (p *Parser) Parse(data []byte, table schema.TableType, opts Options) *Result {
	res := newResult(len(data))

	tbl, err := p.registry.Table(table)
	if err != nil {
		res.AddError(0, "", diagnostic.CodeUnknownTable, err.Error(), string(table))
		return res
	}

	if len(data) == 0 {
		res.AddError(0, "", diagnostic.CodeFileEmpty, "file is empty", nil)
		return res
	}

	if int64(len(data)) > opts.MaxBytes() {
		res.AddError(0, "", diagnostic.CodeFileTooLarge,
			fmt.Sprintf("file size %d bytes exceeds the limit of %s", len(data), formatLimit(opts.MaxBytes())), len(data))

		return res
	}

	if !validDelimiter(opts.delimiter()) {
		res.AddError(0, "", diagnostic.CodeMalformedRow,
			fmt.Sprintf("invalid delimiter %q", opts.delimiter()), string(opts.delimiter()))

		return res
	}

	dec, err := decode(data, opts.Encoding)
	if err != nil {
		res.AddError(0, "", diagnostic.CodeEncoding, err.Error(), opts.Encoding)
		return res
	}

	res.Meta.Encoding = dec.encoding
	if dec.guessed {
		res.AddWarning(0, "", diagnostic.CodeEncoding,
			"file is not valid UTF-8; decoded as "+dec.encoding, nil)
	}

	reader := csv.NewReader(bytes.NewReader(dec.text))
	reader.Comma = opts.delimiter()
	reader.FieldsPerRecord = -1

	p.parseRecords(reader, tbl, opts, res)

	validateRows(res, tbl)

	if opts.DuplicateHintPrecision > 0 {
		duplicateHints(res, tbl, opts.DuplicateHintPrecision)
	}

	res.Meta.RowCount = len(res.Data)
	res.Meta.ColumnCount = len(res.Headers)

	if opts.AnalyzeLocations {
		analysis := columnmap.Analyze(res.Headers, res.Data)
		res.LocationAnalysis = &analysis
	}

	return res
}

// ParseFile runs ValidateFile on an upload and parses it when it passes.
func (p *Parser) ParseFile(name, contentType string, data []byte, table schema.TableType, opts Options) *Result {
	if issue := ValidateFile(name, contentType, int64(len(data)), opts.MaxBytes()); issue != nil {
		res := newResult(len(data))
		res.Errors = append(res.Errors, *issue)

		return res
	}

	return p.Parse(data, table, opts)
}

func (p *Parser) parseRecords(reader *csv.Reader, tbl *schema.Table, opts Options, res *Result) {
	var (
		cols      columns
		haveCols  bool
		rowNumber int
	)

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				res.AddError(0, "", diagnostic.CodeFileEmpty, "file has no header row", nil)
			} else {
				res.AddError(0, "", diagnostic.CodeMalformedRow, "malformed header row: "+err.Error(), nil)
			}

			return
		}

		cols = resolveColumns(tbl, cleanHeaders(header, res))
		haveCols = true
	}

	for {
		offset := reader.InputOffset()

		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		rowNumber++

		if err != nil {
			res.AddError(rowNumber, "", diagnostic.CodeMalformedRow, err.Error(), nil)

			if reader.InputOffset() == offset {
				// No progress; the rest of the input cannot be read.
				break
			}

			continue
		}

		if !haveCols {
			cols = resolveColumns(tbl, syntheticHeaders(len(rec)))
			haveCols = true
		}

		row := buildRow(rec, cols, rowNumber, res)

		if opts.SkipEmptyLines && row.IsEmpty() {
			res.AddWarning(rowNumber, "", diagnostic.CodeEmptyRow, "empty row skipped", nil)
			continue
		}

		res.Data = append(res.Data, row)
		res.rowNumbers = append(res.rowNumbers, rowNumber)
	}

	if haveCols {
		res.Headers = cols.headers
	}
}

func buildRow(rec []string, cols columns, rowNumber int, res *Result) record.Row {
	row := make(record.Row, len(cols.headers))

	for i, h := range cols.headers {
		if i >= len(rec) {
			row[h] = record.Null()
			continue
		}

		keepText := cols.fields[i] != nil && cols.fields[i].Type.KeepsText()
		row[h] = coerceCell(rec[i], keepText)
	}

	if len(rec) > len(cols.headers) {
		extra := rec[len(cols.headers):]
		if strings.TrimSpace(strings.Join(extra, "")) != "" {
			res.AddWarning(rowNumber, "", diagnostic.CodeExtraColumns,
				fmt.Sprintf("row has %d value(s) beyond the %d header columns; they were ignored", len(extra), len(cols.headers)),
				extra)
		}
	}

	return row
}

// cleanHeaders trims header names, names blank headers and disambiguates
// duplicates so that every row can carry the full key set.
func cleanHeaders(raw []string, res *Result) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column%d", i+1)
			res.AddWarning(0, h, diagnostic.CodeMissingHeader,
				fmt.Sprintf("header %d is blank; using %q", i+1, h), nil)
		}

		if n := seen[h]; n > 0 {
			renamed := fmt.Sprintf("%s_%d", h, n+1)
			res.AddWarning(0, h, diagnostic.CodeDuplicateHeader,
				fmt.Sprintf("duplicate header %q renamed to %q", h, renamed), nil)
			seen[h]++
			h = renamed
		}

		seen[h]++
		headers[i] = h
	}

	return headers
}

func syntheticHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("column%d", i+1)
	}

	return headers
}

func validDelimiter(r rune) bool {
	return r != '"' && r != '\r' && r != '\n' && r != 0xFFFD
}
