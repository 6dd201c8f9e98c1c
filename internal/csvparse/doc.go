// Package csvparse turns uploaded CSV bytes into typed rows.
//
// Parsing is best-effort: structural and validation problems are collected
// as diagnostic issues tied to a row number and never abort the remaining
// rows. File-level failures (empty, too large, wrong type) are reported as a
// single row-0 error and the result keeps its full shape.
//
// The pipeline for each file:
//  1. File checks (ValidateFile, size ceiling).
//  2. Charset decoding (UTF-8, BOM-marked UTF-16, legacy single-byte sets).
//  3. Structural parsing with encoding/csv.
//  4. Cell coercion (trim, null, JSON, numbers, booleans).
//  5. Table-specific semantic checks and duplicate-location hints.
package csvparse
