package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Report holds all issues collected from one run.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Issue is a single problem tied to a row and optionally a column.
type Issue struct {
	// Severity of the issue.
	Severity Severity `json:"severity"`
	// Row is the 1-based data row number; 0 means the whole file.
	Row int `json:"row"`
	// Column is the header the issue relates to (if any).
	Column string `json:"column,omitempty"`
	// Code is a stable identifier for this kind of issue.
	Code string `json:"code"`
	// Message is the human-readable description.
	Message string `json:"message"`
	// Value is the offending raw value (if any).
	Value any `json:"value,omitempty"`
}

// Severity represents the severity level of an issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name written by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}

	return nil
}

// Issue codes.
const (
	CodeFileEmpty        = "file_empty"
	CodeFileTooLarge     = "file_too_large"
	CodeFileType         = "file_type"
	CodeUnknownTable     = "unknown_table"
	CodeEncoding         = "encoding"
	CodeMalformedRow     = "malformed_row"
	CodeEmptyRow         = "empty_row"
	CodeExtraColumns     = "extra_columns"
	CodeMissingHeader    = "missing_header"
	CodeDuplicateHeader  = "duplicate_header"
	CodeCoordinateRange  = "coordinate_out_of_range"
	CodeCoordinateType   = "coordinate_not_numeric"
	CodeInvalidArray     = "invalid_array"
	CodeTimeWindowType   = "time_window_not_numeric"
	CodeTimeWindowOrder  = "time_window_order"
	CodeRequiredField    = "required_field"
	CodePriorityRange    = "priority_out_of_range"
	CodePriorityType     = "priority_not_numeric"
	CodeDuplicateHint    = "possible_duplicate_location"
	CodeUnresolvedCreate = "unresolved_new_location"
	CodeManualSelect     = "manual_selection_required"
	CodeDuplicateRecord  = "duplicate_location_record"
)

// AddError adds an error issue.
func (r *Report) AddError(row int, column, code, message string, value any) {
	r.Errors = append(r.Errors, Issue{
		Severity: SeverityError,
		Row:      row,
		Column:   column,
		Code:     code,
		Message:  message,
		Value:    value,
	})
}

// AddWarning adds a warning issue.
func (r *Report) AddWarning(row int, column, code, message string, value any) {
	r.Warnings = append(r.Warnings, Issue{
		Severity: SeverityWarning,
		Row:      row,
		Column:   column,
		Code:     code,
		Message:  message,
		Value:    value,
	})
}

// HasErrors returns true if there are any error issues.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Merge merges another Report into this one.
func (r *Report) Merge(other Report) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// RowsWithErrors returns the set of row numbers that carry at least one error.
func (r *Report) RowsWithErrors() map[int]struct{} {
	rows := make(map[int]struct{}, len(r.Errors))
	for _, e := range r.Errors {
		rows[e.Row] = struct{}{}
	}

	return rows
}

// FileLevel reports whether any error applies to the whole file.
func (r *Report) FileLevel() bool {
	for _, e := range r.Errors {
		if e.Row == 0 {
			return true
		}
	}

	return false
}

// Err returns a combined error from all error issues, or nil if there are none.
func (r *Report) Err() error {
	if !r.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted issue string.
func (i Issue) String() string {
	var prefix []string
	if i.Row > 0 {
		prefix = append(prefix, fmt.Sprintf("row %d", i.Row))
	} else {
		prefix = append(prefix, "file")
	}

	if i.Column != "" {
		prefix = append(prefix, i.Column)
	}

	msg := i.Message
	if i.Code != "" {
		msg = fmt.Sprintf("[%s] %s", i.Code, msg)
	}

	return strings.Join(prefix, " ") + ": " + msg
}
