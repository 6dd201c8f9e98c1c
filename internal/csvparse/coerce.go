package csvparse

import (
	"encoding/json"
	"strings"
	"unicode"

	"vrp-import/internal/record"
)

// coerceCell converts a raw CSV cell into a typed value. keepText disables
// number and boolean detection for text columns (ids, names, addresses).
func coerceCell(raw string, keepText bool) record.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return record.Null()
	}

	if s[0] == '[' || s[0] == '{' {
		var x any
		if err := json.Unmarshal([]byte(s), &x); err == nil {
			return record.FromInterface(x)
		}

		return record.String(s)
	}

	if keepText {
		return record.String(s)
	}

	if n, ok := record.ParseNumber(s); ok {
		return record.Number(n)
	}

	switch strings.ToLower(s) {
	case "true":
		return record.Bool(true)
	case "false":
		return record.Bool(false)
	}

	return record.String(s)
}

// parseNumberList is the lenient fallback for quantity arrays written without
// JSON commas, e.g. "[1000 50 20]" or "1000; 50; 20". Brackets are optional
// but must be balanced.
func parseNumberList(s string) ([]float64, bool) {
	s = strings.TrimSpace(s)

	open, closed := strings.HasPrefix(s, "["), strings.HasSuffix(s, "]")
	if open != closed {
		return nil, false
	}

	if open {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})

	out := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		n, ok := record.ParseNumber(tok)
		if !ok {
			return nil, false
		}

		out = append(out, n)
	}

	return out, true
}
