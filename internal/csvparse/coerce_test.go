package csvparse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vrp-import/internal/record"
)

func TestCoerceCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		keepText bool
		want     record.Value
	}{
		{"  hello ", false, record.String("hello")},
		{"", false, record.Null()},
		{"   ", false, record.Null()},
		{"42", false, record.Number(42)},
		{"-1.5e3", false, record.Number(-1500)},
		{"TRUE", false, record.Bool(true)},
		{"false", false, record.Bool(false)},
		{"[1,2]", false, record.Numbers(1, 2)},
		{`{"a":1}`, false, record.Object(map[string]record.Value{"a": record.Number(1)})},
		{"[not json", false, record.String("[not json")},
		{"007", true, record.String("007")},
		{"true", true, record.String("true")},
		{"12 Main St", false, record.String("12 Main St")},
	}

	for _, tt := range tests {
		got := coerceCell(tt.raw, tt.keepText)
		assert.True(t, tt.want.Equal(got), "coerceCell(%q, %v) = %#v", tt.raw, tt.keepText, got.Interface())
	}
}

func TestParseNumberList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []float64
		ok   bool
	}{
		{"[1000 50 20]", []float64{1000, 50, 20}, true},
		{"[1000, 50, 20]", []float64{1000, 50, 20}, true},
		{"1000; 50; 20", []float64{1000, 50, 20}, true},
		{" [ 1.5 ] ", []float64{1.5}, true},
		{"[]", []float64{}, true},
		{"[1,2", nil, false},
		{"1,2]", nil, false},
		{"[abc]", nil, false},
		{"[1 two 3]", nil, false},
	}

	for _, tt := range tests {
		got, ok := parseNumberList(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)

		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
