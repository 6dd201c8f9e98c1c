package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is the tag of a Value.
type Kind uint8

const (
	KindNull   Kind = iota // null
	KindString             // string
	KindNumber             // number
	KindBool               // boolean
	KindArray              // array
	KindObject             // object
)

// Value is one coerced cell: a string, number, boolean, array, object or null.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a number value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Array returns an array value holding vs.
func Array(vs ...Value) Value {
	if vs == nil {
		vs = []Value{}
	}

	return Value{kind: KindArray, arr: vs}
}

// Numbers returns an array value of numbers.
func Numbers(ns ...float64) Value {
	vs := make([]Value, len(ns))
	for i, n := range ns {
		vs[i] = Number(n)
	}

	return Array(vs...)
}

// Object returns an object value holding m.
func Object(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}

	return Value{kind: KindObject, obj: m}
}

// Kind returns the tag of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string held by v.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Num returns the number held by v.
func (v Value) Num() (float64, bool) { return v.num, v.kind == KindNumber }

// Boolean returns the boolean held by v.
func (v Value) Boolean() (bool, bool) { return v.b, v.kind == KindBool }

// Elems returns the elements of an array value.
func (v Value) Elems() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Fields returns the members of an object value.
func (v Value) Fields() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// AsNumber returns v as a number, accepting numeric strings.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseNumber(v.str)
	default:
		return 0, false
	}
}

// NumberSlice returns the elements of a flat array of numbers.
func (v Value) NumberSlice() ([]float64, bool) {
	if v.kind != KindArray {
		return nil, false
	}

	out := make([]float64, len(v.arr))
	for i, e := range v.arr {
		n, ok := e.Num()
		if !ok {
			return nil, false
		}

		out[i] = n
	}

	return out, true
}

// Text renders v the way it is written into a CSV cell: null is empty,
// arrays and objects are compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(data)
	}
}

// Interface converts v into plain Go values (nil, string, float64, bool,
// []any, map[string]any).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}

		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}

		return out
	default:
		return nil
	}
}

// FromInterface converts decoded JSON (or any of the types Interface returns)
// into a Value. Unsupported types become their fmt representation.
func FromInterface(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return String(t.String())
		}

		return Number(n)
	case bool:
		return Bool(t)
	case []any:
		vs := make([]Value, len(t))
		for i, e := range t {
			vs[i] = FromInterface(e)
		}

		return Array(vs...)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = FromInterface(e)
		}

		return Object(m)
	case Value:
		return t
	default:
		return String(fmt.Sprint(t))
	}
}

// Equal reports whether two values hold the same data.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}

		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}

		for k, e := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}

		return true
	}

	return false
}

// MarshalJSON encodes v as its natural JSON value.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}

		return []byte(formatNumber(v.num)), nil
	case KindObject:
		// Sorted keys keep output byte-stable.
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		var buf bytes.Buffer

		buf.WriteByte('{')

		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}

			eb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(kb)
			buf.WriteByte(':')
			buf.Write(eb)
		}

		buf.WriteByte('}')

		return buf.Bytes(), nil
	case KindArray:
		var buf bytes.Buffer

		buf.WriteByte('[')

		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}

			eb, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}

			buf.Write(eb)
		}

		buf.WriteByte(']')

		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Interface())
	}
}

// UnmarshalJSON decodes any JSON value into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}

	*v = FromInterface(x)

	return nil
}

// ParseNumber parses a decimal number literal. Hex, infinities and NaN are
// rejected so that identifiers such as "0x1F" or "Inf" stay text.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' && r != '-' && r != '+' && r != 'e' && r != 'E' {
			return 0, false
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
