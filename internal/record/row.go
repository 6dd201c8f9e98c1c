package record

// Row maps column names to coerced values. Rows produced by the parser carry
// exactly the header key set.
type Row map[string]Value

// Get returns the value for key, or null if absent.
func (r Row) Get(key string) Value {
	return r[key]
}

// Has reports whether key is present with a non-null value.
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && !v.IsNull()
}

// Text returns the non-blank text of key; numbers are formatted.
func (r Row) Text(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}

	switch v.Kind() {
	case KindString, KindNumber:
		s := v.Text()
		return s, s != ""
	default:
		return "", false
	}
}

// Number returns key as a number, accepting numeric strings.
func (r Row) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}

	return v.AsNumber()
}

// IsEmpty reports whether every value in the row is null.
func (r Row) IsEmpty() bool {
	for _, v := range r {
		if !v.IsNull() {
			return false
		}
	}

	return true
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}

	return out
}

// Equal reports whether both rows hold the same keys and values.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}

	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}

	return true
}
