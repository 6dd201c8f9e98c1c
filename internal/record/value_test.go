package record

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Kinds(t *testing.T) {
	assert.True(t, Value{}.IsNull())
	assert.Equal(t, KindNull, Null().Kind())

	s, ok := String("a").Str()
	assert.True(t, ok)
	assert.Equal(t, "a", s)

	n, ok := Number(1.5).Num()
	assert.True(t, ok)
	assert.Equal(t, 1.5, n)

	b, ok := Bool(true).Boolean()
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = String("1").Num()
	assert.False(t, ok)

	elems, ok := Array().Elems()
	assert.True(t, ok)
	assert.Empty(t, elems)
}

func TestValue_AsNumber(t *testing.T) {
	tests := []struct {
		v      Value
		want   float64
		wantOK bool
	}{
		{Number(3), 3, true},
		{String("37.77"), 37.77, true},
		{String(" -122.41 "), -122.41, true},
		{String("1e3"), 1000, true},
		{String("abc"), 0, false},
		{String("0x1F"), 0, false},
		{String("Inf"), 0, false},
		{Bool(true), 0, false},
		{Null(), 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.v.AsNumber()
		assert.Equal(t, tt.wantOK, ok, tt.v.Text())
		if tt.wantOK {
			assert.InDelta(t, tt.want, got, 1e-9)
		}
	}
}

func TestValue_NumberSlice(t *testing.T) {
	got, ok := Numbers(1000, 50, 20).NumberSlice()
	require.True(t, ok)
	assert.Equal(t, []float64{1000, 50, 20}, got)

	_, ok = Array(Number(1), String("x")).NumberSlice()
	assert.False(t, ok)

	_, ok = Array(Numbers(1, 2)).NumberSlice()
	assert.False(t, ok)

	_, ok = Number(1).NumberSlice()
	assert.False(t, ok)
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "", Null().Text())
	assert.Equal(t, "x", String("x").Text())
	assert.Equal(t, "37.77", Number(37.77).Text())
	assert.Equal(t, "1000", Number(1000).Text())
	assert.Equal(t, "false", Bool(false).Text())
	assert.Equal(t, "[1000,50,20]", Numbers(1000, 50, 20).Text())
	assert.Equal(t, `{"a":1,"b":[true,null]}`,
		Object(map[string]Value{"b": Array(Bool(true), Null()), "a": Number(1)}).Text())
}

func TestValue_JSON(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"tw":[[0,3600]],"name":"A","ok":true,"x":null}`), &v))
	assert.Equal(t, KindObject, v.Kind())

	fields, _ := v.Fields()
	tw, ok := fields["tw"].Elems()
	require.True(t, ok)
	require.Len(t, tw, 1)
	pair, ok := tw[0].NumberSlice()
	require.True(t, ok)
	assert.Equal(t, []float64{0, 3600}, pair)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tw":[[0,3600]],"name":"A","ok":true,"x":null}`, string(data))

	data, err = json.Marshal(Number(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, Numbers(1, 2).Equal(Numbers(1, 2)))
	assert.False(t, Numbers(1, 2).Equal(Numbers(2, 1)))
	assert.False(t, String("1").Equal(Number(1)))
	assert.True(t, Object(map[string]Value{"a": Null()}).Equal(Object(map[string]Value{"a": Null()})))
	assert.False(t, Object(map[string]Value{"a": Null()}).Equal(Object(map[string]Value{"b": Null()})))
}

func TestFromInterface(t *testing.T) {
	assert.True(t, FromInterface(nil).IsNull())
	assert.True(t, FromInterface(2).Equal(Number(2)))
	assert.True(t, FromInterface(json.Number("4.5")).Equal(Number(4.5)))
	assert.True(t, FromInterface([]any{1.0, "a"}).Equal(Array(Number(1), String("a"))))
	assert.True(t, FromInterface(String("s")).Equal(String("s")))
}

func TestRow(t *testing.T) {
	r := Row{"name": String("Warehouse A"), "lat": String("37.77"), "lon": Number(-122.41), "x": Null()}

	assert.True(t, r.Has("name"))
	assert.False(t, r.Has("x"))
	assert.False(t, r.Has("missing"))
	assert.True(t, r.Get("missing").IsNull())

	lat, ok := r.Number("lat")
	assert.True(t, ok)
	assert.Equal(t, 37.77, lat)

	text, ok := r.Text("lon")
	assert.True(t, ok)
	assert.Equal(t, "-122.41", text)

	_, ok = r.Text("x")
	assert.False(t, ok)

	assert.False(t, r.IsEmpty())
	assert.True(t, Row{"a": Null(), "b": Null()}.IsEmpty())

	c := r.Clone()
	c["name"] = String("other")
	assert.Equal(t, "Warehouse A", r.Get("name").Text())
	assert.False(t, r.Equal(c))
	assert.True(t, r.Equal(r.Clone()))
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "boolean", KindBool.String())
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
