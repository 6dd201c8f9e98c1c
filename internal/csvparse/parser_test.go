package csvparse

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-import/internal/diagnostic"
	"vrp-import/internal/record"
	"vrp-import/internal/schema"
)

func parse(t *testing.T, data string, table schema.TableType) *Result {
	t.Helper()

	return NewParser(schema.Default()).Parse([]byte(data), table, DefaultOptions())
}

func codes(issues []diagnostic.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Code
	}

	return out
}

func findIssue(t *testing.T, issues []diagnostic.Issue, code string) diagnostic.Issue {
	t.Helper()

	for _, issue := range issues {
		if issue.Code == code {
			return issue
		}
	}

	t.Fatalf("no %s issue in %s", code, spew.Sdump(issues))

	return diagnostic.Issue{}
}

func TestParse_LocationsRow(t *testing.T) {
	t.Parallel()

	data := "name,address,locationLat,locationLon\n\"Warehouse A\",\"1 Main St\",37.77,-122.41\n"
	res := parse(t, data, schema.Locations)

	require.Empty(t, res.Errors, spew.Sdump(res.Errors))
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Data, 1)

	row := res.Data[0]

	lat, ok := row.Get("locationLat").Num()
	require.True(t, ok, "locationLat must be a number")
	assert.InDelta(t, 37.77, lat, 1e-12)

	name, ok := row.Get("name").Str()
	require.True(t, ok)
	assert.Equal(t, "Warehouse A", name)

	assert.Equal(t, []string{"name", "address", "locationLat", "locationLon"}, res.Headers)
	assert.Equal(t, Meta{RowCount: 1, ColumnCount: 4, Encoding: EncodingUTF8, Size: len(data)}, res.Meta)

	require.NotNil(t, res.LocationAnalysis)
	assert.True(t, res.LocationAnalysis.NeedsLocationResolution)
	assert.Equal(t, 1, res.LocationAnalysis.EstimatedLocationCount)
}

func TestParse_CapacityArrays(t *testing.T) {
	t.Parallel()

	data := "id,capacity\nv1,\"[1000,50,20]\"\nv2,[1000 50 20]\nv3,[abc]\nv4,500\n"
	res := parse(t, data, schema.Vehicles)
	require.Len(t, res.Data, 4)

	for i, want := range [][]float64{{1000, 50, 20}, {1000, 50, 20}, nil, {500}} {
		if want == nil {
			continue
		}

		got, ok := res.Data[i].Get("capacity").NumberSlice()
		require.True(t, ok, "row %d", i+1)
		assert.Equal(t, want, got, "row %d", i+1)
	}

	require.Len(t, res.Errors, 1, spew.Sdump(res.Errors))
	assert.Equal(t, diagnostic.CodeInvalidArray, res.Errors[0].Code)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, "capacity", res.Errors[0].Column)
	assert.Equal(t, "[abc]", res.Errors[0].Value)

	id, ok := res.Data[0].Get("id").Str()
	require.True(t, ok)
	assert.Equal(t, "v1", id)
}

func TestParse_CoordinateBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		table  schema.TableType
		data   string
		column string
	}{
		{"vehicle start lat", schema.Vehicles, "id,startLat,startLon\nv1,95,10\n", "startLat"},
		{"job lon", schema.Jobs, "id,locationLat,locationLon\nj1,10,200\n", "locationLon"},
		{"location lat", schema.Locations, "name,locationLat,locationLon\nA,-91,0\n", "locationLat"},
		{"route lat", schema.Routes, "vehicleId,locationLat,locationLon\nv1,100,0\n", "locationLat"},
		{"shipment delivery lon", schema.Shipments, "id,deliveryLat,deliveryLon\ns1,0,-181\n", "deliveryLon"},
		{"unknown latitude header", schema.Jobs, "id,latitude\nj1,95\n", "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := parse(t, tt.data, tt.table)
			require.Len(t, res.Errors, 1, spew.Sdump(res.Errors))
			assert.Equal(t, diagnostic.CodeCoordinateRange, res.Errors[0].Code)
			assert.Equal(t, tt.column, res.Errors[0].Column)
			assert.Equal(t, 1, res.Errors[0].Row)
			assert.Equal(t, []int{0}, res.ErrorRows())
		})
	}
}

func TestParse_CoordinateBoundsInclusive(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,locationLat,locationLon\nj1,90,-180\nj2,-90,180\n", schema.Jobs)
	assert.Empty(t, res.Errors)
}

func TestParse_CoordinateNotNumeric(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,locationLat,locationLon\nj1,north,10\n", schema.Jobs)
	issue := findIssue(t, res.Errors, diagnostic.CodeCoordinateType)
	assert.Equal(t, "locationLat", issue.Column)
	assert.Equal(t, "north", issue.Value)
}

func TestParse_FileLevelErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "", schema.Jobs)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, diagnostic.CodeFileEmpty, res.Errors[0].Code)
		assert.Equal(t, 0, res.Errors[0].Row)
		assert.NotNil(t, res.Data)
		assert.NotNil(t, res.Warnings)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.MaxFileSizeMB = 1.0 / 1024 / 1024 // one byte

		res := NewParser(schema.Default()).Parse([]byte("id\nj1\n"), schema.Jobs, opts)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, diagnostic.CodeFileTooLarge, res.Errors[0].Code)
		assert.Equal(t, 0, res.Errors[0].Row)
		assert.Empty(t, res.Data)
		assert.Equal(t, 6, res.Meta.Size)
	})

	t.Run("unknown table", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "id\n1\n", schema.TableType("trucks"))
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 0, res.Errors[0].Row)
		assert.Equal(t, diagnostic.CodeUnknownTable, res.Errors[0].Code)
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "id,description\n", schema.Jobs)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Data)
		assert.Equal(t, []string{"id", "description"}, res.Headers)
	})
}

func TestParse_EmptyRowsDropped(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,description\nv1,a\n,\nv2,b\n", schema.Vehicles)

	require.Len(t, res.Data, 2)
	assert.Equal(t, 1, res.RowNumber(0))
	assert.Equal(t, 3, res.RowNumber(1))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diagnostic.CodeEmptyRow, res.Warnings[0].Code)
	assert.Equal(t, 2, res.Warnings[0].Row)
	assert.Empty(t, res.Errors)
}

func TestParse_KeySetMatchesHeaders(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,description,profile\nv1\nv2,b,car,extra\nv3,c,bike,\n", schema.Vehicles)
	require.Len(t, res.Data, 3)

	for i, row := range res.Data {
		assert.Len(t, row, 3, "row %d", i+1)

		for _, h := range res.Headers {
			_, ok := row[h]
			assert.True(t, ok, "row %d missing %s", i+1, h)
		}
	}

	assert.True(t, res.Data[0].Get("profile").IsNull())

	// Only the non-blank extra cell warns.
	require.Len(t, res.Warnings, 1, spew.Sdump(res.Warnings))
	assert.Equal(t, diagnostic.CodeExtraColumns, res.Warnings[0].Code)
	assert.Equal(t, 2, res.Warnings[0].Row)
}

func TestParse_MalformedRowContinues(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,description\nv1,a\"b\nv2,c\n", schema.Vehicles)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.CodeMalformedRow, res.Errors[0].Code)
	assert.Equal(t, 1, res.Errors[0].Row)

	require.Len(t, res.Data, 1)
	assert.Equal(t, 2, res.RowNumber(0))
}

func TestParse_QuotedFields(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,description\nj1,\"Dock 4, \"\"north\"\" gate\"\n", schema.Jobs)
	require.Empty(t, res.Errors)
	require.Len(t, res.Data, 1)

	desc, _ := res.Data[0].Get("description").Str()
	assert.Equal(t, `Dock 4, "north" gate`, desc)
}

func TestParse_TimeWindows(t *testing.T) {
	t.Parallel()

	t.Run("pair list", func(t *testing.T) {
		t.Parallel()

		data := "id,timeWindows\nj1,\"[[0,3600],[7200,3600]]\"\nj2,\"[100,200]\"\nj3,abc\n"
		res := parse(t, data, schema.Jobs)

		require.Len(t, res.Warnings, 1, spew.Sdump(res.Warnings))
		assert.Equal(t, diagnostic.CodeTimeWindowOrder, res.Warnings[0].Code)
		assert.Equal(t, 1, res.Warnings[0].Row)

		require.Len(t, res.Errors, 1, spew.Sdump(res.Errors))
		assert.Equal(t, diagnostic.CodeTimeWindowType, res.Errors[0].Code)
		assert.Equal(t, 3, res.Errors[0].Row)

		want := record.Array(record.Numbers(100, 200))
		assert.True(t, want.Equal(res.Data[1].Get("timeWindows")), spew.Sdump(res.Data[1]))
	})

	t.Run("start end columns", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "id,twStart,twEnd\nv1,3600,0\nv2,x,10\nv3,0,100\n", schema.Vehicles)

		require.Len(t, res.Warnings, 1)
		assert.Equal(t, diagnostic.CodeTimeWindowOrder, res.Warnings[0].Code)
		assert.Equal(t, 1, res.Warnings[0].Row)

		require.Len(t, res.Errors, 1)
		assert.Equal(t, diagnostic.CodeTimeWindowType, res.Errors[0].Code)
		assert.Equal(t, "twStart", res.Errors[0].Column)
		assert.Equal(t, 2, res.Errors[0].Row)
	})

	t.Run("equal bounds warn", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "id,twStart,twEnd\nv1,10,10\n", schema.Vehicles)
		assert.Empty(t, res.Errors)
		assert.Equal(t, []string{diagnostic.CodeTimeWindowOrder}, codes(res.Warnings))
	})
}

func TestParse_Priority(t *testing.T) {
	t.Parallel()

	res := parse(t, "id,priority\nj1,150\nj2,high\nj3,50\nj4,-1\n", schema.Jobs)

	assert.Equal(t, []string{diagnostic.CodePriorityRange, diagnostic.CodePriorityRange}, codes(res.Warnings))
	assert.Equal(t, 1, res.Warnings[0].Row)
	assert.Equal(t, 4, res.Warnings[1].Row)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, diagnostic.CodePriorityType, res.Errors[0].Code)
	assert.Equal(t, 2, res.Errors[0].Row)

	rows, indices := res.ValidRows()
	assert.Len(t, rows, 3)
	assert.Equal(t, []int{0, 2, 3}, indices)
}

func TestParse_LocationsRequireName(t *testing.T) {
	t.Parallel()

	t.Run("missing column", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "id,address\nL1,1 Main St\nL2,2 Main St\n", schema.Locations)
		require.Len(t, res.Errors, 2)

		for i, e := range res.Errors {
			assert.Equal(t, diagnostic.CodeRequiredField, e.Code)
			assert.Equal(t, "name", e.Column)
			assert.Equal(t, i+1, e.Row)
		}
	})

	t.Run("blank value", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "name,address\n,1 Main St\nDepot,2 Main St\n", schema.Locations)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, diagnostic.CodeRequiredField, res.Errors[0].Code)
		assert.Equal(t, 1, res.Errors[0].Row)
	})

	t.Run("other tables do not require name", func(t *testing.T) {
		t.Parallel()

		res := parse(t, "id,address\nj1,1 Main St\n", schema.Jobs)
		assert.Empty(t, res.Errors)
	})
}

func TestParse_DuplicateHints(t *testing.T) {
	t.Parallel()

	data := "id,locationLat,locationLon\nj1,37.7749,-122.4194\nj2,37.77491,-122.41941\nj3,40.0,-74.0\n"

	res := parse(t, data, schema.Jobs)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diagnostic.CodeDuplicateHint, res.Warnings[0].Code)
	assert.Equal(t, 2, res.Warnings[0].Row)
	assert.Contains(t, res.Warnings[0].Message, "row 1")

	opts := DefaultOptions()
	opts.DuplicateHintPrecision = 0

	res = NewParser(schema.Default()).Parse([]byte(data), schema.Jobs, opts)
	assert.Empty(t, res.Warnings)
}

func TestParse_Headers(t *testing.T) {
	t.Parallel()

	t.Run("blank and duplicate", func(t *testing.T) {
		t.Parallel()

		res := parse(t, " id ,,id\n1,2,3\n", schema.Jobs)
		assert.Equal(t, []string{"id", "column2", "id_2"}, res.Headers)
		assert.Equal(t, []string{diagnostic.CodeMissingHeader, diagnostic.CodeDuplicateHeader}, codes(res.Warnings))
	})

	t.Run("no header row", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.HasHeader = false

		res := NewParser(schema.Default()).Parse([]byte("a,1\nb,2\n"), schema.Jobs, opts)
		assert.Equal(t, []string{"column1", "column2"}, res.Headers)
		assert.Len(t, res.Data, 2)
	})

	t.Run("custom delimiter", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.Delimiter = ';'

		res := NewParser(schema.Default()).Parse([]byte("id;capacity\nv1;[1,2]\n"), schema.Vehicles, opts)
		require.Empty(t, res.Errors)

		got, ok := res.Data[0].Get("capacity").NumberSlice()
		require.True(t, ok)
		assert.Equal(t, []float64{1, 2}, got)
	})

	t.Run("invalid delimiter", func(t *testing.T) {
		t.Parallel()

		opts := DefaultOptions()
		opts.Delimiter = '"'

		res := NewParser(schema.Default()).Parse([]byte("id\n1\n"), schema.Vehicles, opts)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, 0, res.Errors[0].Row)
	})
}

func TestParse_Idempotent(t *testing.T) {
	t.Parallel()

	data := []byte("id,locationLat,locationLon,delivery,timeWindows,priority\n" +
		"j1,37.7749,-122.4194,[10 20],\"[[0,10]]\",5\n" +
		"j2,37.77491,-122.41941,\"[1,2]\",\"[20,10]\",500\n" +
		",,,,,\n" +
		"j3,95,0,[x],bad,high\n")

	p := NewParser(schema.Default())
	first := p.Parse(data, schema.Jobs, DefaultOptions())
	second := p.Parse(data, schema.Jobs, DefaultOptions())

	opts := []cmp.Option{
		cmp.AllowUnexported(Result{}),
		cmp.Comparer(func(a, b record.Value) bool { return a.Equal(b) }),
	}

	if diff := cmp.Diff(first, second, opts...); diff != "" {
		t.Fatalf("parse is not deterministic (-first +second):\n%s", diff)
	}

	assert.NotEmpty(t, first.Errors)
	assert.NotEmpty(t, first.Warnings)
}
