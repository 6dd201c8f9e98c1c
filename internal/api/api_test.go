package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrp-import/internal/location"
	"vrp-import/internal/pipeline"
	"vrp-import/internal/store"
	"vrp-import/internal/transform"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func f(v float64) *float64 { return &v }

func newTestRouter(st store.LocationStore) *gin.Engine {
	if st == nil {
		st = store.NewMemoryStore(
			location.Existing{ID: "loc-1", Name: "Main Depot", Address: "1 Main St", Lat: f(37.7749), Lon: f(-122.4194)},
			location.Existing{ID: "loc-2", Name: "Harbor", Lat: f(50), Lon: f(50)},
		)
	}

	im := pipeline.New(st, pipeline.DefaultOptions())

	return NewRouter(im, Options{Export: transform.DefaultExportOptions()})
}

func multipartRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

const jobsCSV = "id,description,locationLat,locationLon\nj1,Main Depot,37.7749,-122.4194\nj2,Harbour,10,10\nj3,Nowhere,20,20\n"

func TestHealth(t *testing.T) {
	t.Parallel()

	w := serve(newTestRouter(nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUnknownTable(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)

	requests := []*http.Request{
		multipartRequest(t, "/api/v1/imports/trucks/plan", "a.csv", "id\n", nil),
		multipartRequest(t, "/api/v1/imports/trucks", "a.csv", "id\n", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/columns/trucks/map", strings.NewReader(`{"headers":["id"]}`)),
		httptest.NewRequest(http.MethodGet, "/api/v1/templates/trucks", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/exports/trucks", strings.NewReader("id\n")),
	}

	for _, req := range requests {
		w := serve(router, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, req.URL.Path)

		body := decode[APIError](t, w)
		assert.Equal(t, CodeUnknownTable, body.Code)
		assert.Contains(t, body.Error, "unknown table type")
	}
}

func TestPlanImport(t *testing.T) {
	t.Parallel()

	w := serve(newTestRouter(nil), multipartRequest(t, "/api/v1/imports/JOBS/plan", "jobs.csv", jobsCSV, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Table       string                `json:"table"`
		Summary     pipeline.Summary      `json:"summary"`
		Resolutions []location.Resolution `json:"resolutions"`
		Parse       struct {
			Headers []string `json:"headers"`
			Errors  []any    `json:"errors"`
		} `json:"parse"`
	}](t, w)

	assert.Equal(t, "jobs", body.Table)
	assert.Equal(t, pipeline.Summary{Rows: 3, ValidRows: 3, UseExisting: 1, ManualSelect: 1, CreateNew: 1}, body.Summary)
	require.Len(t, body.Resolutions, 3)
	assert.Equal(t, location.ManualSelect, body.Resolutions[1].Resolution)
	assert.NotEmpty(t, body.Resolutions[1].Matches)
	assert.Equal(t, []string{"id", "description", "locationLat", "locationLon"}, body.Parse.Headers)
	assert.Empty(t, body.Parse.Errors)
}

func TestPlanImport_Rejected(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)

	w := serve(router, multipartRequest(t, "/api/v1/imports/jobs/plan", "jobs.xlsx", "id\nj1\n", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"file_type"`)

	w = serve(router, multipartRequest(t, "/api/v1/imports/jobs/plan", "", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidRequest, decode[APIError](t, w).Code)
}

func TestCommitImport(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore(
		location.Existing{ID: "loc-1", Name: "Main Depot", Lat: f(37.7749), Lon: f(-122.4194)},
		location.Existing{ID: "loc-2", Name: "Harbor", Lat: f(50), Lon: f(50)},
	)
	router := newTestRouter(st)

	w := serve(router, multipartRequest(t, "/api/v1/imports/jobs", "jobs.csv", jobsCSV, map[string]string{
		"decisions": `{"1":{"resolution":"use_existing","selectedLocationId":"loc-2"}}`,
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Outcome struct {
			Rows    []map[string]any    `json:"rows"`
			Created []location.Existing `json:"created"`
			Summary pipeline.Summary    `json:"summary"`
		} `json:"outcome"`
	}](t, w)

	out := body.Outcome
	require.Len(t, out.Rows, 3)
	require.Len(t, out.Created, 1)
	assert.Equal(t, "loc-1", out.Rows[0]["locationId"])
	assert.Equal(t, "loc-2", out.Rows[1]["locationId"])
	assert.Equal(t, out.Created[0].ID, out.Rows[2]["locationId"])
	assert.Equal(t, "Nowhere", out.Created[0].Name)
	assert.Equal(t, 0, out.Summary.ManualSelect)

	all, err := st.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCommitImport_BadRequests(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)

	tests := []struct {
		name   string
		fields map[string]string
		status int
		code   string
	}{
		{"decisions not json", map[string]string{"decisions": "{"}, http.StatusBadRequest, CodeInvalidRequest},
		{"dry run not bool", map[string]string{"dryRun": "perhaps"}, http.StatusBadRequest, CodeInvalidRequest},
		{"unknown location", map[string]string{
			"decisions": `{"1":{"resolution":"use_existing","selectedLocationId":"loc-9"}}`,
		}, http.StatusBadRequest, CodeInvalidDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(router, multipartRequest(t, "/api/v1/imports/jobs", "jobs.csv", jobsCSV, tt.fields))
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[APIError](t, w).Code)
		})
	}

	w := serve(router, multipartRequest(t, "/api/v1/imports/jobs", "jobs.csv", "", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, CodeFileRejected, decode[APIError](t, w).Code)
}

func TestMapColumns(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/columns/vehicles/map",
		strings.NewReader(`{"headers":["vehicle_id","start_lat","colour"]}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[struct {
		Mappings []struct {
			SourceColumn string  `json:"sourceColumn"`
			TargetField  string  `json:"targetField"`
			Confidence   float64 `json:"confidence"`
		} `json:"mappings"`
	}](t, w)

	require.Len(t, body.Mappings, 3)
	assert.Equal(t, "startLat", body.Mappings[1].TargetField)
	assert.InDelta(t, 1.0, body.Mappings[1].Confidence, 1e-9)
	assert.Equal(t, "colour", body.Mappings[2].TargetField)
	assert.Zero(t, body.Mappings[2].Confidence)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/columns/vehicles/map", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, serve(router, req).Code)
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/templates/locations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, csvContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "locations_template.csv")
	assert.Equal(t, 1, strings.Count(w.Body.String(), "\n"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/templates/locations?sample=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), "\n"))

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/templates/locations?sample=lots", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	t.Parallel()

	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports/jobs?coordinates=false&addresses=false",
		strings.NewReader("id,locationId\nj1,loc-1\nj2,loc-404\n"))
	req.Header.Set("Content-Type", "text/csv")

	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "id,locationId,locationName\nj1,loc-1,Main Depot\nj2,loc-404,\n", w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/exports/jobs?legacyFlat=true&addresses=false&coordinates=false",
		strings.NewReader("id,locationId\nj1,loc-1\n"))
	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "id,locationName\nj1,Main Depot\n", w.Body.String())

	w = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/exports/jobs", strings.NewReader("")))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/exports/jobs?names=nope", strings.NewReader("id\n")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport_RouterDefaults(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore(location.Existing{ID: "loc-1", Name: "Main Depot", Address: "1 Main St", Lat: f(37.77), Lon: f(-122.41)})
	im := pipeline.New(st, pipeline.DefaultOptions())
	router := NewRouter(im, Options{Export: transform.ExportOptions{Names: true}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exports/jobs", strings.NewReader("id,locationId\nj1,loc-1\n"))
	req.Header.Set("Content-Type", "text/csv")

	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "id,locationId,locationName\nj1,loc-1,Main Depot\n", w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/exports/jobs?addresses=true", strings.NewReader("id,locationId\nj1,loc-1\n"))
	req.Header.Set("Content-Type", "text/csv")

	w = serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "id,locationId,locationAddress,locationName\nj1,loc-1,1 Main St,Main Depot\n", w.Body.String())
}
