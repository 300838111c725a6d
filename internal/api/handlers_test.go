package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techjobs/internal/engine"
)

const jobsCSV = `name,employer,location,position type,core competency
Junior Data Analyst,Lockerdome,Saint Louis,Data Scientist,Statistical Analysis
web developer,Cozy,Portland,Web - Front End,JavaScript
Ruby Developer,LaunchCode,Saint Louis,Web - Back End,Ruby
Data Engineer,Cozy,Kansas City,Data Scientist,Python
`

func newTestServer(t *testing.T, content string) (*echo.Echo, *engine.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job_data.csv")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	store := engine.NewStore(engine.NewCSVSource(path))
	return NewServer(NewHandler(store)), store
}

func do(t *testing.T, e *echo.Echo, target string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type page struct {
	Data   []map[string]string `json:"data"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func pageNames(p page) []string {
	out := []string{}
	for _, r := range p.Data {
		out = append(out, r["name"])
	}
	return out
}

func TestGetColumns(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/columns")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"name", "employer", "location", "position type", "core competency"}, decode[[]string](t, rec))

	rec = do(t, e, "/api/columns?sort=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"core competency", "employer", "location", "name", "position type"}, decode[[]string](t, rec))

	rec = do(t, e, "/api/columns?sort=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobs(t *testing.T) {
	e, store := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[page](t, rec)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, []string{"Junior Data Analyst", "web developer", "Ruby Developer", "Data Engineer"}, pageNames(p))
	assert.Equal(t, "Cozy", p.Data[1]["employer"])

	rec = do(t, e, "/api/jobs?sort=name&limit=2&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	p = decode[page](t, rec)
	assert.Equal(t, 4, p.Total)
	assert.Equal(t, []string{"Junior Data Analyst", "Ruby Developer"}, pageNames(p))

	rec = do(t, e, "/api/jobs?offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[page](t, rec).Data)

	rec = do(t, e, "/api/jobs?limit=9223372036854775807&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	p = decode[page](t, rec)
	assert.Equal(t, []string{"web developer", "Ruby Developer", "Data Engineer"}, pageNames(p))

	rec = do(t, e, "/api/jobs?sort=salary")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1, store.Loads())
}

func TestGetJobsKeyOrder(t *testing.T) {
	e, _ := newTestServer(t, "name,employer\nAnalyst,Acme Corp\n")
	rec := do(t, e, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `{"name":"Analyst","employer":"Acme Corp"}`)
}

func TestETag(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = do(t, e, "/api/jobs", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, e, "/api/columns", "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, etag, rec.Header().Get("ETag"))
}

func TestETagDoesNotHideErrors(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/columns")
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = do(t, e, "/api/columns/nosuch/values", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, "/api/jobs?sort=nosuch", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, "/api/columns?sort=maybe", "If-None-Match", etag)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, "/api/columns/location/values", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestRecoverLogsToSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	e, _ := newTestServer(t, jobsCSV)
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	rec := do(t, e, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "panic recovered")
	assert.Contains(t, out, "kaboom")
}

func TestSearchJobs(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/jobs/search?term=saint")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Junior Data Analyst", "Ruby Developer"}, pageNames(decode[page](t, rec)))

	rec = do(t, e, "/api/jobs/search?column=employer&term=COZY&sort=name")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Data Engineer", "web developer"}, pageNames(decode[page](t, rec)))

	rec = do(t, e, "/api/jobs/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, decode[page](t, rec).Total)

	rec = do(t, e, "/api/jobs/search?term=cobol")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[page](t, rec)
	assert.Equal(t, 0, p.Total)
	assert.NotNil(t, p.Data)

	rec = do(t, e, "/api/jobs/search?column=salary&term=x")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "salary")
}

func TestGetColumnValues(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/columns/location/values")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Saint Louis", "Portland", "Kansas City"}, decode[[]string](t, rec))

	rec = do(t, e, "/api/columns/location/values?sort=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Kansas City", "Portland", "Saint Louis"}, decode[[]string](t, rec))

	rec = do(t, e, "/api/columns/salary/values")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetColumnCounts(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/columns/position%20type/counts?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	counts := decode[[]struct {
		Value string `json:"value"`
		Count int    `json:"count"`
	}](t, rec)
	require.Len(t, counts, 1)
	assert.Equal(t, "Data Scientist", counts[0].Value)
	assert.Equal(t, 2, counts[0].Count)
}

func TestExportJobs(t *testing.T) {
	e, _ := newTestServer(t, jobsCSV)

	rec := do(t, e, "/api/jobs/export.arrow?column=location&term=saint")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.apache.arrow.stream", rec.Header().Get("Content-Type"))

	rdr, err := ipc.NewReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer rdr.Release()
	require.True(t, rdr.Next())
	r := rdr.Record()
	require.EqualValues(t, 2, r.NumRows())
	assert.EqualValues(t, 5, r.NumCols())
	assert.Equal(t, "Ruby Developer", r.Column(0).(*array.String).Value(1))
}

func TestUnavailableSource(t *testing.T) {
	e, store := newTestServer(t, "")

	rec := do(t, e, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[map[string]any](t, rec)["loaded"].(bool))

	for _, target := range []string{"/api/jobs", "/api/columns", "/api/jobs/search?term=x", "/api/columns/name/values"} {
		rec = do(t, e, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
	assert.False(t, store.Loaded())
}

func TestHealth(t *testing.T) {
	e, store := newTestServer(t, jobsCSV)
	require.NoError(t, store.Load(context.Background()))

	rec := do(t, e, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[map[string]any](t, rec)
	assert.Equal(t, true, h["loaded"])
	assert.EqualValues(t, 1, h["loads"])
	assert.EqualValues(t, 4, h["rows"])
}
