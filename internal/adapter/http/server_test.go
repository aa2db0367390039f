package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/floatlab/argo-insight/internal/adapter/http"
	"github.com/floatlab/argo-insight/internal/domain"
	"github.com/floatlab/argo-insight/internal/engine"
	"github.com/floatlab/argo-insight/internal/observability"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockFetcher struct {
	records []domain.RawRecord
	err     error

	gotQuery string
	gotLimit int
}

func (m *mockFetcher) Fetch(_ context.Context, query string, limit int) ([]domain.RawRecord, error) {
	m.gotQuery = query
	m.gotLimit = limit
	return m.records, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(fetcher httpadapter.DatasetFetcher, readyErr error) *httpadapter.Server {
	logger := discardLogger()
	eng := engine.New(logger, observability.NewMetricsForTesting())
	return httpadapter.NewServer(":0", eng, fetcher, &mockReadiness{err: readyErr}, logger)
}

func postRecommend(t *testing.T, srv *httpadapter.Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/recommend", strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

func TestRecommend_InlineRecords(t *testing.T) {
	srv := newTestServer(nil, nil)

	body := `{
		"records": [
			{"temperature_c": 18.5, "pressure_dbar": 10.0},
			{"temperature_c": 12.1, "pressure_dbar": 200.0}
		],
		"profession": "Researcher",
		"intent": "temperature profile"
	}`
	rec := postRecommend(t, srv, body)

	require.Equal(t, http.StatusOK, rec.Code)

	var out engine.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, domain.PersonaResearcher, out.Persona)
	assert.Equal(t, 2, out.RecordCount)
	assert.True(t, out.Flags.WantsProfile)
	require.NotEmpty(t, out.Charts)
	assert.Equal(t, "Temperature vs Pressure Profile", out.Charts[0].Title)
}

func TestRecommend_InvalidJSON(t *testing.T) {
	srv := newTestServer(nil, nil)

	rec := postRecommend(t, srv, "not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend_QueryWithoutFetcher(t *testing.T) {
	srv := newTestServer(nil, nil)

	rec := postRecommend(t, srv, `{"query": "SELECT * FROM argo_profiles", "profession": "student"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "data API")
}

func TestRecommend_QueryFetchesRecords(t *testing.T) {
	fetcher := &mockFetcher{records: []domain.RawRecord{
		{"temp": 15.0, "pres": 3.0},
		{"temp": 14.2, "pres": 8.0},
	}}
	srv := newTestServer(fetcher, nil)

	rec := postRecommend(t, srv, `{"query": "SELECT * FROM argo_profiles", "limit": 25, "profession": "fisherman"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT * FROM argo_profiles", fetcher.gotQuery)
	assert.Equal(t, 25, fetcher.gotLimit)

	var out engine.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 2, out.RecordCount)
	assert.Equal(t, domain.PersonaFisherman, out.Persona)
}

func TestRecommend_QueryFetchFailure(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("connection refused")}
	srv := newTestServer(fetcher, nil)

	rec := postRecommend(t, srv, `{"query": "SELECT 1"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRecommend_EmptyBodyStillRecommends(t *testing.T) {
	srv := newTestServer(nil, nil)

	rec := postRecommend(t, srv, `{}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var out engine.Recommendation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 0, out.RecordCount)
	assert.Empty(t, out.Charts)
	assert.Equal(t, domain.PersonaResearcher, out.Persona)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(nil, fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
