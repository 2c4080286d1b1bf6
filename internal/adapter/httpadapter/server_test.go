package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/couchcryptid/quake-feed-search/internal/adapter/httpadapter"
	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/couchcryptid/quake-feed-search/internal/pipeline"
	"github.com/couchcryptid/quake-feed-search/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockSearcher struct {
	records []domain.EventRecord
	err     error
	calls   int
}

func (m *mockSearcher) Search(_ context.Context, matcher pipeline.Matcher) (pipeline.Result, error) {
	m.calls++
	if m.err != nil {
		return pipeline.Result{}, m.err
	}
	group := domain.Group{Source: "feeds/a.atom"}
	for _, rec := range m.records {
		if matcher.Match(rec) {
			group.Records = append(group.Records, rec)
		}
	}
	res := pipeline.Result{Stats: pipeline.Stats{FilesScanned: 1, EntriesScanned: len(m.records), Matched: len(group.Records)}}
	if len(group.Records) > 0 {
		res.Groups = []domain.Group{group}
	}
	return res, nil
}

func sampleRecords() []domain.EventRecord {
	return []domain.EventRecord{
		{Title: "M 1.3 - Ridgecrest, CA", ID: "urn:ev:1", Timestamp: "2025-01-28T10:00:00Z", Coordinates: "1 2", Elevation: "-1", Place: "CA"},
		{Title: "M 4.6 - Volcano, Hawaii", ID: "urn:ev:2", Timestamp: "2025-01-28T11:00:00Z", Coordinates: "3 4", Elevation: "-2", Place: "Hawaii"},
	}
}

func newTestServer(searcher *mockSearcher, readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", searcher, &mockReadiness{err: readyErr}, slog.Default())
}

func get(srv *httpadapter.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchReturnsReport(t *testing.T) {
	searcher := &mockSearcher{records: sampleRecords()}
	srv := newTestServer(searcher, nil)

	rec := get(srv, "/search?place="+url.QueryEscape("hawaii"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Matches"))
	assert.Equal(t, "1", rec.Header().Get("X-Files-Scanned"))

	body := rec.Body.String()
	assert.Contains(t, body, `The following entries match: place "hawaii"`)
	assert.Contains(t, body, "ID: urn:ev:2")
	assert.NotContains(t, body, "urn:ev:1")
}

func TestSearchNoMatches(t *testing.T) {
	srv := newTestServer(&mockSearcher{records: sampleRecords()}, nil)

	rec := get(srv, "/search?place=Nowhere")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), report.NoMatches)
}

func TestSearchRejectsInvalidCriteria(t *testing.T) {
	tests := map[string]string{
		"no criteria":         "/search",
		"start after end":     "/search?date_from=2025-02-01&date_to=2025-01-01",
		"bad bucket":          "/search?bucket=%3E%3D9",
		"bad magnitude":       "/search?magnitude=big",
		"malformed date":      "/search?date=28-01-2025",
		"bad datetime token":  "/search?datetime=2025",
		"time start past end": "/search?time_from=10&time_to=09",
	}
	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			searcher := &mockSearcher{}
			rec := get(newTestServer(searcher, nil), target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid criterion")
			assert.Zero(t, searcher.calls, "no feed is read for an invalid query")
		})
	}
}

func TestSearchFailure(t *testing.T) {
	srv := newTestServer(&mockSearcher{err: errors.New("feed directory vanished")}, nil)

	rec := get(srv, "/search?bucket=2")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "vanished")
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(&mockSearcher{}, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(&mockSearcher{}, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(&mockSearcher{}, fmt.Errorf("feed directory feeds: not found")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "feed directory feeds: not found", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(&mockSearcher{}, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestSearchRejectsPost(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(&mockSearcher{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search?bucket=2", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
