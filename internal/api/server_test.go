package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"visualjobs.local/internal/diagram"
	"visualjobs.local/internal/domain"
	"visualjobs.local/internal/metrics"
	"visualjobs.local/internal/notion"
	"visualjobs.local/internal/pipeline"
)

type fakeProbe struct {
	pingErr   error
	dbs       []notion.DatabaseInfo
	searchErr error
}

func (f *fakeProbe) Ping(context.Context) error { return f.pingErr }

func (f *fakeProbe) SearchDatabases(context.Context) ([]notion.DatabaseInfo, error) {
	return f.dbs, f.searchErr
}

type fakeHistory struct {
	runs  []domain.Run
	err   error
	limit int
}

func (f *fakeHistory) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	f.limit = limit
	return f.runs, f.err
}

var fetchedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func testSnapshot(t *testing.T) *domain.Snapshot {
	t.Helper()
	snap, err := pipeline.Build([]domain.ApplicationRecord{
		{ID: "a", Company: "Acme", Position: "SWE", AppliedDate: "2025-01-02", Link: "https://acme.example/jobs/1",
			Status: "Offer", FollowUp: "Offer", HasOA: true, HasInterview: true, Accepted: true},
		{ID: "b", Company: "Globex", Position: "SRE", Status: "Not started", FollowUp: "Not started"},
		{ID: "c", Company: "Initech", Position: "Backend", Status: "Rejection", FollowUp: "Rejection", HasOA: true},
	}, domain.ModePipeline, fetchedAt)
	require.NoError(t, err)
	return snap
}

func newTestServer(t *testing.T, probe NotionProbe, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(testSnapshot(t), probe, opts...)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func detailsURL(source, target string) string {
	q := url.Values{}
	q.Set("source", source)
	q.Set("target", target)
	return "/api/details?" + q.Encode()
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeProbe{}), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		OK      bool `json:"ok"`
		Records int  `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, 3, body.Records)
}

func TestDashboardRenders(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeProbe{}), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "Application Pipeline Flow")
	assert.Contains(t, body, "Acceptance Rate")
	assert.Contains(t, body, diagram.Placeholder)
	assert.Contains(t, body, "plotly_click")
	assert.Contains(t, body, "Interview Completed")
}

func TestUnknownPathIsNotFound(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeProbe{}), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSnapshotJSON(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeProbe{}), "/api/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, domain.ModePipeline, snap.Mode)
	assert.Len(t, snap.Records, 3)
	assert.Equal(t, 3, snap.Summary.Total)
	assert.Equal(t, 1, snap.Summary.Offers)
	assert.True(t, snap.FetchedAt.Equal(fetchedAt))
	assert.Nil(t, snap.Details)
}

func TestDiagramJSON(t *testing.T) {
	srv := newTestServer(t, &fakeProbe{})
	rec := get(t, srv, "/api/diagram")
	require.Equal(t, http.StatusOK, rec.Code)

	var fig diagram.Figure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fig))
	assert.Equal(t, diagram.Build(srv.snap), fig)
	require.Len(t, fig.Links.Keys, len(fig.Links.Value))
}

func TestDetailsFound(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	srv := newTestServer(t, &fakeProbe{}, WithMetrics(m, reg))

	rec := get(t, srv, detailsURL("Interview Completed", "Offer Received"))
	require.Equal(t, http.StatusOK, rec.Code)

	var d diagram.Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Empty(t, d.Placeholder)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, diagram.DetailRow{
		Company:     "Acme",
		Position:    "SWE",
		AppliedDate: "2025-01-02",
		Link:        "https://acme.example/jobs/1",
	}, d.Rows[0])
	assert.Equal(t, "Interview Completed → Offer Received: 1 applications", d.Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetailLookups.WithLabelValues("found")))
}

func TestDetailsPlaceholder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	srv := newTestServer(t, &fakeProbe{}, WithMetrics(m, reg))

	cases := map[string]string{
		"no edge":        detailsURL("Applied", "Withdrawn"),
		"nothing picked": "/api/details",
		"target missing": "/api/details?source=Applied",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			rec := get(t, srv, target)
			require.Equal(t, http.StatusOK, rec.Code)

			var d diagram.Details
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
			assert.Equal(t, diagram.Placeholder, d.Placeholder)
			assert.Empty(t, d.Rows)
		})
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DetailLookups.WithLabelValues("placeholder")))
}

func TestDebugNotion(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeProbe{}), "/debug/notion")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = get(t, newTestServer(t, &fakeProbe{pingErr: errors.New("unauthorized")}), "/debug/notion")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"unauthorized"}`, rec.Body.String())
}

func TestDebugSearch(t *testing.T) {
	probe := &fakeProbe{dbs: []notion.DatabaseInfo{{ID: "db1", Title: "Job Tracker"}}}
	rec := get(t, newTestServer(t, probe), "/debug/notion/search")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int                   `json:"count"`
		DBs   []notion.DatabaseInfo `json:"dbs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, probe.dbs, body.DBs)

	rec = get(t, newTestServer(t, &fakeProbe{}), "/debug/notion/search")
	assert.JSONEq(t, `{"count":0,"dbs":[]}`, rec.Body.String())

	rec = get(t, newTestServer(t, &fakeProbe{searchErr: errors.New("boom")}), "/debug/notion/search")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		rec := get(t, newTestServer(t, &fakeProbe{}), "/api/history")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists runs", func(t *testing.T) {
		h := &fakeHistory{runs: []domain.Run{{
			ID:        "run-1",
			FetchedAt: fetchedAt,
			Mode:      domain.ModePipeline,
			Summary:   domain.Summary{Total: 3},
			Stages:    map[domain.Stage]int{domain.StageApplied: 1},
		}}}
		rec := get(t, newTestServer(t, &fakeProbe{}, WithHistory(h)), "/api/history?limit=5")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, h.limit)

		var body []struct {
			ID        string         `json:"id"`
			FetchedAt string         `json:"fetched_at"`
			Mode      string         `json:"mode"`
			Stages    map[string]int `json:"stages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, "run-1", body[0].ID)
		assert.Equal(t, "2025-03-14T09:30:00Z", body[0].FetchedAt)
		assert.Equal(t, 1, body[0].Stages["Applied"])
	})

	t.Run("default limit", func(t *testing.T) {
		h := &fakeHistory{}
		rec := get(t, newTestServer(t, &fakeProbe{}, WithHistory(h)), "/api/history")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 50, h.limit)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := get(t, newTestServer(t, &fakeProbe{}, WithHistory(&fakeHistory{})), "/api/history?limit=zero")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		h := &fakeHistory{err: errors.New("disk I/O error")}
		rec := get(t, newTestServer(t, &fakeProbe{}, WithHistory(h)), "/api/history")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeProbe{}), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	srv := newTestServer(t, &fakeProbe{}, WithMetrics(m, reg))
	m.Observe(srv.snap)

	rec = get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `visualjobs_applications{stage="Offer Received"} 1`)
	assert.Contains(t, rec.Body.String(), "visualjobs_flow_edges")
}
