package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCircuits []string

func (s stubCircuits) OpenCircuits() []string { return s }

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthServer_Probes(t *testing.T) {
	hs := NewHealthServer(":0", nil, nil)
	h := hs.Handler()

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(h, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not ready"}`, rec.Body.String())

	hs.SetReady(true)
	assert.Equal(t, http.StatusOK, get(h, "/health/ready").Code)

	hs.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/health/ready").Code)
}

func TestHealthServer_Feeds(t *testing.T) {
	assert.Equal(t, http.StatusOK, get(NewHealthServer(":0", nil, nil).Handler(), "/health/feeds").Code)
	assert.Equal(t, http.StatusOK, get(NewHealthServer(":0", nil, stubCircuits{}).Handler(), "/health/feeds").Code)

	rec := get(NewHealthServer(":0", nil, stubCircuits{"blog.example"}).Handler(), "/health/feeds")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","open_circuits":["blog.example"]}`, rec.Body.String())
}

func TestMetricsServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWorkerMetrics(reg)
	m.RecordRun(nil, assert.AnError)

	srv := MetricsServer(":0", reg)
	rec := get(srv.Handler, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `worker_cron_job_runs_total{status="failure"} 1`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler(), ReadHeaderTimeout: time.Second}

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, NewHealthServer("", nil, nil).logger, "test", srv) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}
