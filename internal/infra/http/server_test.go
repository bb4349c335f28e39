package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/poletreat/internal/infra/metrics"
)

func TestHealthAndRequestID(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(":0", "test", slog.New(slog.NewTextHandler(io.Discard, nil)), m, false)

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := New(":0", "test", slog.New(slog.NewTextHandler(io.Discard, nil)), nil, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestMetricsRouteOnlyWhenEnabled(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	w := httptest.NewRecorder()
	New(":0", "test", log, nil, false).Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	New(":0", "test", log, nil, true).Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
