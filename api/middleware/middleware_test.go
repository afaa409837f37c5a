package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mirs/station-backend/pkg/errors"
	"github.com/mirs/station-backend/pkg/logger"
	"github.com/mirs/station-backend/pkg/metrics"
)

func TestStationContextInjectsStation(t *testing.T) {
	var seen string
	handler := StationContext("BORP-01", logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = StationIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items?station_id=BORP-01", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "BORP-01", seen)
}

func TestStationContextRejectsOtherStation(t *testing.T) {
	called := false
	handler := StationContext("BORP-01", logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	cases := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/items?station_id=BORP-02", nil),
		func() *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
			req.Header.Set(StationHeader, "BORP-02")
			return req
		}(),
	}
	for _, req := range cases {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		require.Equal(t, http.StatusForbidden, resp.Code)

		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
		assert.Equal(t, string(pkgerrors.CodeForbidden), payload.Error.Code)
	}
	assert.False(t, called)
}

func TestCheckStation(t *testing.T) {
	assert.NoError(t, CheckStation("BORP-01", ""))
	assert.NoError(t, CheckStation("BORP-01", " BORP-01 "))
	err := CheckStation("BORP-01", "BORP-02")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))
}

func TestRequestIDPropagatesOrGenerates(t *testing.T) {
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, "req-123", resp.Header().Get(requestIDHeader))

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.NotEmpty(t, resp.Header().Get(requestIDHeader))
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), "boom")
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(Logging(logger.Nop(), m))
	r.Get("/api/v1/items/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/items/PPE-001", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/items/GAUZE-4X4", nil))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "mirs_http_requests_total" {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		metric := mf.GetMetric()[0]
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		assert.Equal(t, "/api/v1/items/{code}", labels["route"])
		assert.Equal(t, "404", labels["status"])
		assert.Equal(t, float64(2), metric.GetCounter().GetValue())
		found = true
	}
	assert.True(t, found, "expected http request counter")
}
