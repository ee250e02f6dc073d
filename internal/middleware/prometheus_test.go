// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/vrcxtracker/internal/metrics"
)

func TestPrometheusMetrics(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/test/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/api/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	teapot := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/test/{id}", "418")
	ok := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/ok", "200")
	beforeTeapot, beforeOK := testutil.ToFloat64(teapot), testutil.ToFloat64(ok)

	for _, path := range []string{"/api/test/1", "/api/test/2", "/api/ok"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(teapot) - beforeTeapot; got != 2 {
		t.Errorf("templated route count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ok) - beforeOK; got != 1 {
		t.Errorf("ok route count = %v, want 1", got)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	t.Parallel()

	handler := PrometheusMetrics(http.NotFoundHandler())
	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched count = %v, want 1", got)
	}
}

func TestMetricsResponseWriter_Hijack(t *testing.T) {
	t.Parallel()

	// ResponseRecorder cannot be hijacked; the error must surface rather
	// than panic.
	rw := &metricsResponseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := rw.Hijack(); err == nil {
		t.Fatal("expected hijack error from recorder")
	}

	srv := httptest.NewServer(PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack through middleware: %v", err)
			return
		}
		_, _ = conn.Write([]byte("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n"))
		_ = conn.Close()
	})))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}
