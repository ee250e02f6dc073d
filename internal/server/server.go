// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/vrcxtracker/internal/config"
	"github.com/tomtom215/vrcxtracker/internal/embed"
	"github.com/tomtom215/vrcxtracker/internal/history"
	"github.com/tomtom215/vrcxtracker/internal/middleware"
	"github.com/tomtom215/vrcxtracker/internal/models"
)

// HistoryReader is the read side of the notification history. Satisfied by
// *history.Store.
type HistoryReader interface {
	List(ctx context.Context, f history.Filter) ([]models.NotificationRecord, error)
	Summarize(ctx context.Context) (history.Summary, error)
	Ping(ctx context.Context) error
}

// VisitSource reports what the tracker saw last. Satisfied by
// *tracker.Poller.
type VisitSource interface {
	Visits() []models.Visit
	Status() (lastSuccess time.Time, lastErr error)
}

// Deps are the components the API reads from. History and Visits may be
// nil; their endpoints then answer 503.
type Deps struct {
	Composer *embed.Composer
	History  HistoryReader
	Visits   VisitSource

	// BreakerState reports the webhook circuit breaker state, if any.
	BreakerState func() string

	// Live serves the websocket snapshot feed at /api/live when set.
	Live http.Handler

	// Timeout bounds each JSON request. The live feed is exempt.
	Timeout time.Duration

	// PreviewRateLimit caps preview requests per client IP per minute.
	// 0 disables the limit.
	PreviewRateLimit int
}

// Handler serves the API.
type Handler struct {
	deps    Deps
	started time.Time
}

const defaultTimeout = 10 * time.Second

// NewRouter builds the chi router.
func NewRouter(deps Deps) http.Handler {
	if deps.Composer == nil {
		deps.Composer = embed.NewComposer(embed.Options{})
	}
	h := &Handler{deps: deps, started: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.NoCache)
		if deps.Live != nil {
			r.Handle("/live", deps.Live)
		}
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(timeout))
			r.Get("/visits", h.Visits)
			r.Get("/notifications", h.Notifications)
			r.Get("/notifications/summary", h.NotificationSummary)
			r.With(previewLimiter(deps.PreviewRateLimit)).Post("/preview", h.Preview)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	return r
}

// previewLimiter throttles composition requests per client IP.
func previewLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many preview requests", nil)
		}),
	)
}

// New returns an http.Server for cfg serving handler.
func New(cfg config.ServerConfig, handler http.Handler) *http.Server {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// Upgraded websocket connections clear these deadlines and manage
	// their own.
	return &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout + time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Addr formats the listen address of cfg for logs.
func Addr(cfg config.ServerConfig) string {
	return fmt.Sprintf("http://%s", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
}
