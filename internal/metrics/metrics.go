// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vrcxtracker"

// Composer metrics
var (
	CompositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compositions_total",
			Help:      "Embeds composed, by winning policy and whether the reducer ran",
		},
		[]string{"policy", "reduced"},
	)

	CompositionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "composition_errors_total",
			Help:      "Failed compositions by reason",
		},
		[]string{"reason"}, // malformed_location, exhausted, other
	)

	EmbedSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embed_size_units",
			Help:      "Total embed size in UTF-16 code units",
			Buckets:   []float64{250, 500, 1000, 2000, 3000, 4000, 5000, 5500, 6000},
		},
	)

	CompositionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "composition_duration_seconds",
			Help:      "Time spent composing one embed",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)
)

// Tracker metrics
var (
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "VRCX database poll cycles by trigger",
		},
		[]string{"trigger"}, // interval, watch, manual
	)

	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_errors_total",
			Help:      "Poll cycle failures by stage",
		},
		[]string{"stage"},
	)

	PollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of one poll cycle",
			Buckets:   prometheus.DefBuckets,
		},
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_last_success_timestamp",
			Help:      "Unix timestamp of the last successful poll cycle",
		},
	)

	VisitsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visits_tracked",
			Help:      "Visits returned by the last poll cycle",
		},
	)

	VRCXQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vrcx_query_duration_seconds",
			Help:      "VRCX SQLite query duration",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"query"},
	)

	VRCXQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vrcx_query_errors_total",
			Help:      "Failed VRCX SQLite queries",
		},
		[]string{"query"},
	)
)

// Delivery metrics
var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Snapshot deliveries by action (create, update, skip, error)",
		},
		[]string{"action"},
	)

	WebhookRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_requests_total",
			Help:      "Discord webhook calls by method and HTTP status",
		},
		[]string{"method", "status"},
	)

	WebhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_request_duration_seconds",
			Help:      "Discord webhook call latency",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	WebhookRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_rate_limited_total",
			Help:      "Discord responses with status 429",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	DedupeCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dedupe_cache_entries",
			Help:      "Fingerprints held by the dedupe cache",
		},
	)

	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_writes_total",
			Help:      "Notification history inserts by result",
		},
		[]string{"result"},
	)
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by the status API",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Status API request latency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// Composition error reasons.
const (
	ReasonMalformed = "malformed_location"
	ReasonExhausted = "exhausted"
	ReasonOther     = "other"
)

// RecordComposition records a successful composition.
func RecordComposition(policy string, reduced bool, size int, duration time.Duration) {
	CompositionsTotal.WithLabelValues(policy, strconv.FormatBool(reduced)).Inc()
	EmbedSize.Observe(float64(size))
	CompositionDuration.Observe(duration.Seconds())
}

// RecordCompositionError records a failed composition under reason.
func RecordCompositionError(reason string) {
	CompositionErrors.WithLabelValues(reason).Inc()
}

// RecordPoll records one poll cycle. stage names the failing step when err
// is non-nil.
func RecordPoll(trigger string, visits int, duration time.Duration, stage string, err error) {
	PollCycles.WithLabelValues(trigger).Inc()
	PollDuration.Observe(duration.Seconds())
	if err != nil {
		if stage == "" {
			stage = "unknown"
		}
		PollErrors.WithLabelValues(stage).Inc()
		return
	}
	VisitsTracked.Set(float64(visits))
	PollLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordVRCXQuery records a VRCX database query.
func RecordVRCXQuery(query string, duration time.Duration, err error) {
	VRCXQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		VRCXQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordNotification records the outcome of one snapshot delivery.
func RecordNotification(action string) {
	NotificationsTotal.WithLabelValues(action).Inc()
}

// RecordWebhook records a webhook call. status is 0 when no response arrived.
func RecordWebhook(method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	WebhookRequests.WithLabelValues(method, label).Inc()
	WebhookDuration.WithLabelValues(method).Observe(duration.Seconds())
	if status == 429 {
		WebhookRateLimited.Inc()
	}
}

// RecordBreakerTransition updates breaker gauges after a state change.
// States are the gobreaker names: "closed", "half-open", "open".
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordHistoryWrite records a history insert.
func RecordHistoryWrite(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	HistoryWrites.WithLabelValues(result).Inc()
}

// RecordAPIRequest records a status API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
