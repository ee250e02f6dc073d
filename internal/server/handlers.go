// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vrcxtracker/internal/embed"
	"github.com/tomtom215/vrcxtracker/internal/history"
	"github.com/tomtom215/vrcxtracker/internal/metrics"
	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/notify"
	"github.com/tomtom215/vrcxtracker/internal/validation"
)

const maxPreviewBody = 1 << 20

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status         string     `json:"status"`
	Uptime         string     `json:"uptime"`
	LastPoll       *time.Time `json:"last_poll,omitempty"`
	LastPollError  string     `json:"last_poll_error,omitempty"`
	History        string     `json:"history"`
	WebhookBreaker string     `json:"webhook_breaker,omitempty"`
}

// Health reports liveness plus the state of the poller, history and webhook.
// It answers 503 when the last poll failed or history is unreachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
		History: "disabled",
	}
	status := http.StatusOK

	if h.deps.Visits != nil {
		last, err := h.deps.Visits.Status()
		if !last.IsZero() {
			resp.LastPoll = &last
		}
		if err != nil {
			resp.LastPollError = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if h.deps.History != nil {
		resp.History = "ok"
		if err := h.deps.History.Ping(r.Context()); err != nil {
			resp.History = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if h.deps.BreakerState != nil {
		resp.WebhookBreaker = h.deps.BreakerState()
	}

	respondJSON(w, status, &models.APIResponse{Status: "success", Data: resp})
}

// Visits lists the visits reported by the last poll cycle.
func (h *Handler) Visits(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	if h.deps.Visits == nil {
		respondError(w, http.StatusServiceUnavailable, "TRACKER_DISABLED", "tracker is not running", nil)
		return
	}
	respondData(w, h.deps.Visits.Visits(), start)
}

// Notifications lists delivery history, newest first. Query parameters:
// join_id, action, since (RFC 3339) and limit.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, "HISTORY_DISABLED", "notification history is disabled", nil)
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	records, err := h.deps.History.List(r.Context(), f)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to read history", err)
		return
	}
	respondData(w, records, start)
}

// NotificationSummary returns per-action counts.
func (h *Handler) NotificationSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.deps.History == nil {
		respondError(w, http.StatusServiceUnavailable, "HISTORY_DISABLED", "notification history is disabled", nil)
		return
	}
	sum, err := h.deps.History.Summarize(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "failed to summarize history", err)
		return
	}
	respondData(w, sum, start)
}

func parseFilter(r *http.Request) (history.Filter, error) {
	q := r.URL.Query()
	var f history.Filter

	if v := q.Get("join_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, errors.New("join_id must be a positive integer")
		}
		f.JoinID = id
	}
	if v := q.Get("action"); v != "" {
		switch v {
		case models.ActionCreate, models.ActionUpdate, models.ActionSkip, models.ActionError:
			f.Action = v
		default:
			return f, errors.New("action must be one of create, update, skip, error")
		}
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("since must be an RFC 3339 timestamp")
		}
		f.Since = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errors.New("limit must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}

// Preview composes the embed for a posted snapshot without sending it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPreviewBody+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "failed to read body", nil)
		return
	}
	if len(body) > maxPreviewBody {
		respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "body too large", nil)
		return
	}

	var snap models.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", nil)
		return
	}
	if err := validation.ValidateStruct(&snap); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusBadRequest, &models.APIResponse{
				Status: "error",
				Error:  &models.APIError{Code: "VALIDATION_ERROR", Message: verr.Error(), Details: verr.Details()},
			})
			return
		}
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	msg, err := h.deps.Composer.Compose(snap.Context, snap.Records)
	switch {
	case errors.Is(err, embed.ErrMalformedLocation):
		metrics.RecordCompositionError(metrics.ReasonMalformed)
		respondError(w, http.StatusBadRequest, "COMPOSITION_ERROR", err.Error(), nil)
		return
	case errors.Is(err, embed.ErrCompositionExhausted):
		metrics.RecordCompositionError(metrics.ReasonExhausted)
		respondError(w, http.StatusUnprocessableEntity, "COMPOSITION_ERROR", err.Error(), nil)
		return
	case err != nil:
		metrics.RecordCompositionError(metrics.ReasonOther)
		respondError(w, http.StatusInternalServerError, "COMPOSITION_ERROR", "composition failed", err)
		return
	}

	respondData(w, models.PreviewResponse{
		Policy:      msg.Policy.String(),
		Reduced:     msg.Reduced,
		Fingerprint: msg.Fingerprint(),
		Size:        msg.Size(),
		Embed:       notify.ToDiscord(msg),
	}, start)
}
