// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/models"
)

// sanitizeLogValue escapes control characters before logging client input.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	if response.Metadata.Timestamp.IsZero() {
		response.Metadata.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, data interface{}, start time.Time) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{QueryTimeMS: time.Since(start).Milliseconds()},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Error:  &models.APIError{Code: code, Message: message},
	})
}
