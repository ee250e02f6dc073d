// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package models

import (
	"time"
)

// APIResponse is the envelope returned by every JSON endpoint.
//
// Status is "success" with Data populated, or "error" with Error populated.
//
//	{
//	  "status": "success",
//	  "data": [...],
//	  "metadata": {"timestamp": "2026-01-02T12:00:00Z", "query_time_ms": 3}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
//
// Codes: VALIDATION_ERROR, COMPOSITION_ERROR, DATABASE_ERROR, NOT_FOUND.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PreviewResponse is the body of a successful preview request.
type PreviewResponse struct {
	Policy      string      `json:"policy"`
	Reduced     bool        `json:"reduced"`
	Fingerprint string      `json:"fingerprint"`
	Size        int         `json:"size"`
	Embed       interface{} `json:"embed"`
}
