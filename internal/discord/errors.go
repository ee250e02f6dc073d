// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package discord

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDisabled is returned when no webhook URL is configured.
	ErrDisabled = errors.New("discord webhook is not configured")

	// ErrMessageNotFound is returned by Edit when the message no longer exists.
	ErrMessageNotFound = errors.New("discord message not found")

	// ErrInvalidWebhookURL is returned by NewClient for a malformed URL.
	ErrInvalidWebhookURL = errors.New("invalid discord webhook url")
)

// StatusError is a non-2xx webhook response.
type StatusError struct {
	Method     string
	StatusCode int
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("discord %s returned %d: %s (code %d)", e.Method, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("discord %s returned %d", e.Method, e.StatusCode)
}

// Temporary reports whether retrying later may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
