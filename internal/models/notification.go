// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package models

import "time"

// Notification actions recorded in history.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionSkip   = "skip"
	ActionError  = "error"
)

// NotificationRecord is one delivery attempt for a visit.
type NotificationRecord struct {
	ID           string    `json:"id"`
	JoinID       int64     `json:"join_id"`
	MessageID    string    `json:"message_id,omitempty"`
	Action       string    `json:"action"`
	Location     string    `json:"location"`
	WorldName    string    `json:"world_name,omitempty"`
	CurrentCount int       `json:"current_count"`
	PastCount    int       `json:"past_count"`
	Policy       string    `json:"policy,omitempty"`
	Reduced      bool      `json:"reduced"`
	Fingerprint  string    `json:"fingerprint,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
