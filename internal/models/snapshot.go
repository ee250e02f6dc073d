// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package models

import "time"

// Snapshot is the roster of one visit observed during one poll cycle. It is
// the payload carried from the tracker to the notifier.
type Snapshot struct {
	JoinID        int64           `json:"join_id"`
	Context       InstanceContext `json:"context"`
	Records       []RosterRecord  `json:"records"`
	ObservedAt    time.Time       `json:"observed_at"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}
