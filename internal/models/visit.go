// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package models

import "time"

// Visit is one of the viewer's own stays in an instance, as read from the
// VRCX game log. JoinID is the row id of the viewer's join event and keys the
// Discord message posted for the stay.
type Visit struct {
	JoinID         int64      `json:"join_id"`
	Location       string     `json:"location"`
	WorldName      string     `json:"world_name,omitempty"`
	JoinedAt       time.Time  `json:"joined_at"`
	EstimatedLeave *time.Time `json:"estimated_leave,omitempty"`
}

// Active reports whether the viewer has not left the instance yet.
func (v Visit) Active() bool {
	return v.EstimatedLeave == nil
}
