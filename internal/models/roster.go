// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package models

import "time"

// RosterRecord is one member's presence summary for a single instance visit.
//
// LastLeaveAt is only meaningful when it is strictly after LastJoinAt. When
// IsCurrently is true a leave timestamp that is not after the join is stale
// and must not be displayed.
type RosterRecord struct {
	UserID          string     `json:"user_id"`
	DisplayName     string     `json:"display_name"`
	LastJoinAt      *time.Time `json:"last_join_at,omitempty"`
	LastLeaveAt     *time.Time `json:"last_leave_at,omitempty"`
	IsCurrently     bool       `json:"is_currently"`
	IsInstanceOwner bool       `json:"is_instance_owner"`
	IsFriend        bool       `json:"is_friend"`
}

// HasLeft reports whether the record carries a leave timestamp that should be
// displayed: a leave exists and either no join is known or the leave is
// strictly after the join.
func (r RosterRecord) HasLeft() bool {
	if r.LastLeaveAt == nil {
		return false
	}
	return r.LastJoinAt == nil || r.LastLeaveAt.After(*r.LastJoinAt)
}

// InstanceContext identifies the reporting location and the viewer.
type InstanceContext struct {
	LocationID  string `json:"location_id" validate:"required"`
	WorldName   string `json:"world_name,omitempty"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	GroupName   string `json:"group_name,omitempty"`
	GroupOwner  string `json:"group_owner,omitempty"`
}

// SplitRoster partitions records into the current and past groups,
// preserving order.
func SplitRoster(records []RosterRecord) (current, past []RosterRecord) {
	for _, r := range records {
		if r.IsCurrently {
			current = append(current, r)
		} else {
			past = append(past, r)
		}
	}
	return current, past
}
