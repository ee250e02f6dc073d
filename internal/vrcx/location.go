// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package vrcx

import (
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/vrchat"
)

// Location is one of the viewer's visits as recorded by VRCX.
type Location struct {
	JoinID           int64
	UserID           string
	DisplayName      string
	LocationID       string
	JoinedAt         time.Time
	LeaveID          *int64
	LeftAt           *time.Time
	NextJoinAt       *time.Time
	EstimatedLeaveAt *time.Time
	WorldName        string
	WorldID          string
	GroupName        string
}

// Visit converts l to the model the event bus and API carry.
func (l Location) Visit() models.Visit {
	return models.Visit{
		JoinID:         l.JoinID,
		Location:       l.LocationID,
		WorldName:      l.WorldName,
		JoinedAt:       l.JoinedAt,
		EstimatedLeave: l.EstimatedLeaveAt,
	}
}

// Context builds the composer input for l. Group instances fall back to the
// group id when VRCX recorded no group name.
func (l Location) Context() models.InstanceContext {
	ic := models.InstanceContext{
		LocationID:  l.LocationID,
		WorldName:   l.WorldName,
		UserID:      l.UserID,
		DisplayName: l.DisplayName,
	}
	if inst, err := vrchat.ParseLocation(l.LocationID); err == nil && inst.GroupID != "" {
		ic.GroupName = l.GroupName
		if ic.GroupName == "" {
			ic.GroupName = inst.GroupID
		}
	}
	return ic
}
