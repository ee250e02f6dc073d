// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/vrchat"
)

// DefaultFooter identifies the sender when no footer is configured.
const DefaultFooter = "VRCX Discord Tracker"

// Embed colors.
const (
	ColorActive   = 0x2ECC71 // viewer is in the instance
	ColorInactive = 0xFFFF00
)

const launchURL = "https://vrchat.com/home/launch"

// Header is the fixed preamble of a composed embed.
type Header struct {
	Title       string
	URL         string
	Description string
	Author      string
	Footer      string
	Color       int
	Timestamp   time.Time
}

// Size returns the header's contribution to the embed total.
func (h Header) Size() int {
	return Len(h.Title) + Len(h.Description) + Len(h.Author) + Len(h.Footer)
}

// BuildHeader derives the header for a visit. It fails with a *FormatError
// when ic.LocationID does not contain exactly one ':'. Text fields are
// truncated to their caps.
func BuildHeader(ic models.InstanceContext, records []models.RosterRecord, footer string, now time.Time, limits Limits) (Header, error) {
	if strings.Count(ic.LocationID, ":") != 1 {
		return Header{}, &FormatError{LocationID: ic.LocationID}
	}
	worldID, instanceID, _ := strings.Cut(ic.LocationID, ":")

	instanceType := vrchat.InstanceTypeUnknown
	if inst, err := vrchat.ParseLocation(ic.LocationID); err == nil {
		instanceType = inst.Type
	}

	world := ic.WorldName
	if world == "" {
		world = worldID
	}

	current, past := 0, 0
	viewerPresent := false
	for _, r := range records {
		if r.IsCurrently {
			current++
			if ic.UserID != "" && r.UserID == ic.UserID {
				viewerPresent = true
			}
		} else {
			past++
		}
	}

	var desc strings.Builder
	if ic.GroupName != "" {
		desc.WriteString("Group: ")
		desc.WriteString(Sanitize(ic.GroupName))
		if ic.GroupOwner != "" {
			desc.WriteString(" (")
			desc.WriteString(Sanitize(ic.GroupOwner))
			desc.WriteString(")")
		}
		desc.WriteByte('\n')
	}
	fmt.Fprintf(&desc, "Current Members Count: %d\nPast Members Count: %d", current, past)

	if footer == "" {
		footer = DefaultFooter
	}

	h := Header{
		Title:       truncate(fmt.Sprintf("%s (%s)", world, instanceType), limits.Title),
		URL:         launchURL + "?worldId=" + worldID + "&instanceId=" + instanceID,
		Description: truncate(desc.String(), limits.Description),
		Author:      truncate(Sanitize(ic.DisplayName), limits.Author),
		Footer:      truncate(footer, limits.Footer),
		Color:       ColorInactive,
		Timestamp:   now,
	}
	if viewerPresent {
		h.Color = ColorActive
	}
	return h, nil
}
