// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/models"
)

const (
	testWorld    = "wrld_4432ea9b-729c-46e3-8eaf-846aa0a37fdd"
	testViewer   = "usr_0b83d9be-9852-42dd-98e2-625062400acc"
	testInstance = "12345~hidden(" + testViewer + ")~region(eu)"
)

var testNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func testContext() models.InstanceContext {
	return models.InstanceContext{
		LocationID:  testWorld + ":" + testInstance,
		WorldName:   "The Black Cat",
		UserID:      testViewer,
		DisplayName: "Viewer",
	}
}

func TestBuildHeader(t *testing.T) {
	t.Parallel()

	records := []models.RosterRecord{
		{UserID: testViewer, IsCurrently: true},
		{UserID: "usr_1", IsCurrently: true},
		{UserID: "usr_2"},
	}

	h, err := BuildHeader(testContext(), records, "", testNow, DiscordLimits)
	if err != nil {
		t.Fatalf("BuildHeader() error = %v", err)
	}

	if h.Title != "The Black Cat (Friends+)" {
		t.Errorf("Title = %q", h.Title)
	}
	wantURL := "https://vrchat.com/home/launch?worldId=" + testWorld + "&instanceId=" + testInstance
	if h.URL != wantURL {
		t.Errorf("URL = %q, want %q", h.URL, wantURL)
	}
	if h.Description != "Current Members Count: 2\nPast Members Count: 1" {
		t.Errorf("Description = %q", h.Description)
	}
	if h.Author != "Viewer" {
		t.Errorf("Author = %q", h.Author)
	}
	if h.Footer != DefaultFooter {
		t.Errorf("Footer = %q, want %q", h.Footer, DefaultFooter)
	}
	if h.Color != ColorActive {
		t.Errorf("Color = %#x, want active", h.Color)
	}
	if !h.Timestamp.Equal(testNow) {
		t.Errorf("Timestamp = %v", h.Timestamp)
	}
}

func TestBuildHeader_Color(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []models.RosterRecord
		want    int
	}{
		{"viewer present", []models.RosterRecord{{UserID: testViewer, IsCurrently: true}}, ColorActive},
		{"viewer left", []models.RosterRecord{{UserID: testViewer}}, ColorInactive},
		{"viewer absent", []models.RosterRecord{{UserID: "usr_1", IsCurrently: true}}, ColorInactive},
		{"empty roster", nil, ColorInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := BuildHeader(testContext(), tt.records, "", testNow, DiscordLimits)
			if err != nil {
				t.Fatalf("BuildHeader() error = %v", err)
			}
			if h.Color != tt.want {
				t.Errorf("Color = %#x, want %#x", h.Color, tt.want)
			}
		})
	}
}

func TestBuildHeader_MalformedLocation(t *testing.T) {
	t.Parallel()

	for _, loc := range []string{"wrld_123", "", "wrld_1:2:3"} {
		ic := testContext()
		ic.LocationID = loc
		_, err := BuildHeader(ic, nil, "", testNow, DiscordLimits)
		if !errors.Is(err, ErrMalformedLocation) {
			t.Errorf("BuildHeader(%q) error = %v, want ErrMalformedLocation", loc, err)
		}
		var fe *FormatError
		if !errors.As(err, &fe) || fe.LocationID != loc {
			t.Errorf("BuildHeader(%q) error = %v, want *FormatError", loc, err)
		}
	}
}

func TestBuildHeader_Fallbacks(t *testing.T) {
	t.Parallel()

	ic := models.InstanceContext{LocationID: "wrld_xyz:abc", DisplayName: "a__b"}
	h, err := BuildHeader(ic, nil, "custom", testNow, DiscordLimits)
	if err != nil {
		t.Fatalf("BuildHeader() error = %v", err)
	}
	if h.Title != "wrld_xyz (Unknown)" {
		t.Errorf("Title = %q", h.Title)
	}
	if h.Author != `a\_\_b` {
		t.Errorf("Author = %q", h.Author)
	}
	if h.Footer != "custom" {
		t.Errorf("Footer = %q", h.Footer)
	}
	if h.Description != "Current Members Count: 0\nPast Members Count: 0" {
		t.Errorf("Description = %q", h.Description)
	}
}

func TestBuildHeader_Group(t *testing.T) {
	t.Parallel()

	ic := testContext()
	ic.LocationID = testWorld + ":1~group(grp_1a)~groupAccessType(plus)"
	ic.GroupName = "Cat Club"
	ic.GroupOwner = "Owner"

	h, err := BuildHeader(ic, nil, "", testNow, DiscordLimits)
	if err != nil {
		t.Fatalf("BuildHeader() error = %v", err)
	}
	if !strings.HasPrefix(h.Description, "Group: Cat Club (Owner)\n") {
		t.Errorf("Description = %q", h.Description)
	}
	if h.Title != "The Black Cat (Group+)" {
		t.Errorf("Title = %q", h.Title)
	}
}

func TestBuildHeader_Truncates(t *testing.T) {
	t.Parallel()

	ic := testContext()
	ic.WorldName = strings.Repeat("w", 400)
	ic.DisplayName = strings.Repeat("n", 400)

	h, err := BuildHeader(ic, nil, strings.Repeat("f", 3000), testNow, DiscordLimits)
	if err != nil {
		t.Fatalf("BuildHeader() error = %v", err)
	}
	if Len(h.Title) != DiscordLimits.Title {
		t.Errorf("Title length = %d", Len(h.Title))
	}
	if Len(h.Author) != DiscordLimits.Author {
		t.Errorf("Author length = %d", Len(h.Author))
	}
	if Len(h.Footer) != DiscordLimits.Footer {
		t.Errorf("Footer length = %d", Len(h.Footer))
	}
}
