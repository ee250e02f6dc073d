// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package vrchat

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Errors returned by ParseLocation.
var (
	ErrEmptyLocation       = errors.New("location id is empty")
	ErrUnsupportedLocation = errors.New("location is not a joinable instance")
	ErrInvalidLocation     = errors.New("invalid location id format")
)

var (
	locationPattern = regexp.MustCompile(`^(?P<world>wrld_[0-9a-fA-F-]+):(?P<instance>[A-Za-z0-9_-]+)(?P<tokens>(?:~[^~]+)*)$`)
	userIDPattern   = regexp.MustCompile(`\((usr_[0-9a-fA-F-]+)\)`)
)

// pseudoLocationPrefixes are locations VRCX records that are not instances.
var pseudoLocationPrefixes = []string{"local:", "offline:", "traveling:"}

// Instance is a parsed location id.
type Instance struct {
	WorldID      string
	InstanceName string
	Type         InstanceType
	Region       Region
	// OwnerID is the creator's user id, or the group id for group instances.
	OwnerID string
	GroupID string
	Nonce   string
}

// IsPseudoLocation reports whether the location is one of the
// local/offline/traveling placeholders rather than a real instance.
func IsPseudoLocation(locationID string) bool {
	for _, prefix := range pseudoLocationPrefixes {
		if strings.HasPrefix(locationID, prefix) {
			return true
		}
	}
	return false
}

// ParseLocation parses a location id such as
// "wrld_xxx:12345~friends(usr_yyy)~region(eu)".
func ParseLocation(locationID string) (*Instance, error) {
	if strings.TrimSpace(locationID) == "" {
		return nil, ErrEmptyLocation
	}
	if IsPseudoLocation(locationID) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, locationID)
	}

	m := locationPattern.FindStringSubmatch(locationID)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, locationID)
	}

	var tokens []string
	if raw := m[locationPattern.SubexpIndex("tokens")]; raw != "" {
		for _, t := range strings.Split(raw, "~") {
			if t != "" {
				tokens = append(tokens, t)
			}
		}
	}
	tk := extractTokens(tokens)

	inst := &Instance{
		WorldID:      m[locationPattern.SubexpIndex("world")],
		InstanceName: m[locationPattern.SubexpIndex("instance")],
		Type:         tk.instanceType(),
		Region:       RegionUSWest,
		OwnerID:      tk.creatorID,
		GroupID:      tk.groupID,
		Nonce:        tk.nonce,
	}
	if inst.OwnerID == "" {
		inst.OwnerID = tk.groupID
	}
	if r, ok := RegionByToken(tk.region); ok {
		inst.Region = r
	}
	return inst, nil
}

// extractedTokens holds the access-control tokens of a location id.
type extractedTokens struct {
	region           string
	groupID          string
	groupAccessType  string
	creatorID        string
	nonce            string
	canRequestInvite bool
	hidden           bool
	friends          bool
	private          bool
	group            bool
}

func extractTokens(tokens []string) extractedTokens {
	var tk extractedTokens
	for _, t := range tokens {
		switch {
		case t == "canRequestInvite":
			tk.canRequestInvite = true
		case strings.HasPrefix(t, "region("):
			tk.region = tokenArg(t, "region(")
		case strings.HasPrefix(t, "groupAccessType("):
			tk.groupAccessType = tokenArg(t, "groupAccessType(")
		case strings.HasPrefix(t, "group("):
			tk.group = true
			tk.groupID = tokenArg(t, "group(")
		case strings.HasPrefix(t, "nonce("):
			tk.nonce = tokenArg(t, "nonce(")
		case strings.HasPrefix(t, "hidden("):
			tk.hidden = true
		case strings.HasPrefix(t, "friends("):
			tk.friends = true
		case strings.HasPrefix(t, "private("):
			tk.private = true
		}
		if tk.creatorID == "" {
			if m := userIDPattern.FindStringSubmatch(t); m != nil {
				tk.creatorID = m[1]
			}
		}
	}
	return tk
}

// tokenArg returns the text between prefix and the closing parenthesis.
func tokenArg(token, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(token, prefix), ")")
}

func (tk extractedTokens) instanceType() InstanceType {
	t := InstanceTypePublic
	switch {
	case tk.hidden:
		t = InstanceTypeFriendsPlus
	case tk.friends:
		t = InstanceTypeFriends
	case tk.private:
		t = InstanceTypeInvite
		if tk.canRequestInvite {
			t = InstanceTypeInvitePlus
		}
	}

	if tk.group {
		switch tk.groupAccessType {
		case "plus":
			t = InstanceTypeGroupPlus
		case "public":
			t = InstanceTypeGroupPublic
		default:
			t = InstanceTypeGroup
		}
	}
	return t
}
