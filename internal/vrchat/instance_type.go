// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package vrchat

import "strings"

// InstanceType is the access type of a world instance.
type InstanceType int

// Instance types, in the order VRChat lists them.
const (
	InstanceTypeUnknown InstanceType = iota
	InstanceTypePublic
	InstanceTypeFriendsPlus
	InstanceTypeFriends
	InstanceTypeInvitePlus
	InstanceTypeInvite
	InstanceTypeGroupPublic
	InstanceTypeGroupPlus
	InstanceTypeGroup
)

var instanceTypeNames = map[InstanceType]string{
	InstanceTypeUnknown:     "Unknown",
	InstanceTypePublic:      "Public",
	InstanceTypeFriendsPlus: "Friends+",
	InstanceTypeFriends:     "Friends",
	InstanceTypeInvitePlus:  "Invite+",
	InstanceTypeInvite:      "Invite",
	InstanceTypeGroupPublic: "Group Public",
	InstanceTypeGroupPlus:   "Group+",
	InstanceTypeGroup:       "Group",
}

// String returns the display name shown in the VRChat client.
func (t InstanceType) String() string {
	if name, ok := instanceTypeNames[t]; ok {
		return name
	}
	return instanceTypeNames[InstanceTypeUnknown]
}

// IsGroup reports whether the instance is owned by a group.
func (t InstanceType) IsGroup() bool {
	return t == InstanceTypeGroupPublic || t == InstanceTypeGroupPlus || t == InstanceTypeGroup
}

// Region is the server region an instance is hosted in.
type Region struct {
	Token string
	Name  string
}

// Known regions. RegionUSWest is what VRChat assumes when no region token is present.
var (
	RegionUSWest = Region{Token: "us", Name: "US West"}
	RegionUSEast = Region{Token: "use", Name: "US East"}
	RegionEurope = Region{Token: "eu", Name: "Europe"}
	RegionJapan  = Region{Token: "jp", Name: "Japan"}
)

var regions = []Region{RegionUSWest, RegionUSEast, RegionEurope, RegionJapan}

// RegionByToken looks a region up by its location token, case-insensitively.
func RegionByToken(token string) (Region, bool) {
	for _, r := range regions {
		if strings.EqualFold(r.Token, token) {
			return r, true
		}
	}
	return Region{}, false
}

// String returns the region display name.
func (r Region) String() string {
	return r.Name
}
