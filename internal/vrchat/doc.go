// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package vrchat parses VRChat location identifiers.
//
// A location id names one world instance and carries its access rules as
// "~"-separated tokens after the instance name:
//
//	wrld_4432ea9b-729c-46e3-8eaf-846aa0a37fdd:12345~hidden(usr_0b83d9be-9852-42dd-98e2-625062400acc)~region(jp)
//	\__________________ world _____________/ \_/ \___________________ tokens _____________________________/
//	                                        instance
//
// ParseLocation extracts the world id, the instance name, the instance
// access type (Public, Friends+, Invite, Group+, ...), the region, the owner
// (user or group) and the nonce. Local, offline and traveling pseudo
// locations are rejected because they do not identify a joinable instance.
package vrchat
