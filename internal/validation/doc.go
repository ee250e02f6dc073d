// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package validation wraps a shared go-playground/validator instance.
//
// Field names in messages use the koanf or json tag, so configuration errors
// read like the YAML keys the user wrote:
//
//	type DiscordConfig struct {
//	    WebhookURL string `koanf:"webhook_url" validate:"webhook_url"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
//
// Custom rules:
//
//   - webhook_url: empty, or an absolute http/https URL
//   - location: a VRChat instance location id (see package vrchat)
package validation
