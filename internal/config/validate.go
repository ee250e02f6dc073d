// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package config

import (
	"errors"

	"github.com/tomtom215/vrcxtracker/internal/validation"
)

// Validate runs the struct rules and the checks that span fields.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if c.Store.Path == "" && !c.Store.InMemory {
		return errors.New("store.path is required unless store.in_memory is set")
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}
	return nil
}
