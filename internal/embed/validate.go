// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import "fmt"

// Validate reports the first cap that the header and segments violate, or
// nil when they form a valid embed.
func Validate(h Header, segments []Segment, limits Limits) error {
	checks := []struct {
		field string
		size  int
		max   int
	}{
		{"title", Len(h.Title), limits.Title},
		{"description", Len(h.Description), limits.Description},
		{"author name", Len(h.Author), limits.Author},
		{"footer text", Len(h.Footer), limits.Footer},
		{"field count", len(segments), limits.Fields},
	}
	for _, c := range checks {
		if c.size > c.max {
			return &LimitError{Field: c.field, Size: c.size, Max: c.max}
		}
	}

	total := h.Size()
	for i, s := range segments {
		if s.Title == "" || s.Text == "" {
			return fmt.Errorf("field %d: %w", i, ErrEmptyField)
		}
		if n := Len(s.Title); n > limits.FieldName {
			return &LimitError{Field: fmt.Sprintf("field %d name", i), Size: n, Max: limits.FieldName}
		}
		if n := Len(s.Text); n > limits.FieldValue {
			return &LimitError{Field: fmt.Sprintf("field %d value", i), Size: n, Max: limits.FieldValue}
		}
		total += s.Size()
	}
	if total > limits.Total {
		return &LimitError{Field: "embed total", Size: total, Max: limits.Total}
	}
	return nil
}
