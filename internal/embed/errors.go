// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package embed

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrMalformedLocation is wrapped by FormatError.
	ErrMalformedLocation = errors.New("malformed location id")

	// ErrCompositionExhausted is wrapped by CompositionExhaustedError.
	ErrCompositionExhausted = errors.New("embed cannot fit within discord limits")

	// ErrEmptyField is returned by Validate for a field without name or value.
	ErrEmptyField = errors.New("empty field name or value")
)

// FormatError reports a location id without exactly one ':' separator.
// It is raised before any rendering.
type FormatError struct {
	LocationID string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("location %q is not in world:instance form", e.LocationID)
}

func (e *FormatError) Unwrap() error { return ErrMalformedLocation }

// CompositionExhaustedError reports that no policy and no reduction produced
// a valid embed. This happens when the header alone overflows the limits.
type CompositionExhaustedError struct {
	Segments   int   // segments handed to the reducer
	Lines      int   // lines across those segments
	HeaderSize int   // UTF-16 units used by the header
	Cause      error // last validation failure
}

func (e *CompositionExhaustedError) Error() string {
	return fmt.Sprintf("%v: %d segments, %d lines, header %d units: %v",
		ErrCompositionExhausted, e.Segments, e.Lines, e.HeaderSize, e.Cause)
}

func (e *CompositionExhaustedError) Unwrap() error { return ErrCompositionExhausted }

// LimitError names the first cap a candidate embed violates.
type LimitError struct {
	Field string
	Size  int
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s is %d, exceeds limit %d", e.Field, e.Size, e.Max)
}
