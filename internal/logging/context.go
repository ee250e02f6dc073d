// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	loggerKey        contextKey = "logger"
)

// NewCorrelationID returns the first 8 characters of a random UUID.
func NewCorrelationID() string {
	return uuid.New().String()[:8]
}

// WithCorrelationID returns ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithNewCorrelationID returns ctx carrying a fresh correlation id.
func WithNewCorrelationID(ctx context.Context) context.Context {
	return WithCorrelationID(ctx, NewCorrelationID())
}

// CorrelationID returns the correlation id in ctx, or "".
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a logger in ctx for Ctx to pick up.
//
//nolint:gocritic // zerolog.Logger is passed by value by design
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// Ctx returns the logger stored in ctx (or the global one) with the
// correlation id attached.
//
//	logging.Ctx(ctx).Info().Int64("join_id", id).Msg("Notification sent")
func Ctx(ctx context.Context) *zerolog.Logger {
	l, ok := ctx.Value(loggerKey).(zerolog.Logger)
	if !ok {
		l = Logger()
	}
	if id := CorrelationID(ctx); id != "" {
		l = l.With().Str("correlation_id", id).Logger()
	}
	return &l
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
