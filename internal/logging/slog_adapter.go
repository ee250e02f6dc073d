// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler is a slog.Handler that writes through zerolog, so libraries
// that only speak slog (sutureslog, watermill) share the application log.
type SlogHandler struct {
	logger zerolog.Logger
	attrs  []groupedAttr
	prefix string
}

// groupedAttr remembers the group an attribute was added under.
type groupedAttr struct {
	prefix string
	attr   slog.Attr
}

// NewSlogHandler wraps l.
//
//nolint:gocritic // zerolog.Logger is passed by value by design
func NewSlogHandler(l zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// NewSlogLogger returns a *slog.Logger backed by the global logger, tagged
// with component when it is not empty.
func NewSlogLogger(component string) *slog.Logger {
	l := Logger()
	if component != "" {
		l = l.With().Str("component", component).Logger()
	}
	return slog.New(NewSlogHandler(l))
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	zl := zerologLevel(level)
	return zl >= h.logger.GetLevel() && zl >= zerolog.GlobalLevel()
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Record is passed by value by the interface
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	e := h.logger.WithLevel(zerologLevel(r.Level))
	for _, ga := range h.attrs {
		e = appendAttr(e, ga.prefix, ga.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		e = appendAttr(e, h.prefix, a)
		return true
	})
	e.Msg(r.Message)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]groupedAttr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(next.attrs, h.attrs)
	for _, a := range attrs {
		next.attrs = append(next.attrs, groupedAttr{prefix: h.prefix, attr: a})
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func appendAttr(e *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return e
	}
	key := prefix + a.Key

	switch a.Value.Kind() {
	case slog.KindString:
		return e.Str(key, a.Value.String())
	case slog.KindInt64:
		return e.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return e.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return e.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return e.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return e.Dur(key, a.Value.Duration())
	case slog.KindTime:
		return e.Time(key, a.Value.Time())
	case slog.KindGroup:
		group := key + "."
		if a.Key == "" {
			group = prefix
		}
		for _, ga := range a.Value.Group() {
			e = appendAttr(e, group, ga)
		}
		return e
	default:
		if err, ok := a.Value.Any().(error); ok {
			return e.AnErr(key, err)
		}
		return e.Interface(key, a.Value.Any())
	}
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelDebug:
		return zerolog.TraceLevel
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
