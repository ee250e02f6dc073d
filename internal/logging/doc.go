// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package logging provides the zerolog-based structured logger used across
// the tracker.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("db", path).Msg("Watching VRCX database")
//	logging.Err(err).Msg("Poll failed")
//
// Every poll cycle carries a correlation id in its context; Ctx attaches it
// to the log entry:
//
//	ctx = logging.WithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Debug().Int("visits", n).Msg("Poll cycle")
//
// # slog bridge
//
// sutureslog and watermill log through *slog.Logger. NewSlogLogger returns
// one that writes through the global zerolog logger:
//
//	hook := (&sutureslog.Handler{Logger: logging.NewSlogLogger("supervisor")}).MustHook()
//
// # Secrets
//
// Webhook URLs embed their token; log them only through RedactWebhookURL.
package logging
