// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/vrcxtracker/internal/config"
	"github.com/tomtom215/vrcxtracker/internal/discord"
	"github.com/tomtom215/vrcxtracker/internal/embed"
	"github.com/tomtom215/vrcxtracker/internal/events"
	"github.com/tomtom215/vrcxtracker/internal/history"
	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/models"
	"github.com/tomtom215/vrcxtracker/internal/notify"
	"github.com/tomtom215/vrcxtracker/internal/server"
	"github.com/tomtom215/vrcxtracker/internal/store"
	"github.com/tomtom215/vrcxtracker/internal/supervisor"
	"github.com/tomtom215/vrcxtracker/internal/supervisor/services"
	"github.com/tomtom215/vrcxtracker/internal/tracker"
	"github.com/tomtom215/vrcxtracker/internal/vrcx"
	"github.com/tomtom215/vrcxtracker/internal/websocket"
)

// app holds every long-lived component.
type app struct {
	cfg      *config.Config
	vrcx     *vrcx.Database
	store    *store.MessageStore
	history  *history.Store
	bus      *events.Bus
	client   *discord.Client
	composer *embed.Composer
	notifier *notify.Notifier
	poller   *tracker.Poller
	hub      *websocket.Hub
}

// build opens the stores and wires the pipeline. On error everything opened
// so far is closed.
func build(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.vrcx, err = vrcx.Open(ctx, cfg.Tracker.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open VRCX database: %w", err)
	}

	a.store, err = store.Open(store.Options{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
	if err != nil {
		return nil, fmt.Errorf("open message store: %w", err)
	}
	if cfg.Store.LegacyJSON != "" {
		n, err := a.store.ImportLegacyJSON(ctx, cfg.Store.LegacyJSON)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.Store.LegacyJSON).Msg("Failed to import legacy message map")
		} else if n > 0 {
			logging.Info().Int("mappings", n).Str("path", cfg.Store.LegacyJSON).Msg("Imported legacy message map")
		}
	}

	if cfg.History.Enabled {
		a.history, err = history.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	a.composer = embed.NewComposer(embed.Options{Footer: cfg.Discord.FooterText})

	a.bus, err = events.NewBus(events.Config{})
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	if err := a.wireNotifier(); err != nil {
		return nil, err
	}
	if cfg.Server.Enabled {
		a.hub = websocket.NewHub()
		a.bus.HandleSnapshots("live-feed", a.hub.HandleSnapshot)
	}

	watchPath := ""
	if cfg.Tracker.WatchDatabase {
		watchPath = cfg.Tracker.DatabasePath
	}
	a.poller = tracker.New(tracker.Config{
		PollInterval:  cfg.Tracker.PollInterval,
		LocationCount: cfg.Tracker.LocationCount,
		Lookback:      cfg.Tracker.Lookback,
		WatchPath:     watchPath,
		WatchDebounce: cfg.Tracker.WatchDebounce,
	}, a.vrcx, a.bus)
	a.poller.WaitFor(a.bus.Running())

	return a, nil
}

// wireNotifier subscribes the notifier to snapshots, or a logging handler
// when no webhook is configured.
func (a *app) wireNotifier() error {
	client, err := discord.NewClient(discord.Config{
		WebhookURL: a.cfg.Discord.WebhookURL,
		Username:   a.cfg.Discord.Username,
		AvatarURL:  a.cfg.Discord.AvatarURL,
		Timeout:    a.cfg.Discord.Timeout,
		RateLimit:  a.cfg.Discord.RateLimit,
	})
	if errors.Is(err, discord.ErrDisabled) {
		logging.Warn().Msg("No Discord webhook configured, snapshots are only logged")
		a.bus.HandleSnapshots("snapshot-logger", func(ctx context.Context, snap models.Snapshot) error {
			logging.Ctx(ctx).Info().
				Int64("join_id", snap.JoinID).
				Str("location", snap.Context.LocationID).
				Int("members", len(snap.Records)).
				Msg("Snapshot")
			return nil
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("create Discord client: %w", err)
	}
	a.client = client

	// A nil *history.Store must not become a non-nil interface.
	var recorder notify.HistoryRecorder
	if a.history != nil {
		recorder = a.history
	}
	a.notifier = notify.New(notify.Config{
		Footer:        a.cfg.Discord.FooterText,
		DedupeTTL:     a.cfg.Discord.DedupeTTL,
		NotifyOnStart: a.cfg.Discord.NotifyOnStart,
		NotifyOnExit:  a.cfg.Discord.NotifyOnExit,
	}, a.composer, client, a.store, recorder)
	a.bus.HandleSnapshots("discord-notifier", a.notifier.HandleSnapshot)
	return nil
}

// supervisorTree places every service in its layer.
func (a *app) supervisorTree() (*supervisor.SupervisorTree, error) {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return nil, err
	}

	if !a.cfg.Store.InMemory {
		tree.AddDataService(services.NewPeriodicService("store-gc", a.cfg.Store.GCInterval, func(context.Context) error {
			return a.store.RunGC()
		}))
	}
	if a.history != nil && a.cfg.History.Retention > 0 {
		retention := a.cfg.History.Retention
		tree.AddDataService(services.NewPeriodicService("history-prune", time.Hour, func(ctx context.Context) error {
			n, err := a.history.Prune(ctx, time.Now().Add(-retention))
			if err == nil && n > 0 {
				logging.Info().Int64("rows", n).Msg("Pruned notification history")
			}
			return err
		}))
	}

	tree.AddMessagingService(services.NewRunnerService("event-bus", a.bus))
	tree.AddMessagingService(services.NewRunnerService("vrcx-poller", a.poller))

	if a.cfg.Server.Enabled {
		deps := server.Deps{Composer: a.composer, Visits: a.poller, Timeout: a.cfg.Server.Timeout, PreviewRateLimit: a.cfg.Server.PreviewRateLimit}
		if a.hub != nil {
			tree.AddMessagingService(services.NewRunnerService("live-feed", a.hub))
			deps.Live = a.hub.Handler(a.cfg.Server.AllowedOrigins)
		}
		if a.history != nil {
			deps.History = a.history
		}
		if a.client != nil {
			deps.BreakerState = a.client.BreakerState
		}
		srv := server.New(a.cfg.Server, server.NewRouter(deps))
		tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
		logging.Info().Str("addr", server.Addr(a.cfg.Server)).Msg("HTTP API enabled")
	}
	return tree, nil
}

// close releases every component in reverse order of build.
func (a *app) close() {
	logClose := func(name string, err error) {
		if err != nil {
			logging.Error().Err(err).Str("component", name).Msg("Close failed")
		}
	}
	if a.bus != nil {
		logClose("event bus", a.bus.Close())
	}
	if a.history != nil {
		logClose("history", a.history.Close())
	}
	if a.store != nil {
		logClose("message store", a.store.Close())
	}
	if a.vrcx != nil {
		logClose("VRCX database", a.vrcx.Close())
	}
}
