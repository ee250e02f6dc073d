// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

// Package main is the entry point of the VRCX Discord tracker.
//
// The tracker reads VRCX's local SQLite database, works out who is (and
// recently was) in each instance the logged-in user visited, and keeps one
// Discord webhook message per visit up to date with that roster.
//
// # Startup
//
//  1. Configuration: defaults, then config.yaml (or CONFIG_PATH), then
//     environment variables (koanf v2)
//  2. VRCX database: opened read-only
//  3. Message store: badger, importing discord-messages.json once
//  4. Notification history: DuckDB, when enabled
//  5. Event bus, notifier and poller
//  6. Supervisor tree: data, messaging and api layers
//
// # Flags
//
//	--config PATH         config file to load instead of the search path
//	--write-config PATH   write the effective configuration as YAML and exit
//	--version             print the version and exit
//
// # Example
//
//	export DISCORD_WEBHOOK_URL=https://discord.com/api/webhooks/123/abc
//	./vrcxtracker
//
// SIGINT and SIGTERM stop the supervisor tree, post the "stopped" notice
// when enabled and close every store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tomtom215/vrcxtracker/internal/config"
	"github.com/tomtom215/vrcxtracker/internal/logging"
	"github.com/tomtom215/vrcxtracker/internal/notify"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	flags := pflag.NewFlagSet("vrcxtracker", pflag.ExitOnError)
	configPath := flags.String("config", "", "config file (default: $CONFIG_PATH, config.yaml, config.yml)")
	writeConfig := flags.String("write-config", "", "write the effective configuration to this path and exit")
	showVersion := flags.Bool("version", false, "print the version and exit")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println("vrcxtracker", version)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			logging.Fatal().Err(err).Str("path", *writeConfig).Msg("Failed to write configuration")
		}
		logging.Info().Str("path", *writeConfig).Msg("Configuration written")
		return
	}

	logging.Info().
		Str("version", version).
		Str("database", cfg.Tracker.DatabasePath).
		Dur("poll_interval", cfg.Tracker.PollInterval).
		Bool("discord", cfg.Discord.Enabled()).
		Str("webhook", logging.RedactWebhookURL(cfg.Discord.WebhookURL)).
		Msg("Starting VRCX Discord Tracker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := build(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.close()

	tree, err := a.supervisorTree()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	a.announce(notify.Started)

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	a.announce(notify.Stopped)
	logging.Info().Msg("Tracker stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// announce posts a lifecycle notice with its own deadline; the run context
// is already canceled on shutdown.
func (a *app) announce(event notify.Lifecycle) {
	if a.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.notifier.Announce(ctx, event); err != nil {
		logging.Warn().Err(err).Str("event", event.String()).Msg("Failed to post lifecycle notice")
	}
}
