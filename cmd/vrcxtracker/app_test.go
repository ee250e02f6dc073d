// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tomtom215/vrcxtracker/internal/config"
	"github.com/tomtom215/vrcxtracker/internal/notify"
)

// emptyVRCX creates a VRCX database with only the configs table.
func emptyVRCX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "VRCX.sqlite3")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE configs (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T, dbPath string) *config.Config {
	t.Helper()
	return &config.Config{
		Tracker: config.TrackerConfig{
			DatabasePath:  dbPath,
			PollInterval:  time.Second,
			LocationCount: 5,
			Lookback:      time.Hour,
		},
		Store:   config.StoreConfig{InMemory: true},
		History: config.HistoryConfig{Enabled: false},
		Server:  config.ServerConfig{Enabled: true, Host: "127.0.0.1", Port: 9127, Timeout: time.Second},
	}
}

func TestBuild_MissingDatabase(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing.sqlite3"))
	a, err := build(context.Background(), cfg)
	if err == nil {
		a.close()
		t.Fatal("expected error for a missing VRCX database")
	}
	if a != nil {
		t.Error("build returned an app alongside the error")
	}
}

func TestBuild_WithoutWebhook(t *testing.T) {
	t.Parallel()

	a, err := build(context.Background(), testConfig(t, emptyVRCX(t)))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer a.close()

	if a.client != nil || a.notifier != nil {
		t.Error("no webhook configured, notifier should not be wired")
	}
	if a.hub == nil {
		t.Error("server enabled, live feed hub should be created")
	}
	if a.history != nil {
		t.Error("history disabled but opened")
	}

	tree, err := a.supervisorTree()
	if err != nil {
		t.Fatalf("supervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Error("supervisor tree has no root")
	}

	// announce is a no-op without a notifier.
	a.announce(notify.Started)
}

func TestBuild_WithWebhookAndHistory(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, emptyVRCX(t))
	cfg.Server.Enabled = false
	cfg.Discord = config.DiscordConfig{
		WebhookURL: "https://discord.com/api/webhooks/1/token",
		Timeout:    time.Second,
		RateLimit:  time.Millisecond,
		DedupeTTL:  time.Hour,
	}
	cfg.History = config.HistoryConfig{
		Enabled:   true,
		Path:      filepath.Join(t.TempDir(), "history.duckdb"),
		Retention: 24 * time.Hour,
	}

	a, err := build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer a.close()

	if a.client == nil || a.notifier == nil {
		t.Fatal("webhook configured, notifier should be wired")
	}
	if a.history == nil {
		t.Error("history enabled but not opened")
	}
	if a.hub != nil {
		t.Error("server disabled, live feed hub should not be created")
	}
	if _, err := a.supervisorTree(); err != nil {
		t.Fatalf("supervisorTree() error = %v", err)
	}
}
