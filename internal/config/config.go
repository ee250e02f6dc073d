// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete tracker configuration.
type Config struct {
	Tracker TrackerConfig `koanf:"tracker"`
	Discord DiscordConfig `koanf:"discord"`
	Store   StoreConfig   `koanf:"store"`
	History HistoryConfig `koanf:"history"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// TrackerConfig controls how the VRCX database is read.
type TrackerConfig struct {
	// DatabasePath is VRCX's SQLite file, opened read-only.
	DatabasePath string `koanf:"database_path" validate:"required"`

	// PollInterval is the time between two reads of the database.
	PollInterval time.Duration `koanf:"poll_interval" validate:"gte=100ms"`

	// LocationCount is how many of the viewer's most recent visits are
	// reported each cycle.
	LocationCount int `koanf:"location_count" validate:"min=1,max=50"`

	// Lookback bounds how old a visit may be and still be reported.
	Lookback time.Duration `koanf:"lookback" validate:"gt=0"`

	// WatchDatabase polls as soon as the database file changes, in
	// addition to the interval.
	WatchDatabase bool `koanf:"watch_database"`

	// WatchDebounce coalesces bursts of file events.
	WatchDebounce time.Duration `koanf:"watch_debounce" validate:"gte=0"`
}

// DiscordConfig controls webhook delivery.
type DiscordConfig struct {
	// WebhookURL is the Discord webhook. Empty disables notifications.
	WebhookURL string `koanf:"webhook_url" validate:"webhook_url"`

	// Username and AvatarURL override the webhook's defaults.
	Username  string `koanf:"username" validate:"max=80"`
	AvatarURL string `koanf:"avatar_url" validate:"omitempty,url"`

	// FooterText identifies the sender in every embed.
	FooterText string `koanf:"footer_text" validate:"max=2048"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RateLimit is the minimum spacing between two webhook calls.
	RateLimit time.Duration `koanf:"rate_limit" validate:"gte=0"`

	// DedupeTTL is how long the last posted fingerprint of a message is
	// remembered for skipping unchanged updates.
	DedupeTTL time.Duration `koanf:"dedupe_ttl" validate:"gt=0"`

	NotifyOnStart bool `koanf:"notify_on_start"`
	NotifyOnExit  bool `koanf:"notify_on_exit"`
}

// Enabled reports whether a webhook is configured.
func (d DiscordConfig) Enabled() bool {
	return d.WebhookURL != ""
}

// StoreConfig locates the join id to message id mapping.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// LegacyJSON is a discord-messages.json file imported once at startup
	// when present.
	LegacyJSON string `koanf:"legacy_json"`

	// GCInterval is how often the value log is garbage collected.
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// HistoryConfig controls the DuckDB notification history.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`

	// Retention drops rows older than this. Zero keeps everything.
	Retention time.Duration `koanf:"retention" validate:"gte=0"`
}

// ServerConfig controls the optional HTTP API.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// AllowedOrigins lists browser origins allowed to open the live feed
	// besides the server's own host. "*" allows any.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// PreviewRateLimit caps /api/preview requests per client IP per
	// minute. 0 disables the limit.
	PreviewRateLimit int `koanf:"preview_rate_limit" validate:"gte=0"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DefaultDatabasePath returns VRCX's default database location,
// %APPDATA%\VRCX\VRCX.sqlite3 on Windows.
func DefaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "VRCX", "VRCX.sqlite3")
}
