// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Tracker: TrackerConfig{
			DatabasePath:  DefaultDatabasePath(),
			PollInterval:  5 * time.Second,
			LocationCount: 5,
			Lookback:      12 * time.Hour,
			WatchDatabase: true,
			WatchDebounce: time.Second,
		},
		Discord: DiscordConfig{
			Timeout:       10 * time.Second,
			RateLimit:     time.Second,
			DedupeTTL:     24 * time.Hour,
			NotifyOnStart: true,
			NotifyOnExit:  true,
		},
		Store: StoreConfig{
			Path:       filepath.Join("data", "messages"),
			LegacyJSON: "discord-messages.json",
			GCInterval: 10 * time.Minute,
		},
		History: HistoryConfig{
			Enabled:   true,
			Path:      filepath.Join("data", "history.duckdb"),
			Retention: 30 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9127,
			Timeout: 15 * time.Second,

			PreviewRateLimit: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file (if one
// is found), then mapped environment variables, and validates the result.
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return load(path)
}

func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variable names (lower-cased) to config keys.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"vrcx_database_path":      "tracker.database_path",
	"poll_interval":           "tracker.poll_interval",
	"location_count":          "tracker.location_count",
	"lookback":                "tracker.lookback",
	"watch_database":          "tracker.watch_database",
	"watch_debounce":          "tracker.watch_debounce",
	"discord_webhook_url":     "discord.webhook_url",
	"discord_username":        "discord.username",
	"discord_avatar_url":      "discord.avatar_url",
	"discord_footer_text":     "discord.footer_text",
	"discord_timeout":         "discord.timeout",
	"discord_rate_limit":      "discord.rate_limit",
	"discord_dedupe_ttl":      "discord.dedupe_ttl",
	"notify_on_start":         "discord.notify_on_start",
	"notify_on_exit":          "discord.notify_on_exit",
	"store_path":              "store.path",
	"store_in_memory":         "store.in_memory",
	"store_legacy_json":       "store.legacy_json",
	"store_gc_interval":       "store.gc_interval",
	"history_enabled":         "history.enabled",
	"history_path":            "history.path",
	"history_retention":       "history.retention",
	"http_enabled":            "server.enabled",
	"http_host":               "server.host",
	"http_port":               "server.port",
	"http_timeout":            "server.timeout",
	"http_allowed_origins":    "server.allowed_origins",
	"http_preview_rate_limit": "server.preview_rate_limit",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
	"log_caller":              "logging.caller",
}

// envTransformFunc maps e.g. DISCORD_WEBHOOK_URL to discord.webhook_url.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Save writes c to path as YAML, durations in their string form.
func (c *Config) Save(path string) error {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to flatten config: %w", err)
	}
	for _, key := range k.Keys() {
		if d, ok := k.Get(key).(time.Duration); ok {
			if err := k.Set(key, d.String()); err != nil {
				return fmt.Errorf("failed to set %s: %w", key, err)
			}
		}
	}

	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
