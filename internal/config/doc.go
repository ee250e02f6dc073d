// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package config loads the tracker configuration with koanf.

Sources, later overriding earlier:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: $CONFIG_PATH, else config.yaml or config.yml in the
    working directory
 3. Environment variables listed in envMappings

Example config.yaml:

	tracker:
	  database_path: C:\Users\me\AppData\Roaming\VRCX\VRCX.sqlite3
	  poll_interval: 5s
	  location_count: 5
	discord:
	  webhook_url: https://discord.com/api/webhooks/123/abc
	  notify_on_start: true
	server:
	  enabled: true
	  port: 9127

Environment variables:

	VRCX_DATABASE_PATH   tracker.database_path
	POLL_INTERVAL        tracker.poll_interval
	LOCATION_COUNT       tracker.location_count
	DISCORD_WEBHOOK_URL  discord.webhook_url
	NOTIFY_ON_START      discord.notify_on_start
	NOTIFY_ON_EXIT       discord.notify_on_exit
	HTTP_ENABLED         server.enabled
	HTTP_PORT            server.port
	HTTP_ALLOWED_ORIGINS server.allowed_origins (comma separated)
	HTTP_PREVIEW_RATE_LIMIT server.preview_rate_limit (per client IP per minute)
	LOG_LEVEL            logging.level
	LOG_FORMAT           logging.format

An empty webhook URL is valid and disables Discord delivery; the tracker
still polls, records history and serves the API.

Save writes a Config back as YAML, which is how settings edited at runtime
are persisted.
*/
package config
