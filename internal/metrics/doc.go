// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package metrics defines the Prometheus collectors of the tracker.

All collectors are registered on the default registry through promauto and
exported at /metrics when the status server is enabled.

Composer:
  - vrcxtracker_compositions_total{policy,reduced}
  - vrcxtracker_composition_errors_total{reason}
  - vrcxtracker_embed_size_units
  - vrcxtracker_composition_duration_seconds

Tracker:
  - vrcxtracker_poll_cycles_total{trigger}
  - vrcxtracker_poll_errors_total{stage}
  - vrcxtracker_poll_duration_seconds
  - vrcxtracker_poll_last_success_timestamp
  - vrcxtracker_visits_tracked
  - vrcxtracker_vrcx_query_duration_seconds{query}

Delivery:
  - vrcxtracker_notifications_total{action}
  - vrcxtracker_webhook_requests_total{method,status}
  - vrcxtracker_webhook_request_duration_seconds{method}
  - vrcxtracker_circuit_breaker_state{name}
  - vrcxtracker_history_writes_total{result}

Callers use the Record* helpers rather than touching collectors directly:

	start := time.Now()
	msg, err := composer.Compose(ic, records)
	if err == nil {
		metrics.RecordComposition(msg.Policy.String(), msg.Reduced, msg.Size(), time.Since(start))
	}
*/
package metrics
