// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package supervisor runs the tracker's long-lived services under a suture/v4
supervisor tree.

	vrcxtracker (root)
	├── data-layer        store-gc, history-prune
	├── messaging-layer   event-bus, vrcx-poller
	└── api-layer         http-server

Each layer is its own supervisor with the same failure threshold, decay
and backoff. A service that returns an error is restarted; once a layer
exceeds FailureThreshold it backs off for FailureBackoff while the other
layers keep running. Supervisor events are logged through sutureslog and
the zerolog slog bridge:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewRunnerService("event-bus", bus))
	tree.AddMessagingService(services.NewRunnerService("vrcx-poller", poller))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	err = tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
