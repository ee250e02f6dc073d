// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

/*
Package services provides suture.Service wrappers for the tracker's
long-running components.

Each wrapper implements suture's Service interface and fmt.Stringer:

		type Service interface {
		    Serve(ctx context.Context) error
		}

	  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
	  - RunnerService: components with a blocking Run(ctx), the event bus
	    router and the VRCX poller. Returning early counts as a failure.
	  - PeriodicService: maintenance on a ticker, badger value log GC and
	    history retention.

Example:

	tree.AddMessagingService(services.NewRunnerService("event-bus", bus))
	tree.AddMessagingService(services.NewRunnerService("vrcx-poller", poller))
	tree.AddDataService(services.NewPeriodicService("store-gc", 10*time.Minute,
	    func(context.Context) error { return store.RunGC() }))
*/
package services
