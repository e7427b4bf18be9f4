// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package supervisor runs cinefeed's long-lived services under suture v4.

# Tree

	RootSupervisor ("cinefeed")
	├── MessagingSupervisor ("messaging-layer")
	│   └── BusService (watermill router and the batch consumer)
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── SchedulerService (daily genre runs)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures on its own, so a scheduler that keeps crashing
backs off without taking the consumer or the API down with it.

# Logging

Supervisor events go through sutureslog into the slog bridge in
internal/logging, which writes with zerolog:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewBusService(bus))
	tree.AddSchedulingService(services.NewSchedulerService(sched))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

# Shutdown

Canceling the context passed to Serve stops every layer. Services that do
not return within TreeConfig.ShutdownTimeout are listed by
UnstoppedServiceReport.
*/
package supervisor
