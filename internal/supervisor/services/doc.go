// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package services adapts cinefeed components to suture.Service.

Each wrapper turns a component's own lifecycle into Serve(ctx) error and
names itself through fmt.Stringer for supervisor events:

  - HTTPServerService: ListenAndServe plus graceful Shutdown
  - SchedulerService: GenreScheduler Start/Stop
  - BusService: watermill router Run plus Bus.Close
*/
package services
