// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package supervisor runs OrderBridge's long-lived loops under a suture v4
supervisor tree.

Every loop implements suture.Service (Serve(ctx) error plus String for
log names) and is placed in one of three layers:

	orderbridge
	├── data-layer
	│   ├── retry-sweeper          retryqueue.Sweeper
	│   └── audit-logger           audit.Logger retention cleanup
	├── messaging-layer
	│   ├── webhook-router         webhook.EventRouter (watermill)
	│   ├── websocket-hub          websocket.Hub
	│   └── webhook-redispatch     services.PeriodicService
	└── api-layer
	    └── http-server            services.HTTPServerService

Crashed services restart with suture's backoff. Supervisor events are
logged through sutureslog into the zerolog-backed slog handler from
package logging.

Usage:

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(sweeper)
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)
*/
package supervisor
