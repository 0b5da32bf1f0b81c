// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Command server runs OrderBridge, the integration layer between an online
ordering platform and restaurant POS systems.

Startup order:

 1. Configuration: koanf defaults, optional config.yaml, environment
 2. Logging: zerolog, level and format from LOG_LEVEL / LOG_FORMAT
 3. DuckDB: orders, menus, sync logs, webhook events and audit events
 4. Badger retry queue for failed outbound POS requests
 5. Webhook transport: watermill gochannel, or NATS JetStream
 6. Provider registry: SkyTab and/or the in-memory mock
 7. Orchestration service, admin API, websocket feed
 8. Supervisor tree: retry sweeper, audit retention, webhook router,
    websocket hub, pending-webhook redispatch, HTTP server

SIGINT and SIGTERM cancel the tree; every service shuts down within
SHUTDOWN_TIMEOUT.

Minting an admin API token (requires JWT_SECRET):

	orderbridge -mint-token ops-team -role operator -ttl 720h

Local development with the mock POS:

	export POS_VENDOR=mock
	export AUTH_MODE=none
	./orderbridge
*/
package main
