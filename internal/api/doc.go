// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package api provides the HTTP surface of OrderBridge on the chi router.

Routes:

	GET  /health/live, /health/ready     liveness and readiness checks
	GET  /metrics                        Prometheus exposition
	GET  /ws/orders                      websocket order status feed
	POST /pos/{vendor}/webhook           signed POS webhooks (package webhook)

	/api/v1 (bearer token when security.auth_mode=jwt; roles per internal/authz/policy.csv)
	POST /locations/{locationID}/menu/sync         {"full": bool}
	GET  /locations/{locationID}/pos/health
	GET  /locations/{locationID}/sync-logs
	GET  /sync-logs/{id}
	GET  /orders/{orderID}
	POST /orders/{orderID}/submit
	POST /orders/{orderID}/cancel                  {"reason": string}
	POST /orders/{orderID}/refresh-status
	PUT  /menu-items/{itemID}/availability         {"isAvailable": bool}
	GET  /webhook-events?status=&limit=
	GET  /retry-queue?status=&requestType=&limit=  admin
	GET  /retry-queue/stats                        admin
	POST /retry-queue/sweep                        admin
	GET  /retry-queue/{id}                         admin
	POST /retry-queue/{id}/retry                   admin
	GET  /audit?type=&outcome=&target_id=&since=   admin

Every response uses the models.APIResponse envelope. Domain errors are
mapped to status codes in errors.go: not found is 404, conflicting state
is 409, POS failures are 502 (503 when transient) and requests deferred
to the retry queue answer 202 with "queued": true.
*/
package api
