// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package websocket pushes live order and menu updates to kitchen and storefront
dashboards.

A single Hub owns the set of connected clients and fans out messages in
client id order. Each Client runs a read pump (ping/pong, disconnect
detection) and a write pump (JSON frames, keepalive pings). Clients that
connect with ?locationId=... only receive messages for that location.

Message types:

  - order_status: an order moved to a new status (API, webhook or poll)
  - menu_sync: a menu sync finished
  - item_availability: an item was 86'd or restored

The Hub implements suture.Service and is supervised with the other
background services. Broadcast never blocks; a client whose send buffer is
full is disconnected.

Usage:

	hub := websocket.NewHub()
	go hub.Serve(ctx)
	r.Handle("/ws/orders", websocket.NewHandler(hub, cfg.Security.CORSOrigins))
	hub.BroadcastOrderStatus(order, models.StatusSourceWebhook)
*/
package websocket
