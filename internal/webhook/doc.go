// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package webhook receives, verifies and applies POS vendor push notifications.

Inbound flow:

	POST /pos/{vendor}/webhook
	    │
	    ├─ VerifySignature (HMAC-SHA256, hex)        401 on mismatch
	    ├─ Receiver.Receive
	    │     ├─ parse envelope                       200 + error on bad JSON
	    │     ├─ insert webhook_events row            duplicate → 200, no dispatch
	    │     └─ Dispatcher.Dispatch(row id)          watermill publish
	    └─ 200 {"received":true}

	EventRouter (watermill message.Router)
	    PoisonQueue → Retry → Recoverer → Throttle
	        └─ Processor.Process(row id)
	              routes ticket.*, menu.*, stock.updated, location.hours_changed

Delivery is at-least-once. Processor skips rows that are already processed,
so a redelivered message is harmless.

Two transports are available: an in-process gochannel (default) and NATS
JetStream via watermill-nats, optionally backed by an embedded nats-server.
*/
package webhook
