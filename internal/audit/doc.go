// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package audit records POS integration events (menu syncs, order
// submissions, cancellations, availability changes, vendor webhooks and admin
// actions) for operators.
//
// Events are written asynchronously by Logger to a Store. DuckDBStore keeps
// them in the audit_events table next to the order data; MemoryStore is used
// in tests. Logger also implements suture.Service to enforce retention.
//
// Usage:
//
//	store := audit.NewDuckDBStore(db.Conn())
//	_ = store.CreateTable(ctx)
//	auditLog := audit.NewLogger(store, nil)
//	auditLog.Record(ctx, audit.EventTypeOrderSubmitted, audit.OutcomeSuccess,
//		&audit.Target{ID: order.ID, Type: "order"}, "order sent to POS", nil)
package audit
