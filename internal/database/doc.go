// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package database provides DuckDB-backed persistence for OrderBridge.

Tables:
  - locations, menus, menu_items: the local catalog and its POS id mapping
  - orders, order_items, order_status_history: local orders and their append-only history
  - sync_logs: one row per menu sync attempt
  - webhook_events: received webhooks, unique on event_id for deduplication

DB satisfies the repository interfaces declared by the posservice and
webhook packages. Tests use an in-memory database:

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:"})
*/
package database
