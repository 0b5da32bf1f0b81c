// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates tables and indexes. Every statement is idempotent.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range append(tableQueries(), indexQueries()...) {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// Columns that UPDATE statements modify are kept out of secondary indexes.
func tableQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pos_vendor TEXT NOT NULL DEFAULT '',
			pos_location_id TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		`CREATE TABLE IF NOT EXISTS menus (
			id TEXT PRIMARY KEY,
			location_id TEXT NOT NULL,
			name TEXT NOT NULL,
			last_synced_at TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			menu_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			pos_item_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL DEFAULT 0,
			category_id TEXT NOT NULL DEFAULT '',
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			is_86ed BOOLEAN NOT NULL DEFAULT FALSE,
			pos_touched_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			location_id TEXT NOT NULL,
			order_type TEXT NOT NULL,
			status TEXT NOT NULL,
			customer_name TEXT NOT NULL DEFAULT '',
			customer_phone TEXT NOT NULL DEFAULT '',
			customer_email TEXT NOT NULL DEFAULT '',
			delivery_address TEXT NOT NULL DEFAULT '',
			special_instructions TEXT NOT NULL DEFAULT '',
			scheduled_for TIMESTAMP,
			subtotal BIGINT NOT NULL DEFAULT 0,
			tax BIGINT NOT NULL DEFAULT 0,
			tip BIGINT NOT NULL DEFAULT 0,
			delivery_fee BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL DEFAULT 0,
			pos_order_id TEXT NOT NULL DEFAULT '',
			pos_sync_status TEXT NOT NULL DEFAULT 'pending',
			pos_synced_at TIMESTAMP,
			pos_error_message TEXT NOT NULL DEFAULT '',
			cancelled_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			menu_item_id TEXT NOT NULL DEFAULT '',
			pos_item_id TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			unit_price BIGINT NOT NULL,
			special_instructions TEXT NOT NULL DEFAULT '',
			modifiers TEXT NOT NULL DEFAULT '[]',
			position INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS order_status_history (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			status TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sync_logs (
			id TEXT PRIMARY KEY,
			location_id TEXT NOT NULL,
			sync_type TEXT NOT NULL,
			status TEXT NOT NULL,
			items_synced INTEGER NOT NULL DEFAULT 0,
			modifiers_synced INTEGER NOT NULL DEFAULT 0,
			items_deleted INTEGER NOT NULL DEFAULT 0,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			error_message TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS webhook_events (
			id TEXT PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			vendor TEXT NOT NULL,
			event_type TEXT NOT NULL,
			location_id TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '{}',
			status TEXT NOT NULL,
			retry_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			received_at TIMESTAMP NOT NULL,
			processed_at TIMESTAMP,
			dispatched_at TIMESTAMP
		)`,
	}
}

func indexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_menus_location ON menus(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_status_history_order ON order_status_history(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_logs_location ON sync_logs(location_id)`,
	}
}
