// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
)

const orderColumns = `id, location_id, order_type, status, customer_name, customer_phone,
	customer_email, delivery_address, special_instructions, scheduled_for,
	subtotal, tax, tip, delivery_fee, total,
	pos_order_id, pos_sync_status, pos_synced_at, pos_error_message,
	cancelled_at, created_at, updated_at`

// POSSyncUpdate is the set of POS fields written after a submission attempt.
type POSSyncUpdate struct {
	POSOrderID   string
	Status       models.POSSyncStatus
	SyncedAt     *time.Time
	ErrorMessage string
}

// CreateOrder inserts an order with its items and an initial history row.
func (db *DB) CreateOrder(ctx context.Context, o *models.Order) error {
	now := db.now()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if o.POSSyncStatus == "" {
		o.POSSyncStatus = models.POSSyncPending
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = o.CreatedAt

	address := ""
	if o.DeliveryAddress != nil {
		b, err := json.Marshal(o.DeliveryAddress)
		if err != nil {
			return fmt.Errorf("encode delivery address: %w", err)
		}
		address = string(b)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.LocationID, string(o.OrderType), string(o.Status), o.CustomerName, o.CustomerPhone,
			o.CustomerEmail, address, o.SpecialInstructions, nullTime(o.ScheduledFor),
			o.Subtotal, o.Tax, o.Tip, o.DeliveryFee, o.Total,
			o.POSOrderID, string(o.POSSyncStatus), nullTime(o.POSSyncedAt), o.POSErrorMessage,
			nullTime(o.CancelledAt), o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range o.Items {
			it := &o.Items[i]
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			it.OrderID = o.ID
			mods, err := json.Marshal(it.Modifiers)
			if err != nil {
				return fmt.Errorf("encode modifiers: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO order_items
				(id, order_id, menu_item_id, pos_item_id, name, quantity, unit_price, special_instructions, modifiers, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.OrderID, it.MenuItemID, it.POSItemID, it.Name, it.Quantity, it.UnitPrice,
				it.SpecialInstructions, string(mods), i,
			); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		return insertHistory(ctx, tx, &models.OrderStatusHistory{
			OrderID:   o.ID,
			Status:    o.Status,
			Source:    models.StatusSourceSystem,
			Note:      "Order created",
			CreatedAt: o.CreatedAt,
		})
	})
}

// GetOrder loads an order and its items.
func (db *DB) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if o.Items, err = db.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// FindOrderByPOSOrderID loads an order by its vendor ticket id.
func (db *DB) FindOrderByPOSOrderID(ctx context.Context, posOrderID string) (*models.Order, error) {
	if posOrderID == "" {
		return nil, ErrOrderNotFound
	}
	row := db.conn.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE pos_order_id = ? LIMIT 1`, posOrderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if o.Items, err = db.orderItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	var (
		o                                models.Order
		orderType, status, syncStatus    string
		address                          string
		scheduled, syncedAt, cancelledAt sql.NullTime
	)
	err := row.Scan(
		&o.ID, &o.LocationID, &orderType, &status, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerEmail, &address, &o.SpecialInstructions, &scheduled,
		&o.Subtotal, &o.Tax, &o.Tip, &o.DeliveryFee, &o.Total,
		&o.POSOrderID, &syncStatus, &syncedAt, &o.POSErrorMessage,
		&cancelledAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.OrderType = models.OrderType(orderType)
	o.Status = models.OrderStatus(status)
	o.POSSyncStatus = models.POSSyncStatus(syncStatus)
	o.ScheduledFor = timePtr(scheduled)
	o.POSSyncedAt = timePtr(syncedAt)
	o.CancelledAt = timePtr(cancelledAt)
	if address != "" {
		var a models.Address
		if err := json.Unmarshal([]byte(address), &a); err != nil {
			return nil, fmt.Errorf("decode delivery address: %w", err)
		}
		o.DeliveryAddress = &a
	}
	return &o, nil
}

func (db *DB) orderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, order_id, menu_item_id, pos_item_id, name, quantity,
		unit_price, special_instructions, modifiers
		FROM order_items WHERE order_id = ? ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer closeWithLog(rows, "order item rows")

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		var mods string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.POSItemID, &it.Name, &it.Quantity,
			&it.UnitPrice, &it.SpecialInstructions, &mods); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if mods != "" && mods != "null" {
			if err := json.Unmarshal([]byte(mods), &it.Modifiers); err != nil {
				return nil, fmt.Errorf("decode modifiers: %w", err)
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderPOSSync writes the POS submission fields.
func (db *DB) UpdateOrderPOSSync(ctx context.Context, orderID string, u POSSyncUpdate) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE orders SET
		pos_order_id = CASE WHEN ? = '' THEN pos_order_id ELSE ? END,
		pos_sync_status = ?, pos_synced_at = COALESCE(?, pos_synced_at), pos_error_message = ?, updated_at = ?
		WHERE id = ?`,
		u.POSOrderID, u.POSOrderID, string(u.Status), nullTime(u.SyncedAt), u.ErrorMessage, db.now(), orderID,
	)
	if err != nil {
		return fmt.Errorf("update order pos sync: %w", err)
	}
	return requireAffected(res, ErrOrderNotFound)
}

// UpdateOrderStatus applies a status change and appends one history row.
// It reports false without writing when the status is unchanged or when a
// terminal status would be replaced by a non-terminal one.
func (db *DB) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, source models.StatusSource, note string) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid order status %q", status)
	}

	changed := false
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = ?`, orderID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("read order status: %w", err)
		}

		cur := models.OrderStatus(current)
		if cur == status {
			return nil
		}
		if cur.IsTerminal() {
			logging.Info().Str("order_id", orderID).Str("current", current).Str("requested", string(status)).
				Msg("Ignoring status change out of terminal state")
			return nil
		}

		now := db.now()
		var cancelledAt sql.NullTime
		if status == models.OrderStatusCancelled {
			cancelledAt = sql.NullTime{Time: now, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ?,
			cancelled_at = COALESCE(cancelled_at, ?) WHERE id = ?`,
			string(status), now, cancelledAt, orderID); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		changed = true
		return insertHistory(ctx, tx, &models.OrderStatusHistory{
			OrderID:   orderID,
			Status:    status,
			Note:      note,
			Source:    source,
			CreatedAt: now,
		})
	})
	return changed, err
}

// AppendStatusHistory appends a history row without changing the order status.
func (db *DB) AppendStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = db.now()
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		return insertHistory(ctx, tx, h)
	})
}

// ListOrderHistory returns an order's status history, oldest first.
func (db *DB) ListOrderHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, order_id, status, note, source, created_at
		FROM order_status_history WHERE order_id = ? ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer closeWithLog(rows, "status history rows")

	var out []models.OrderStatusHistory
	for rows.Next() {
		var h models.OrderStatusHistory
		var status, source string
		if err := rows.Scan(&h.ID, &h.OrderID, &status, &h.Note, &source, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		h.Status = models.OrderStatus(status)
		h.Source = models.StatusSource(source)
		out = append(out, h)
	}
	return out, rows.Err()
}

func insertHistory(ctx context.Context, tx *sql.Tx, h *models.OrderStatusHistory) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO order_status_history (id, order_id, status, note, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, h.OrderID, string(h.Status), h.Note, string(h.Source), h.CreatedAt); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
