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

	"github.com/google/uuid"

	"github.com/tomtom215/orderbridge/internal/models"
)

const webhookColumns = `id, event_id, vendor, event_type, location_id, payload, status, retry_count,
	error_message, received_at, processed_at, dispatched_at`

// InsertWebhookEvent records a received event. When the event id already
// exists nothing is written and the stored row is returned with inserted=false.
func (db *DB) InsertWebhookEvent(ctx context.Context, e *models.WebhookEvent) (inserted bool, existing *models.WebhookEvent, err error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = db.now()
	}
	if e.Status == "" {
		e.Status = models.WebhookEventPending
	}
	payload := string(e.Payload)
	if payload == "" {
		payload = "{}"
	}

	res, err := db.conn.ExecContext(ctx, `INSERT INTO webhook_events (`+webhookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, '', ?, NULL, NULL)
		ON CONFLICT DO NOTHING`,
		e.ID, e.EventID, e.Vendor, e.EventType, e.LocationID, payload, string(e.Status), e.ReceivedAt)
	if err != nil {
		return false, nil, fmt.Errorf("insert webhook event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return true, nil, nil
	}

	existing, err = db.GetWebhookEventByEventID(ctx, e.EventID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

// GetWebhookEvent loads an event by row id.
func (db *DB) GetWebhookEvent(ctx context.Context, id string) (*models.WebhookEvent, error) {
	return scanWebhookEvent(db.conn.QueryRowContext(ctx, `SELECT `+webhookColumns+` FROM webhook_events WHERE id = ?`, id))
}

// GetWebhookEventByEventID loads an event by vendor event id.
func (db *DB) GetWebhookEventByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	return scanWebhookEvent(db.conn.QueryRowContext(ctx, `SELECT `+webhookColumns+` FROM webhook_events WHERE event_id = ?`, eventID))
}

// MarkWebhookProcessed marks an event processed.
func (db *DB) MarkWebhookProcessed(ctx context.Context, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE webhook_events SET status = ?, processed_at = ?, error_message = '' WHERE id = ?`,
		string(models.WebhookEventProcessed), at, id)
	if err != nil {
		return fmt.Errorf("mark webhook processed: %w", err)
	}
	return requireAffected(res, ErrWebhookEventNotFound)
}

// MarkWebhookFailed records a processing failure and increments retry_count.
func (db *DB) MarkWebhookFailed(ctx context.Context, id, errMsg string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE webhook_events SET status = ?, error_message = ?, retry_count = retry_count + 1 WHERE id = ?`,
		string(models.WebhookEventFailed), errMsg, id)
	if err != nil {
		return fmt.Errorf("mark webhook failed: %w", err)
	}
	return requireAffected(res, ErrWebhookEventNotFound)
}

// MarkWebhookDispatched stamps the time an event was handed to the router.
func (db *DB) MarkWebhookDispatched(ctx context.Context, id string, at time.Time) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE webhook_events SET dispatched_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("mark webhook dispatched: %w", err)
	}
	return requireAffected(res, ErrWebhookEventNotFound)
}

// ListStalePending returns pending events whose last dispatch, or receipt
// when never dispatched, is at or before cutoff. Oldest first.
func (db *DB) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.WebhookEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.QueryContext(ctx, `SELECT `+webhookColumns+` FROM webhook_events
		WHERE status = ? AND COALESCE(dispatched_at, received_at) <= ?
		ORDER BY received_at ASC LIMIT ?`,
		string(models.WebhookEventPending), cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale webhook events: %w", err)
	}
	defer closeWithLog(rows, "stale webhook event rows")

	var out []models.WebhookEvent
	for rows.Next() {
		e, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ResetWebhookPending moves a failed event back to pending for redelivery.
func (db *DB) ResetWebhookPending(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE webhook_events SET status = ? WHERE id = ? AND status = ?`,
		string(models.WebhookEventPending), id, string(models.WebhookEventFailed))
	if err != nil {
		return fmt.Errorf("reset webhook event: %w", err)
	}
	return requireAffected(res, ErrWebhookEventNotFound)
}

// ListWebhookEvents returns recent events, optionally filtered by status.
func (db *DB) ListWebhookEvents(ctx context.Context, status models.WebhookEventStatus, limit int) ([]models.WebhookEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + webhookColumns + ` FROM webhook_events`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY received_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query webhook events: %w", err)
	}
	defer closeWithLog(rows, "webhook event rows")

	var out []models.WebhookEvent
	for rows.Next() {
		e, err := scanWebhookEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanWebhookEvent(row rowScanner) (*models.WebhookEvent, error) {
	var e models.WebhookEvent
	var status, payload string
	var processed, dispatched sql.NullTime
	err := row.Scan(&e.ID, &e.EventID, &e.Vendor, &e.EventType, &e.LocationID, &payload, &status, &e.RetryCount,
		&e.ErrorMessage, &e.ReceivedAt, &processed, &dispatched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWebhookEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan webhook event: %w", err)
	}
	e.Status = models.WebhookEventStatus(status)
	e.Payload = []byte(payload)
	e.ProcessedAt = timePtr(processed)
	e.DispatchedAt = timePtr(dispatched)
	return &e, nil
}
