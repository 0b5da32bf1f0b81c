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

	"github.com/google/uuid"

	"github.com/tomtom215/orderbridge/internal/models"
)

const syncLogColumns = `id, location_id, sync_type, status, items_synced, modifiers_synced, items_deleted,
	started_at, completed_at, error_message`

// CreateSyncLog inserts an in-progress sync log.
func (db *DB) CreateSyncLog(ctx context.Context, l *models.SyncLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.StartedAt.IsZero() {
		l.StartedAt = db.now()
	}
	l.Status = models.SyncStatusInProgress
	_, err := db.conn.ExecContext(ctx, `INSERT INTO sync_logs (`+syncLogColumns+`) VALUES (?, ?, ?, ?, 0, 0, 0, ?, NULL, '')`,
		l.ID, l.LocationID, string(l.SyncType), string(l.Status), l.StartedAt)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// FinalizeSyncLog writes the terminal state of a sync log. A log that is
// already finalized is left untouched.
func (db *DB) FinalizeSyncLog(ctx context.Context, l *models.SyncLog) error {
	if !l.Finalized() {
		return fmt.Errorf("sync log %s has no terminal status", l.ID)
	}
	if l.CompletedAt == nil {
		now := db.now()
		l.CompletedAt = &now
	}
	res, err := db.conn.ExecContext(ctx, `UPDATE sync_logs SET status = ?, items_synced = ?, modifiers_synced = ?,
		items_deleted = ?, completed_at = ?, error_message = ? WHERE id = ? AND status = ?`,
		string(l.Status), l.ItemsSynced, l.ModifiersSynced, l.ItemsDeleted, nullTime(l.CompletedAt), l.ErrorMessage,
		l.ID, string(models.SyncStatusInProgress))
	if err != nil {
		return fmt.Errorf("finalize sync log: %w", err)
	}
	return requireAffected(res, ErrSyncLogNotFound)
}

// GetSyncLog loads a sync log.
func (db *DB) GetSyncLog(ctx context.Context, id string) (*models.SyncLog, error) {
	return scanSyncLog(db.conn.QueryRowContext(ctx, `SELECT `+syncLogColumns+` FROM sync_logs WHERE id = ?`, id))
}

// ListSyncLogs returns a location's most recent sync logs.
func (db *DB) ListSyncLogs(ctx context.Context, locationID string, limit int) ([]models.SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.QueryContext(ctx, `SELECT `+syncLogColumns+` FROM sync_logs
		WHERE location_id = ? ORDER BY started_at DESC LIMIT ?`, locationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sync logs: %w", err)
	}
	defer closeWithLog(rows, "sync log rows")

	var out []models.SyncLog
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanSyncLog(row rowScanner) (*models.SyncLog, error) {
	var l models.SyncLog
	var syncType, status string
	var completed sql.NullTime
	err := row.Scan(&l.ID, &l.LocationID, &syncType, &status, &l.ItemsSynced, &l.ModifiersSynced, &l.ItemsDeleted,
		&l.StartedAt, &completed, &l.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSyncLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sync log: %w", err)
	}
	l.SyncType = models.SyncType(syncType)
	l.Status = models.SyncStatus(status)
	l.CompletedAt = timePtr(completed)
	return &l, nil
}
