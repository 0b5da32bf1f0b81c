// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package database

import (
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/tomtom215/orderbridge/internal/logging"
)

// Repository errors.
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrMenuNotFound         = errors.New("menu not found")
	ErrMenuItemNotFound     = errors.New("menu item not found")
	ErrSyncLogNotFound      = errors.New("sync log not found")
	ErrWebhookEventNotFound = errors.New("webhook event not found")
)

// closeWithLog closes a resource and logs any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource in error paths where Close errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
