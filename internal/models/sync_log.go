// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package models

import "time"

// SyncType distinguishes full catalog syncs from delta syncs.
type SyncType string

const (
	SyncTypeFull        SyncType = "full"
	SyncTypeIncremental SyncType = "incremental"
)

// SyncStatus is the state of one menu sync attempt.
type SyncStatus string

const (
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// SyncLog records one menu sync attempt. It is created in_progress and
// finalized exactly once.
type SyncLog struct {
	ID              string     `json:"id"`
	LocationID      string     `json:"locationId"`
	SyncType        SyncType   `json:"syncType"`
	Status          SyncStatus `json:"status"`
	ItemsSynced     int        `json:"itemsSynced"`
	ModifiersSynced int        `json:"modifiersSynced"`
	ItemsDeleted    int        `json:"itemsDeleted"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
}

// Finalized reports whether the log has left in_progress.
func (l *SyncLog) Finalized() bool {
	return l.Status != SyncStatusInProgress
}
