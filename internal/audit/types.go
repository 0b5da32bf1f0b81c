// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	// Menu synchronization
	EventTypeMenuSyncStarted   EventType = "menu.sync_started"
	EventTypeMenuSyncCompleted EventType = "menu.sync_completed"
	EventTypeMenuSyncFailed    EventType = "menu.sync_failed"

	// Orders
	EventTypeOrderSubmitted    EventType = "order.submitted"
	EventTypeOrderQueued       EventType = "order.queued"
	EventTypeOrderSubmitFailed EventType = "order.submit_failed"
	EventTypeOrderCancelled    EventType = "order.cancelled"
	EventTypeOrderStatusPolled EventType = "order.status_polled"

	// Menu items
	EventTypeItemAvailability EventType = "item.availability_changed"

	// Webhooks
	EventTypeWebhookRejected     EventType = "webhook.rejected"
	EventTypeLocationHoursChange EventType = "location.hours_changed"

	// Retry queue
	EventTypeRetryRequeued EventType = "retry.requeued"

	// Admin API
	EventTypeAuthFailure EventType = "auth.failure"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityDebug:    0,
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeUnknown Outcome = "unknown"
)

// Event is one audit record.
type Event struct {
	ID            string          `json:"id"`
	Timestamp     time.Time       `json:"timestamp"`
	Type          EventType       `json:"type"`
	Severity      Severity        `json:"severity"`
	Outcome       Outcome         `json:"outcome"`
	Actor         Actor           `json:"actor"`
	Target        *Target         `json:"target,omitempty"`
	Action        string          `json:"action"`
	Description   string          `json:"description"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
}

// Actor is who performed an action.
type Actor struct {
	ID   string `json:"id"`
	Type string `json:"type"` // user, system, pos
	Name string `json:"name,omitempty"`
}

// Target is the object of an action.
type Target struct {
	ID   string `json:"id"`
	Type string `json:"type"` // order, location, menu_item, failed_request
	Name string `json:"name,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter narrows audit queries. Zero values match everything.
type QueryFilter struct {
	Types      []EventType `json:"types,omitempty"`
	Outcomes   []Outcome   `json:"outcomes,omitempty"`
	TargetID   string      `json:"target_id,omitempty"`
	TargetType string      `json:"target_type,omitempty"`
	StartTime  *time.Time  `json:"start_time,omitempty"`
	EndTime    *time.Time  `json:"end_time,omitempty"`
	Limit      int         `json:"limit,omitempty"`
	Offset     int         `json:"offset,omitempty"`
}
