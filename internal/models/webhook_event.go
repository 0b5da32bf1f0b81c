// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// WebhookEventStatus is the processing state of a received webhook.
type WebhookEventStatus string

const (
	WebhookEventPending   WebhookEventStatus = "pending"
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventFailed    WebhookEventStatus = "failed"
)

// WebhookEvent is one received webhook. EventID is unique and is the
// deduplication key.
type WebhookEvent struct {
	ID           string             `json:"id"`
	EventID      string             `json:"eventId"`
	Vendor       string             `json:"vendor"`
	EventType    string             `json:"eventType"`
	LocationID   string             `json:"locationId,omitempty"`
	Payload      json.RawMessage    `json:"payload"`
	Status       WebhookEventStatus `json:"status"`
	RetryCount   int                `json:"retryCount"`
	ErrorMessage string             `json:"errorMessage,omitempty"`
	ReceivedAt   time.Time          `json:"receivedAt"`
	ProcessedAt  *time.Time         `json:"processedAt,omitempty"`
	// DispatchedAt is the last hand-off to the event router.
	DispatchedAt *time.Time         `json:"dispatchedAt,omitempty"`
}
