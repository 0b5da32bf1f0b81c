// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
)

// Ack is the body returned to the vendor. Received is always true.
type Ack struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Metadata keys set on dispatched messages.
const (
	MetadataEventID   = "event_id"
	MetadataEventType = "event_type"
	MetadataVendor    = "vendor"
)

// Dispatcher hands stored events to the processing pipeline.
type Dispatcher struct {
	pub   message.Publisher
	topic string
}

// NewDispatcher publishes to topic on pub.
func NewDispatcher(pub message.Publisher, topic string) *Dispatcher {
	return &Dispatcher{pub: pub, topic: topic}
}

// Dispatch publishes the webhook_events row id.
func (d *Dispatcher) Dispatch(ctx context.Context, row *models.WebhookEvent) error {
	msg := message.NewMessage(watermill.NewUUID(), []byte(row.ID))
	msg.Metadata.Set(MetadataEventID, row.EventID)
	msg.Metadata.Set(MetadataEventType, row.EventType)
	msg.Metadata.Set(MetadataVendor, row.Vendor)
	if cid := logging.CorrelationIDFromContext(ctx); cid != "" {
		msg.Metadata.Set("correlation_id", cid)
	}
	msg.SetContext(context.WithoutCancel(ctx))

	if err := d.pub.Publish(d.topic, msg); err != nil {
		return fmt.Errorf("publish webhook event %s: %w", row.EventID, err)
	}
	return nil
}

// Receiver records verified webhook bodies and dispatches them.
type Receiver struct {
	store      Store
	dispatcher *Dispatcher
}

// NewReceiver creates a receiver.
func NewReceiver(store Store, dispatcher *Dispatcher) *Receiver {
	return &Receiver{store: store, dispatcher: dispatcher}
}

// Receive stores body as a webhook event and dispatches it. The signature
// has already been checked. Errors are reported in the Ack, never returned,
// so the vendor always sees a 200.
func (r *Receiver) Receive(ctx context.Context, vendor string, body []byte) Ack {
	env, err := ParseEnvelope(body)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str(logging.FieldVendor, vendor).Msg("invalid webhook payload")
		metrics.RecordWebhook(vendor, "invalid")
		return Ack{Received: true, Error: "invalid payload: " + err.Error()}
	}

	row := &models.WebhookEvent{
		EventID:    env.EventID,
		Vendor:     vendor,
		EventType:  env.EventType,
		LocationID: env.LocationGUID,
		Payload:    body,
		Status:     models.WebhookEventPending,
	}
	inserted, existing, err := r.store.InsertWebhookEvent(ctx, row)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str(logging.FieldEventID, env.EventID).Msg("failed to store webhook event")
		metrics.RecordWebhook(vendor, "error")
		return Ack{Received: true, Error: "failed to store event"}
	}

	if !inserted {
		if existing.Status != models.WebhookEventFailed {
			logging.Ctx(ctx).Debug().Str(logging.FieldEventID, env.EventID).Str("status", string(existing.Status)).
				Msg("duplicate webhook event")
			metrics.RecordWebhook(vendor, "duplicate")
			return Ack{Received: true, Duplicate: true}
		}
		// A redelivery of a failed event is another attempt.
		if err := r.store.ResetWebhookPending(ctx, existing.ID); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str(logging.FieldEventID, env.EventID).Msg("failed to reset webhook event")
			metrics.RecordWebhook(vendor, "error")
			return Ack{Received: true, Error: "failed to retry event"}
		}
		row = existing
		metrics.RecordWebhook(vendor, "retried")
	} else {
		metrics.RecordWebhook(vendor, "accepted")
	}

	if err := r.dispatch(ctx, row); err != nil {
		// The row stays pending and is dispatched again by RedispatchPending.
		logging.Ctx(ctx).Error().Err(err).Str(logging.FieldEventID, env.EventID).Msg("failed to dispatch webhook event")
		return Ack{Received: true, Error: "failed to dispatch event"}
	}
	return Ack{Received: true}
}

// dispatch stamps the row before publishing so a concurrent redispatch sweep
// leaves it alone until the stamp goes stale.
func (r *Receiver) dispatch(ctx context.Context, row *models.WebhookEvent) error {
	if err := r.store.MarkWebhookDispatched(ctx, row.ID, time.Now().UTC()); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str(logging.FieldEventID, row.EventID).Msg("failed to stamp webhook dispatch")
	}
	return r.dispatcher.Dispatch(ctx, row)
}

// RedispatchPending publishes pending rows whose last dispatch, or receipt
// when never dispatched, is at least minAge old. It runs at startup to pick up
// events accepted but not dispatched before a restart, and periodically for
// rows whose publish was lost. Rows still inside their window are skipped.
func (r *Receiver) RedispatchPending(ctx context.Context, lister PendingLister, minAge time.Duration) (int, error) {
	rows, err := lister.ListStalePending(ctx, time.Now().UTC().Add(-minAge), 500)
	if err != nil {
		return 0, fmt.Errorf("list pending webhook events: %w", err)
	}
	n := 0
	for i := range rows {
		if err := r.dispatch(ctx, &rows[i]); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		logging.Info().Int("count", n).Msg("redispatched pending webhook events")
	}
	return n, nil
}

// PendingLister finds pending webhook events due for redispatch. *database.DB
// satisfies it.
type PendingLister interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.WebhookEvent, error)
}
