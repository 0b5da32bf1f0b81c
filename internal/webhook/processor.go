// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/provider"
)

// Store is the persistence the webhook pipeline needs. *database.DB satisfies it.
type Store interface {
	InsertWebhookEvent(ctx context.Context, e *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	GetWebhookEvent(ctx context.Context, id string) (*models.WebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id string, at time.Time) error
	MarkWebhookFailed(ctx context.Context, id, errMsg string) error
	ResetWebhookPending(ctx context.Context, id string) error
	MarkWebhookDispatched(ctx context.Context, id string, at time.Time) error

	GetOrder(ctx context.Context, id string) (*models.Order, error)
	FindOrderByPOSOrderID(ctx context.Context, posOrderID string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, source models.StatusSource, note string) (bool, error)

	FindLocationByPOSID(ctx context.Context, posLocationID string) (*models.Location, error)
	ClearMenuSync(ctx context.Context, locationID string) (int64, error)
	TouchMenuItems(ctx context.Context, locationID string, posItemIDs []string, at time.Time) (int64, error)
	FindMenuItemByPOSID(ctx context.Context, locationID, posItemID string) (*models.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, id string, available bool) error
}

// Auditor records audit events. *audit.Logger satisfies it.
type Auditor interface {
	Record(ctx context.Context, typ audit.EventType, outcome audit.Outcome, target *audit.Target, description string, metadata interface{})
}

// Notifier pushes live updates. *websocket.Hub satisfies it.
type Notifier interface {
	BroadcastOrderStatus(order *models.Order, source models.StatusSource)
	BroadcastAvailability(locationID, menuItemID string, isAvailable bool)
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

// IsPermanent reports whether err came from an event that will never apply.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Processor applies stored webhook events to local state.
type Processor struct {
	store    Store
	auditor  Auditor
	notifier Notifier
	now      func() time.Time
}

// NewProcessor creates a processor. auditor and notifier may be nil.
func NewProcessor(store Store, auditor Auditor, notifier Notifier) *Processor {
	return &Processor{store: store, auditor: auditor, notifier: notifier, now: time.Now}
}

// Process applies the webhook_events row with the given id. Rows already
// processed are skipped. A failure marks the row failed; only failures that
// may succeed on another attempt are returned.
func (p *Processor) Process(ctx context.Context, rowID string) error {
	row, err := p.store.GetWebhookEvent(ctx, rowID)
	if errors.Is(err, database.ErrWebhookEventNotFound) {
		logging.Warn().Str("webhook_event_id", rowID).Msg("webhook event row missing, dropping message")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load webhook event: %w", err)
	}
	if row.Status == models.WebhookEventProcessed {
		logging.Debug().Str(logging.FieldEventID, row.EventID).Msg("webhook event already processed")
		return nil
	}

	start := p.now()
	perr := p.apply(ctx, row)
	metrics.RecordWebhookProcessing(row.EventType, p.now().Sub(start), perr)

	if perr != nil {
		logging.Warn().Err(perr).Str(logging.FieldEventID, row.EventID).Str("event_type", row.EventType).
			Msg("webhook event processing failed")
		if err := p.store.MarkWebhookFailed(ctx, row.ID, perr.Error()); err != nil {
			return fmt.Errorf("mark webhook failed: %w", err)
		}
		if IsPermanent(perr) {
			return nil
		}
		return perr
	}

	if err := p.store.MarkWebhookProcessed(ctx, row.ID, p.now().UTC()); err != nil {
		return fmt.Errorf("mark webhook processed: %w", err)
	}
	logging.Debug().Str(logging.FieldEventID, row.EventID).Str("event_type", row.EventType).Msg("webhook event processed")
	return nil
}

func (p *Processor) apply(ctx context.Context, row *models.WebhookEvent) error {
	env, err := ParseEnvelope(row.Payload)
	if err != nil {
		return permanent(fmt.Errorf("decode envelope: %w", err))
	}
	env.Timestamp = EventTime{Time: env.OccurredAt(row.ReceivedAt)}
	ctx = audit.ContextWithActor(ctx, audit.POSActor(row.Vendor))

	switch env.EventType {
	case EventTicketCreated, EventTicketUpdated, EventTicketStatusChanged:
		return p.applyTicketStatus(ctx, env, false)
	case EventTicketCancelled:
		return p.applyTicketStatus(ctx, env, true)
	case EventMenuUpdated, EventItemAvailabilityChanged:
		return p.applyMenuChange(ctx, env)
	case EventStockUpdated:
		return p.applyStock(ctx, env)
	case EventLocationHoursChanged:
		return p.applyHours(ctx, env)
	default:
		logging.Info().Str("event_type", env.EventType).Str(logging.FieldEventID, env.EventID).Msg("ignoring unknown webhook event type")
		return nil
	}
}

func (p *Processor) findOrder(ctx context.Context, d TicketData) (*models.Order, error) {
	if d.TicketGUID != "" {
		o, err := p.store.FindOrderByPOSOrderID(ctx, d.TicketGUID)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, database.ErrOrderNotFound) {
			return nil, err
		}
	}
	if d.ExternalReference != "" {
		return p.store.GetOrder(ctx, d.ExternalReference)
	}
	return nil, database.ErrOrderNotFound
}

func (p *Processor) applyTicketStatus(ctx context.Context, env *Envelope, cancelled bool) error {
	var d TicketData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		return permanent(fmt.Errorf("decode ticket data: %w", err))
	}

	order, err := p.findOrder(ctx, d)
	if errors.Is(err, database.ErrOrderNotFound) {
		logging.Info().Str("ticket_guid", d.TicketGUID).Str("external_reference", d.ExternalReference).
			Msg("webhook references unknown order")
		return nil
	}
	if err != nil {
		return err
	}

	status := models.OrderStatusCancelled
	note := d.Reason
	if !cancelled {
		mapped, ok := provider.LookupVendorStatus(d.Status)
		if !ok {
			logging.Info().Str(logging.FieldOrderID, order.ID).Str("vendor_status", d.Status).Msg("ignoring unknown vendor status")
			return nil
		}
		status = mapped
		note = fmt.Sprintf("%s via %s", d.Status, env.EventType)
	} else if note == "" {
		note = "cancelled by POS"
	}

	changed, err := p.store.UpdateOrderStatus(ctx, order.ID, status, models.StatusSourceWebhook, note)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	order.Status = status
	if p.notifier != nil {
		p.notifier.BroadcastOrderStatus(order, models.StatusSourceWebhook)
	}
	if cancelled && p.auditor != nil {
		p.auditor.Record(ctx, audit.EventTypeOrderCancelled, audit.OutcomeSuccess,
			&audit.Target{ID: order.ID, Type: "order"}, "order cancelled by POS", map[string]string{"reason": d.Reason, "occurredAt": env.Timestamp.Format(time.RFC3339)})
	}
	return nil
}

// resolveLocation returns nil without error for an unknown location guid.
func (p *Processor) resolveLocation(ctx context.Context, env *Envelope) (*models.Location, error) {
	loc, err := p.store.FindLocationByPOSID(ctx, env.LocationGUID)
	if errors.Is(err, database.ErrLocationNotFound) {
		logging.Info().Str("location_guid", env.LocationGUID).Str("event_type", env.EventType).
			Msg("webhook references unknown location")
		return nil, nil
	}
	return loc, err
}

func (p *Processor) applyMenuChange(ctx context.Context, env *Envelope) error {
	var d MenuData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return permanent(fmt.Errorf("decode menu data: %w", err))
		}
	}

	loc, err := p.resolveLocation(ctx, env)
	if err != nil || loc == nil {
		return err
	}

	if _, err := p.store.ClearMenuSync(ctx, loc.ID); err != nil {
		return err
	}
	ids := d.itemIDs()
	if _, err := p.store.TouchMenuItems(ctx, loc.ID, ids, p.now().UTC()); err != nil {
		return err
	}

	if env.EventType != EventItemAvailabilityChanged || d.IsAvailable == nil {
		return nil
	}
	for _, id := range ids {
		if err := p.setAvailability(ctx, loc.ID, id, *d.IsAvailable); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) applyStock(ctx context.Context, env *Envelope) error {
	var d StockData
	if err := json.Unmarshal(env.Data, &d); err != nil {
		return permanent(fmt.Errorf("decode stock data: %w", err))
	}

	loc, err := p.resolveLocation(ctx, env)
	if err != nil || loc == nil {
		return err
	}
	for _, it := range d.Items {
		if err := p.setAvailability(ctx, loc.ID, it.ItemGUID, it.IsAvailable); err != nil {
			return err
		}
	}
	return nil
}

// setAvailability skips vendor items we do not carry.
func (p *Processor) setAvailability(ctx context.Context, locationID, posItemID string, available bool) error {
	item, err := p.store.FindMenuItemByPOSID(ctx, locationID, posItemID)
	if errors.Is(err, database.ErrMenuItemNotFound) {
		logging.Debug().Str("pos_item_id", posItemID).Msg("availability change for unknown item")
		return nil
	}
	if err != nil {
		return err
	}
	if item.IsAvailable == available && item.Is86ed == !available {
		return nil
	}
	if err := p.store.SetMenuItemAvailability(ctx, item.ID, available); err != nil {
		return err
	}

	if p.notifier != nil {
		p.notifier.BroadcastAvailability(locationID, item.ID, available)
	}
	if p.auditor != nil {
		p.auditor.Record(ctx, audit.EventTypeItemAvailability, audit.OutcomeSuccess,
			&audit.Target{ID: item.ID, Type: "menu_item", Name: item.Name},
			"availability changed by POS", map[string]bool{"isAvailable": available})
	}
	return nil
}

func (p *Processor) applyHours(ctx context.Context, env *Envelope) error {
	loc, err := p.resolveLocation(ctx, env)
	if err != nil || loc == nil {
		return err
	}
	if p.auditor != nil {
		p.auditor.Record(ctx, audit.EventTypeLocationHoursChange, audit.OutcomeSuccess,
			&audit.Target{ID: loc.ID, Type: "location", Name: loc.Name},
			"location hours changed in POS", env.Data)
	}
	return nil
}
