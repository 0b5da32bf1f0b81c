// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/posclient"
	"github.com/tomtom215/orderbridge/internal/provider"
)

const cancelledByAPINote = "cancelled via API"

// SendOrder submits a local order to its location's POS.
//
// An order that already reached the POS is not sent again. A transient
// failure leaves the order pending, stores the request for replay and
// returns an error wrapping ErrQueuedForRetry. Any other failure marks the
// order's POS sync as failed.
func (s *Service) SendOrder(ctx context.Context, orderID string) (*provider.OrderResult, error) {
	return s.sendOrder(ctx, orderID, true)
}

func (s *Service) sendOrder(ctx context.Context, orderID string, enqueue bool) (*provider.OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.POSSyncStatus == models.POSSyncSynced && order.POSOrderID != "" {
		return &provider.OrderResult{POSOrderID: order.POSOrderID, Success: true, Status: order.Status}, nil
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, ErrOrderCancelled
	}

	loc, p, err := s.providerFor(ctx, order.LocationID)
	if err != nil {
		return nil, err
	}
	posOrder, err := buildPOSOrder(order, loc)
	if err != nil {
		s.markSubmitFailed(ctx, order, err)
		return nil, err
	}

	logger := logging.Ctx(ctx).With().Str(logging.FieldOrderID, order.ID).Str(logging.FieldVendor, p.Name()).Logger()
	target := &audit.Target{ID: order.ID, Type: "order"}

	result, sendErr := p.SendOrder(ctx, posOrder)
	if sendErr == nil && (result == nil || !result.Success) {
		msg := "POS rejected the order"
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		sendErr = errors.New(msg)
	}

	if sendErr != nil {
		if posclient.IsRetryable(sendErr) {
			if err := s.orders.UpdateOrderPOSSync(ctx, order.ID, database.POSSyncUpdate{
				Status:       models.POSSyncPending,
				ErrorMessage: sendErr.Error(),
			}); err != nil {
				logger.Error().Err(err).Msg("failed to record pending POS sync")
			}
			if !enqueue {
				return nil, sendErr
			}
			logger.Warn().Err(sendErr).Msg("order submission failed, queued for retry")
			metrics.RecordOrderSubmission("queued")
			s.record(ctx, audit.EventTypeOrderQueued, audit.OutcomeFailure, target, sendErr.Error(), nil)
			return nil, s.enqueue(ctx, models.OrderSubmitPayload{OrderID: order.ID, LocationID: order.LocationID}, sendErr)
		}

		logger.Error().Err(sendErr).Msg("order submission failed")
		s.markSubmitFailed(ctx, order, sendErr)
		return nil, nonRetryable(sendErr)
	}

	syncedAt := s.now().UTC()
	if err := s.orders.UpdateOrderPOSSync(ctx, order.ID, database.POSSyncUpdate{
		POSOrderID: result.POSOrderID,
		Status:     models.POSSyncSynced,
		SyncedAt:   &syncedAt,
	}); err != nil {
		return nil, fmt.Errorf("record POS submission: %w", err)
	}

	note := "Submitted to POS as " + result.POSOrderID
	changed := false
	if result.Status.Valid() && result.Status != models.OrderStatusPending {
		changed, err = s.orders.UpdateOrderStatus(ctx, order.ID, result.Status, models.StatusSourceSystem, note)
		if err != nil {
			return nil, err
		}
	}
	if !changed {
		if err := s.orders.AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID: order.ID,
			Status:  order.Status,
			Note:    note,
			Source:  models.StatusSourceSystem,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to append submission history")
		}
	}

	if changed && s.notifier != nil {
		if updated, err := s.orders.GetOrder(ctx, order.ID); err == nil {
			s.notifier.BroadcastOrderStatus(updated, models.StatusSourceSystem)
		}
	}

	logger.Info().Str("pos_order_id", result.POSOrderID).Msg("order submitted to POS")
	metrics.RecordOrderSubmission("success")
	s.record(ctx, audit.EventTypeOrderSubmitted, audit.OutcomeSuccess, target, note,
		map[string]string{"posOrderId": result.POSOrderID, "vendor": p.Name()})
	return result, nil
}

func (s *Service) markSubmitFailed(ctx context.Context, order *models.Order, cause error) {
	if err := s.orders.UpdateOrderPOSSync(ctx, order.ID, database.POSSyncUpdate{
		Status:       models.POSSyncFailed,
		ErrorMessage: cause.Error(),
	}); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str(logging.FieldOrderID, order.ID).Msg("failed to record POS sync failure")
	}
	metrics.RecordOrderSubmission("failed")
	s.record(ctx, audit.EventTypeOrderSubmitFailed, audit.OutcomeFailure,
		&audit.Target{ID: order.ID, Type: "order"}, cause.Error(), nil)
}

// buildPOSOrder maps a local order to the vendor-neutral submission shape.
func buildPOSOrder(order *models.Order, loc *models.Location) (*provider.POSOrder, error) {
	items := make([]provider.POSOrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		if it.POSItemID == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPOSItem, it.Name)
		}
		mods := make([]provider.POSOrderModifier, 0, len(it.Modifiers))
		for _, m := range it.Modifiers {
			mods = append(mods, provider.POSOrderModifier{
				POSModifierID: m.POSModifierID,
				Name:          m.Name,
				Price:         m.Price,
				Quantity:      m.Quantity,
			})
		}
		items = append(items, provider.POSOrderItem{
			POSItemID:           it.POSItemID,
			Name:                it.Name,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			SpecialInstructions: it.SpecialInstructions,
			Modifiers:           mods,
		})
	}

	return &provider.POSOrder{
		LocationID:        loc.POSLocationID,
		ExternalReference: order.ID,
		OrderType:         order.OrderType,
		Customer: provider.POSCustomer{
			Name:  order.CustomerName,
			Phone: order.CustomerPhone,
			Email: order.CustomerEmail,
		},
		DeliveryAddress:     order.DeliveryAddress,
		SpecialInstructions: order.SpecialInstructions,
		ScheduledFor:        order.ScheduledFor,
		Items:               items,
		Subtotal:            order.Subtotal,
		Tax:                 order.Tax,
		Tip:                 order.Tip,
		DeliveryFee:         order.DeliveryFee,
		Total:               order.Total,
	}, nil
}

// CancelOrder cancels an order locally and, when it has a POS ticket, on
// the POS. Cancelling a cancelled order is a no-op. When the POS call fails
// transiently the local cancel still happens, the POS cancel is queued and
// the returned error wraps ErrQueuedForRetry.
func (s *Service) CancelOrder(ctx context.Context, orderID, reason string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	switch {
	case order.Status == models.OrderStatusCancelled:
		return nil
	case order.Status.IsTerminal():
		return ErrOrderNotCancellable
	}

	var queued error
	if order.POSOrderID != "" {
		_, p, err := s.providerFor(ctx, order.LocationID)
		if err != nil {
			return err
		}
		if _, err := p.CancelOrder(ctx, order.POSOrderID, reason); err != nil {
			if !posclient.IsRetryable(err) {
				return nonRetryable(err)
			}
			queued = s.enqueue(ctx, models.OrderCancelPayload{
				OrderID:    order.ID,
				LocationID: order.LocationID,
				POSOrderID: order.POSOrderID,
				Reason:     reason,
			}, err)
		}
	}

	note := reason
	if note == "" {
		note = cancelledByAPINote
	}
	changed, err := s.orders.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled, models.StatusSourceAPI, note)
	if err != nil {
		return err
	}
	if changed && s.notifier != nil {
		if updated, err := s.orders.GetOrder(ctx, order.ID); err == nil {
			s.notifier.BroadcastOrderStatus(updated, models.StatusSourceAPI)
		}
	}

	outcome := audit.OutcomeSuccess
	if queued != nil {
		outcome = audit.OutcomeUnknown
	}
	s.record(ctx, audit.EventTypeOrderCancelled, outcome, &audit.Target{ID: order.ID, Type: "order"}, note,
		map[string]string{"posOrderId": order.POSOrderID})
	return queued
}

// RefreshOrderStatus polls the POS for an order's status and applies it.
func (s *Service) RefreshOrderStatus(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.POSOrderID == "" {
		return nil, ErrNotSubmitted
	}
	_, p, err := s.providerFor(ctx, order.LocationID)
	if err != nil {
		return nil, err
	}
	status, err := p.GetOrderStatus(ctx, order.POSOrderID)
	if errors.Is(err, provider.ErrUnknownVendorStatus) {
		logging.Ctx(ctx).Warn().Err(err).Str(logging.FieldOrderID, order.ID).Msg("ignoring unrecognized POS status")
		return order, nil
	}
	if err != nil {
		return nil, err
	}

	changed, err := s.orders.UpdateOrderStatus(ctx, order.ID, status, models.StatusSourceSystem, "polled from POS")
	if err != nil {
		return nil, err
	}
	if !changed {
		return order, nil
	}

	updated, err := s.orders.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BroadcastOrderStatus(updated, models.StatusSourceSystem)
	}
	s.record(ctx, audit.EventTypeOrderStatusPolled, audit.OutcomeSuccess, &audit.Target{ID: order.ID, Type: "order"},
		fmt.Sprintf("%s -> %s", order.Status, updated.Status), nil)
	return updated, nil
}
