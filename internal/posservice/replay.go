// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posservice

import (
	"context"
	"fmt"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/retryqueue"
)

// Replay re-executes a stored request against the POS. It implements
// retryqueue.Replayer and never enqueues: the sweep owns rescheduling.
func (s *Service) Replay(ctx context.Context, req *models.FailedRequest) error {
	logger := logging.Ctx(ctx).With().Str("failed_request_id", req.ID).
		Str("request_type", string(req.RequestType)).Int("retry_count", req.RetryCount).Logger()
	logger.Debug().Msg("replaying failed POS request")

	switch p := req.Payload.(type) {
	case models.OrderSubmitPayload:
		_, err := s.sendOrder(ctx, p.OrderID, false)
		return err

	case models.OrderCancelPayload:
		_, prov, err := s.providerFor(ctx, p.LocationID)
		if err != nil {
			return nonRetryable(err)
		}
		if _, err := prov.CancelOrder(ctx, p.POSOrderID, p.Reason); err != nil {
			return nonRetryable(err)
		}
		logger.Info().Str(logging.FieldOrderID, p.OrderID).Str("pos_order_id", p.POSOrderID).Msg("POS cancellation replayed")
		return nil

	case models.AvailabilityUpdatePayload:
		loc, prov, err := s.providerFor(ctx, p.LocationID)
		if err != nil {
			return nonRetryable(err)
		}
		return nonRetryable(prov.UpdateItemAvailability(ctx, loc.POSLocationID, p.POSItemID, p.IsAvailable))

	default:
		return fmt.Errorf("%w: unsupported payload %T", retryqueue.ErrNonRetryable, req.Payload)
	}
}

// RetryFailedRequests runs one sweep of the failed-request queue now.
func (s *Service) RetryFailedRequests(ctx context.Context) (retryqueue.SweepResult, error) {
	return s.queue.Sweep(ctx, s)
}
