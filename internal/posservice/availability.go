// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posservice

import (
	"context"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/posclient"
)

// UpdateAvailability changes a menu item's availability locally and pushes
// it to the POS. The local change always stands; a transient POS failure is
// queued and reported as ErrQueuedForRetry, any other POS failure is
// returned as is. Items without a POS id are only updated locally.
func (s *Service) UpdateAvailability(ctx context.Context, menuItemID string, isAvailable bool) (*models.MenuItem, error) {
	item, err := s.menus.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}

	if item.IsAvailable != isAvailable {
		if err := s.menus.SetMenuItemAvailability(ctx, item.ID, isAvailable); err != nil {
			return nil, err
		}
		item.SetAvailability(isAvailable)
		if s.notifier != nil {
			s.notifier.BroadcastAvailability(item.LocationID, item.ID, isAvailable)
		}
		s.record(ctx, audit.EventTypeItemAvailability, audit.OutcomeSuccess,
			&audit.Target{ID: item.ID, Type: "menu_item", Name: item.Name}, "availability changed",
			map[string]bool{"isAvailable": isAvailable})
	}

	if item.POSItemID == "" {
		return item, nil
	}
	loc, p, err := s.providerFor(ctx, item.LocationID)
	if err != nil {
		return item, err
	}
	if err := p.UpdateItemAvailability(ctx, loc.POSLocationID, item.POSItemID, isAvailable); err != nil {
		if posclient.IsRetryable(err) {
			logging.Ctx(ctx).Warn().Err(err).Str("menu_item_id", item.ID).Msg("availability push failed, queued for retry")
			return item, s.enqueue(ctx, models.AvailabilityUpdatePayload{
				LocationID:  item.LocationID,
				MenuItemID:  item.ID,
				POSItemID:   item.POSItemID,
				IsAvailable: isAvailable,
			}, err)
		}
		return item, err
	}
	return item, nil
}
