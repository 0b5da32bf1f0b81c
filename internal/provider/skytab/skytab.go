// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package skytab

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/posclient"
	"github.com/tomtom215/orderbridge/internal/provider"
)

// Name is the registry key for this adapter.
const Name = "skytab"

// Vendor error codes treated as an already-cancelled ticket.
const (
	codeTicketNotFound      = "TICKET_NOT_FOUND"
	codeInvalidTicketStatus = "INVALID_TICKET_STATUS"
)

var errNoLocation = errors.New("skytab: no location guid configured")

// Adapter implements provider.Provider against the SkyTab REST API.
type Adapter struct {
	client       *posclient.Client
	locationGUID string
}

var _ provider.Provider = (*Adapter)(nil)

// New creates an adapter bound to a default POS location guid.
func New(client *posclient.Client, locationGUID string) *Adapter {
	return &Adapter{client: client, locationGUID: locationGUID}
}

// Name implements provider.Provider.
func (a *Adapter) Name() string { return Name }

// Authenticate implements provider.Provider.
func (a *Adapter) Authenticate(ctx context.Context) bool {
	return a.client.TestConnection(ctx)
}

func (a *Adapter) location(locationID string) (string, error) {
	if locationID != "" {
		return locationID, nil
	}
	if a.locationGUID == "" {
		return "", errNoLocation
	}
	return a.locationGUID, nil
}

// SyncFullMenu fetches and maps the complete catalog.
func (a *Adapter) SyncFullMenu(ctx context.Context, locationID string) (*provider.MenuSyncResult, error) {
	loc, err := a.location(locationID)
	if err != nil {
		return nil, err
	}

	var resp menuResponse
	if err := a.client.Get(ctx, "/locations/"+url.PathEscape(loc)+"/menu", &resp); err != nil {
		return nil, fmt.Errorf("skytab: fetch menu: %w", err)
	}

	items := mapItems(resp.Items, resp.Categories)
	groups, mods := mapModifierGroups(resp.ModifierGroups)

	logging.Debug().Str("location", loc).Int("items", len(items)).Int("modifiers", len(mods)).Msg("SkyTab menu fetched")

	return &provider.MenuSyncResult{
		Items:          items,
		Modifiers:      mods,
		ModifierGroups: groups,
		ItemCount:      len(items),
		ModifierCount:  len(mods),
	}, nil
}

// SyncMenuUpdates fetches catalog changes since a timestamp.
func (a *Adapter) SyncMenuUpdates(ctx context.Context, locationID string, since time.Time) (*provider.MenuUpdateResult, error) {
	loc, err := a.location(locationID)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339))
	path := "/locations/" + url.PathEscape(loc) + "/menu/changes?" + q.Encode()

	var resp menuChangesResponse
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("skytab: fetch menu changes: %w", err)
	}

	groups, mods := mapModifierGroups(resp.ModifierGroups)
	return &provider.MenuUpdateResult{
		Items:                   mapItems(resp.Items, resp.Categories),
		Modifiers:               mods,
		ModifierGroups:          groups,
		DeletedItemIDs:          resp.DeletedItemGUIDs,
		DeletedModifierGroupIDs: resp.DeletedModifierGroupGUIDs,
	}, nil
}

// SendOrder creates a ticket.
func (a *Adapter) SendOrder(ctx context.Context, order *provider.POSOrder) (*provider.OrderResult, error) {
	if order == nil {
		return nil, errors.New("skytab: order is nil")
	}
	loc, err := a.location(order.LocationID)
	if err != nil {
		return nil, err
	}

	var resp ticketResponse
	if err := a.client.Post(ctx, "/locations/"+url.PathEscape(loc)+"/tickets", buildTicket(order), &resp); err != nil {
		return nil, fmt.Errorf("skytab: create ticket: %w", err)
	}
	if resp.GUID == "" {
		return nil, errors.New("skytab: create ticket: response missing guid")
	}

	return &provider.OrderResult{
		POSOrderID: resp.GUID,
		Success:    true,
		Status:     provider.MapVendorStatus(resp.Status),
	}, nil
}

// GetOrderStatus polls a ticket's status.
func (a *Adapter) GetOrderStatus(ctx context.Context, posOrderID string) (models.OrderStatus, error) {
	var resp ticketResponse
	if err := a.client.Get(ctx, "/tickets/"+url.PathEscape(posOrderID), &resp); err != nil {
		return "", fmt.Errorf("skytab: get ticket: %w", err)
	}
	status, ok := provider.LookupVendorStatus(resp.Status)
	if !ok {
		return "", &provider.UnknownStatusError{Status: resp.Status}
	}
	return status, nil
}

// CancelOrder cancels a ticket. A ticket the vendor cannot find, or one
// already in a terminal state, counts as cancelled.
func (a *Adapter) CancelOrder(ctx context.Context, posOrderID, reason string) (bool, error) {
	err := a.client.Post(ctx, "/tickets/"+url.PathEscape(posOrderID)+"/cancel", cancelRequest{Reason: reason}, nil)
	if err == nil {
		return true, nil
	}

	switch code := posclient.ErrorCode(err); {
	case code == codeTicketNotFound, code == codeInvalidTicketStatus, posclient.IsNotFound(err):
		logging.Info().Str("pos_order_id", posOrderID).Str("code", code).Msg("SkyTab ticket already gone, treating cancel as done")
		return true, nil
	}
	return false, fmt.Errorf("skytab: cancel ticket: %w", err)
}

// UpdateItemAvailability sets an item's stock flag at locationID, or at the
// default location when it is empty.
func (a *Adapter) UpdateItemAvailability(ctx context.Context, locationID, itemID string, isAvailable bool) error {
	loc, err := a.location(locationID)
	if err != nil {
		return err
	}
	path := "/locations/" + url.PathEscape(loc) + "/stock/" + url.PathEscape(itemID)
	if err := a.client.Put(ctx, path, stockUpdateRequest{IsAvailable: isAvailable}, nil); err != nil {
		return fmt.Errorf("skytab: update stock: %w", err)
	}
	return nil
}

// GetUnavailableItems returns the guids of items currently out of stock.
func (a *Adapter) GetUnavailableItems(ctx context.Context, locationID string) ([]string, error) {
	loc, err := a.location(locationID)
	if err != nil {
		return nil, err
	}

	var resp stockResponse
	if err := a.client.Get(ctx, "/locations/"+url.PathEscape(loc)+"/stock?available=false", &resp); err != nil {
		return nil, fmt.Errorf("skytab: get stock: %w", err)
	}

	ids := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		if !it.IsAvailable {
			ids = append(ids, it.ItemGUID)
		}
	}
	return ids, nil
}
