// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package mock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/provider"
)

// Name is the registry key for the mock adapter.
const Name = "mock"

// DefaultStatusStep is the delay between simulated status transitions.
const DefaultStatusStep = 5 * time.Second

// ErrTicketNotFound is returned by GetOrderStatus for unknown ids.
var ErrTicketNotFound = errors.New("mock: ticket not found")

// progression is the simulated kitchen lifecycle after submission.
var progression = []models.OrderStatus{
	models.OrderStatusConfirmed,
	models.OrderStatusPreparing,
	models.OrderStatusReady,
}

type ticket struct {
	order  provider.POSOrder
	status models.OrderStatus
	timers []*time.Timer
}

// StatusListener observes simulated status transitions.
type StatusListener func(posOrderID string, status models.OrderStatus)

// Provider simulates a POS entirely in memory.
type Provider struct {
	step time.Duration

	mu          sync.Mutex
	tickets     map[string]*ticket
	unavailable map[string]bool
	listener    StatusListener
	closed      bool
}

var _ provider.Provider = (*Provider)(nil)

// New creates a mock provider. step <= 0 uses DefaultStatusStep.
func New(step time.Duration) *Provider {
	if step <= 0 {
		step = DefaultStatusStep
	}
	return &Provider{
		step:        step,
		tickets:     make(map[string]*ticket),
		unavailable: make(map[string]bool),
	}
}

// OnStatusChange registers a listener for simulated transitions.
func (p *Provider) OnStatusChange(l StatusListener) {
	p.mu.Lock()
	p.listener = l
	p.mu.Unlock()
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return Name }

// Authenticate implements provider.Provider.
func (p *Provider) Authenticate(context.Context) bool { return true }

// SyncFullMenu returns the static sample catalog with current availability.
func (p *Provider) SyncFullMenu(ctx context.Context, _ string) (*provider.MenuSyncResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := p.catalogItems()
	groups, mods := sampleModifiers()
	return &provider.MenuSyncResult{
		Items:          items,
		Modifiers:      mods,
		ModifierGroups: groups,
		ItemCount:      len(items),
		ModifierCount:  len(mods),
	}, nil
}

// SyncMenuUpdates returns the full catalog as the delta; the mock keeps no change log.
func (p *Provider) SyncMenuUpdates(ctx context.Context, _ string, _ time.Time) (*provider.MenuUpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	groups, mods := sampleModifiers()
	return &provider.MenuUpdateResult{
		Items:          p.catalogItems(),
		Modifiers:      mods,
		ModifierGroups: groups,
	}, nil
}

// SendOrder stores the order and schedules its status progression.
func (p *Provider) SendOrder(ctx context.Context, order *provider.POSOrder) (*provider.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("mock: order is nil")
	}

	id := "mock-ticket-" + uuid.NewString()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, errors.New("mock: provider closed")
	}

	t := &ticket{order: *order, status: models.OrderStatusPending}
	for i, next := range progression {
		status := next
		t.timers = append(t.timers, time.AfterFunc(time.Duration(i+1)*p.step, func() {
			p.advance(id, status)
		}))
	}
	p.tickets[id] = t

	logging.Debug().Str("pos_order_id", id).Str("external_reference", order.ExternalReference).Msg("Mock POS ticket created")

	return &provider.OrderResult{POSOrderID: id, Success: true, Status: models.OrderStatusPending}, nil
}

// advance applies a scheduled transition unless the ticket is already terminal.
func (p *Provider) advance(id string, status models.OrderStatus) {
	p.mu.Lock()
	t, ok := p.tickets[id]
	if !ok || t.status.IsTerminal() {
		p.mu.Unlock()
		return
	}
	t.status = status
	listener := p.listener
	p.mu.Unlock()

	if listener != nil {
		listener(id, status)
	}
}

// GetOrderStatus implements provider.Provider.
func (p *Provider) GetOrderStatus(ctx context.Context, posOrderID string) (models.OrderStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tickets[posOrderID]
	if !ok {
		return "", ErrTicketNotFound
	}
	return t.status, nil
}

// CancelOrder cancels a ticket. Unknown and terminal tickets report true.
func (p *Provider) CancelOrder(ctx context.Context, posOrderID, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tickets[posOrderID]
	if !ok || t.status.IsTerminal() {
		return true, nil
	}
	for _, timer := range t.timers {
		timer.Stop()
	}
	t.status = models.OrderStatusCancelled
	return true, nil
}

// UpdateItemAvailability implements provider.Provider.
func (p *Provider) UpdateItemAvailability(ctx context.Context, _, itemID string, isAvailable bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if isAvailable {
		delete(p.unavailable, itemID)
	} else {
		p.unavailable[itemID] = true
	}
	return nil
}

// GetUnavailableItems implements provider.Provider.
func (p *Provider) GetUnavailableItems(ctx context.Context, _ string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.unavailable))
	for id := range p.unavailable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close stops all pending status timers.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for _, t := range p.tickets {
		for _, timer := range t.timers {
			timer.Stop()
		}
	}
}

func (p *Provider) catalogItems() []provider.POSMenuItem {
	items := sampleItems()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range items {
		if p.unavailable[items[i].ID] {
			items[i].IsAvailable = false
		}
	}
	return items
}
