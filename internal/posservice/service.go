// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posservice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/posclient"
	"github.com/tomtom215/orderbridge/internal/provider"
	"github.com/tomtom215/orderbridge/internal/retryqueue"
)

var (
	// ErrQueuedForRetry wraps a transient POS failure whose request was
	// stored for a deferred replay.
	ErrQueuedForRetry = errors.New("pos request queued for retry")

	// ErrSyncInProgress is returned when the location is already syncing.
	ErrSyncInProgress = errors.New("menu sync already in progress for location")

	// ErrNotSubmitted is returned for operations that need a POS ticket.
	ErrNotSubmitted = errors.New("order has not been submitted to the POS")

	// ErrOrderNotCancellable is returned for completed orders.
	ErrOrderNotCancellable = fmt.Errorf("%w: order is already completed", retryqueue.ErrNonRetryable)

	// ErrOrderCancelled is returned when submitting a cancelled order.
	ErrOrderCancelled = fmt.Errorf("%w: order is cancelled", retryqueue.ErrNonRetryable)

	// ErrMissingPOSItem is returned when an order line has no POS item id.
	ErrMissingPOSItem = fmt.Errorf("%w: order item has no POS item id", retryqueue.ErrNonRetryable)
)

// SyncError is returned by SyncMenu with the id of the failed sync log.
type SyncError struct {
	SyncLogID string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("menu sync %s failed: %v", e.SyncLogID, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// OrderRepository is the order persistence the service needs.
type OrderRepository interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderPOSSync(ctx context.Context, orderID string, u database.POSSyncUpdate) error
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, source models.StatusSource, note string) (bool, error)
	AppendStatusHistory(ctx context.Context, h *models.OrderStatusHistory) error
}

// MenuRepository is the menu persistence the service needs.
type MenuRepository interface {
	EnsureMenu(ctx context.Context, locationID, name string) (*models.Menu, error)
	SetMenuSynced(ctx context.Context, menuID string, at time.Time) error
	UpsertMenuItemByPOSID(ctx context.Context, it *models.MenuItem) (bool, error)
	MarkItemsUnavailableByPOSIDs(ctx context.Context, locationID string, posItemIDs []string) (int64, error)
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, id string, available bool) error
}

// LocationRepository resolves locations.
type LocationRepository interface {
	GetLocation(ctx context.Context, id string) (*models.Location, error)
}

// SyncLogRepository records menu sync attempts.
type SyncLogRepository interface {
	CreateSyncLog(ctx context.Context, l *models.SyncLog) error
	FinalizeSyncLog(ctx context.Context, l *models.SyncLog) error
}

// FailedRequestQueue stores transient failures for replay. *retryqueue.Queue satisfies it.
type FailedRequestQueue interface {
	Enqueue(ctx context.Context, payload models.FailedRequestPayload, errMsg string) (*models.FailedRequest, error)
	Sweep(ctx context.Context, r retryqueue.Replayer) (retryqueue.SweepResult, error)
}

// Auditor records audit events. *audit.Logger satisfies it.
type Auditor interface {
	Record(ctx context.Context, typ audit.EventType, outcome audit.Outcome, target *audit.Target, description string, metadata interface{})
}

// Notifier pushes live updates. *websocket.Hub satisfies it.
type Notifier interface {
	BroadcastOrderStatus(order *models.Order, source models.StatusSource)
	BroadcastMenuSync(log *models.SyncLog)
	BroadcastAvailability(locationID, menuItemID string, isAvailable bool)
}

// Deps are the collaborators of a Service. Auditor and Notifier are optional.
type Deps struct {
	Registry  *provider.Registry
	Orders    OrderRepository
	Menus     MenuRepository
	Locations LocationRepository
	SyncLogs  SyncLogRepository
	Queue     FailedRequestQueue
	Auditor   Auditor
	Notifier  Notifier
}

// Service orchestrates menu sync, order submission and availability
// updates between the local store and POS adapters.
type Service struct {
	registry  *provider.Registry
	orders    OrderRepository
	menus     MenuRepository
	locations LocationRepository
	syncLogs  SyncLogRepository
	queue     FailedRequestQueue
	auditor   Auditor
	notifier  Notifier

	syncLocks sync.Map // location id -> *sync.Mutex
	now       func() time.Time
}

var _ retryqueue.Replayer = (*Service)(nil)

// New creates a service.
func New(d Deps) *Service {
	return &Service{
		registry:  d.Registry,
		orders:    d.Orders,
		menus:     d.Menus,
		locations: d.Locations,
		syncLogs:  d.SyncLogs,
		queue:     d.Queue,
		auditor:   d.Auditor,
		notifier:  d.Notifier,
		now:       time.Now,
	}
}

// providerFor resolves a location and the adapter bound to it.
func (s *Service) providerFor(ctx context.Context, locationID string) (*models.Location, provider.Provider, error) {
	loc, err := s.locations.GetLocation(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.registry.ForLocation(loc)
	if err != nil {
		return nil, nil, err
	}
	return loc, p, nil
}

func (s *Service) record(ctx context.Context, typ audit.EventType, outcome audit.Outcome, target *audit.Target, description string, metadata interface{}) {
	if s.auditor != nil {
		s.auditor.Record(ctx, typ, outcome, target, description, metadata)
	}
}

// enqueue stores payload and returns ErrQueuedForRetry wrapping cause. When
// the queue write itself fails, cause is returned with that error joined.
func (s *Service) enqueue(ctx context.Context, payload models.FailedRequestPayload, cause error) error {
	req, err := s.queue.Enqueue(ctx, payload, cause.Error())
	if err != nil {
		return errors.Join(cause, fmt.Errorf("enqueue %s: %w", payload.RequestType(), err))
	}
	s.record(ctx, audit.EventTypeRetryRequeued, audit.OutcomeFailure,
		&audit.Target{ID: req.ID, Type: "failed_request"}, cause.Error(),
		map[string]string{"requestType": string(payload.RequestType())})
	return fmt.Errorf("%w: %w", ErrQueuedForRetry, cause)
}

// nonRetryable marks POS errors that a later replay cannot fix.
func nonRetryable(err error) error {
	if err == nil || posclient.IsRetryable(err) || errors.Is(err, retryqueue.ErrNonRetryable) {
		return err
	}
	return fmt.Errorf("%w: %w", retryqueue.ErrNonRetryable, err)
}

// TestConnection reports whether the location's POS accepts our credentials.
func (s *Service) TestConnection(ctx context.Context, locationID string) bool {
	_, p, err := s.providerFor(ctx, locationID)
	if err != nil {
		return false
	}
	return p.Authenticate(ctx)
}
