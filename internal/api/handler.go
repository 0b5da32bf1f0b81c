// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/provider"
	"github.com/tomtom215/orderbridge/internal/retryqueue"
)

// POSService is the orchestration surface the admin API drives.
// *posservice.Service satisfies it.
type POSService interface {
	SyncMenu(ctx context.Context, locationID string, fullSync bool) (*models.SyncLog, error)
	SendOrder(ctx context.Context, orderID string) (*provider.OrderResult, error)
	CancelOrder(ctx context.Context, orderID, reason string) error
	RefreshOrderStatus(ctx context.Context, orderID string) (*models.Order, error)
	UpdateAvailability(ctx context.Context, menuItemID string, isAvailable bool) (*models.MenuItem, error)
	RetryFailedRequests(ctx context.Context) (retryqueue.SweepResult, error)
	TestConnection(ctx context.Context, locationID string) bool
}

// RetryQueue is the read and requeue surface of the failed-request queue.
type RetryQueue interface {
	List(ctx context.Context, f retryqueue.Filter) ([]*models.FailedRequest, error)
	Get(ctx context.Context, id string) (*models.FailedRequest, error)
	Retry(ctx context.Context, id string) (*models.FailedRequest, error)
	Stats(ctx context.Context) (map[models.FailedRequestStatus]int, error)
}

// Store is the read side of the relational database used by the API.
type Store interface {
	Ping(ctx context.Context) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrderHistory(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
	GetSyncLog(ctx context.Context, id string) (*models.SyncLog, error)
	ListSyncLogs(ctx context.Context, locationID string, limit int) ([]models.SyncLog, error)
	ListWebhookEvents(ctx context.Context, status models.WebhookEventStatus, limit int) ([]models.WebhookEvent, error)
}

// AuditQuerier reads the audit trail. *audit.Logger satisfies it.
type AuditQuerier interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	service   POSService
	queue     RetryQueue
	store     Store
	audit     AuditQuerier
	startTime time.Time
}

// NewHandler creates the handler set. auditQuery may be nil.
func NewHandler(service POSService, queue RetryQueue, store Store, auditQuery AuditQuerier) *Handler {
	return &Handler{
		service:   service,
		queue:     queue,
		store:     store,
		audit:     auditQuery,
		startTime: time.Now(),
	}
}

// HealthLive reports that the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 503 until the database answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   map[string]interface{}{"ready": false, "database": false},
			Error:  &models.APIError{Code: "NOT_READY", Message: "database unavailable"},
		})
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"ready": true, "database": true})
}
