// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/orderbridge/internal/auth"
	"github.com/tomtom215/orderbridge/internal/authz"
	"github.com/tomtom215/orderbridge/internal/middleware"
	"github.com/tomtom215/orderbridge/internal/models"
)

// RouterDeps collects everything NewRouter mounts.
type RouterDeps struct {
	Handler    *Handler
	Middleware *ChiMiddleware
	Auth       *auth.Middleware
	Authz      *authz.Middleware

	// Webhook serves POST /pos/{vendor}/webhook.
	Webhook http.Handler
	// OrderFeed serves the websocket order status feed. Optional.
	OrderFeed http.Handler
}

// NewRouter builds the chi router with the public, webhook and admin groups.
func NewRouter(d RouterDeps) http.Handler {
	h := d.Handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(d.Middleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, &models.APIError{Code: CodeNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, &models.APIError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if d.OrderFeed != nil {
		r.Method(http.MethodGet, "/ws/orders", d.OrderFeed)
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Middleware.RateLimit())
		r.Method(http.MethodPost, "/pos/{vendor}/webhook", d.Webhook)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(d.Middleware.RateLimit())

		// Which role reaches which route is decided by the authz policy.
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Authenticate)
			r.Use(d.Authz.Authorize)

			r.Post("/locations/{locationID}/menu/sync", h.SyncMenu)
			r.Get("/locations/{locationID}/pos/health", h.POSHealth)
			r.Get("/locations/{locationID}/sync-logs", h.ListSyncLogs)
			r.Get("/sync-logs/{id}", h.GetSyncLog)

			r.Get("/orders/{orderID}", h.GetOrder)
			r.Post("/orders/{orderID}/submit", h.SubmitOrder)
			r.Post("/orders/{orderID}/cancel", h.CancelOrder)
			r.Post("/orders/{orderID}/refresh-status", h.RefreshOrderStatus)

			r.Put("/menu-items/{itemID}/availability", h.UpdateAvailability)
			r.Get("/webhook-events", h.ListWebhookEvents)

			r.Route("/retry-queue", func(r chi.Router) {
				r.Get("/", h.ListRetryQueue)
				r.Get("/stats", h.RetryQueueStats)
				r.Post("/sweep", h.SweepRetryQueue)
				r.Get("/{id}", h.GetFailedRequest)
				r.Post("/{id}/retry", h.RetryFailedRequest)
			})
			r.Get("/audit", h.ListAuditEvents)
		})
	})

	return r
}
