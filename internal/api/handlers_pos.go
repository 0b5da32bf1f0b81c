// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MenuSyncRequest is the body of POST /locations/{locationID}/menu/sync.
type MenuSyncRequest struct {
	Full bool `json:"full"`
}

// CancelOrderRequest is the body of POST /orders/{orderID}/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// AvailabilityRequest is the body of PUT /menu-items/{itemID}/availability.
type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

// SyncMenu handles POST /api/v1/locations/{locationID}/menu/sync.
func (h *Handler) SyncMenu(w http.ResponseWriter, r *http.Request) {
	var req MenuSyncRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	log, err := h.service.SyncMenu(r.Context(), chi.URLParam(r, "locationID"), req.Full)
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, log)
}

// SubmitOrder handles POST /api/v1/orders/{orderID}/submit.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SendOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(w, r, err, result)
		return
	}
	respondSuccess(w, r, http.StatusOK, result)
}

// CancelOrder handles POST /api/v1/orders/{orderID}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if err := h.service.CancelOrder(r.Context(), orderID, req.Reason); err != nil {
		respondServiceError(w, r, err, map[string]interface{}{"orderId": orderID, "cancelled": true})
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"orderId": orderID, "cancelled": true})
}

// RefreshOrderStatus handles POST /api/v1/orders/{orderID}/refresh-status.
func (h *Handler) RefreshOrderStatus(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RefreshOrderStatus(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, order)
}

// GetOrder handles GET /api/v1/orders/{orderID}, including the status history.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	history, err := h.store.ListOrderHistory(r.Context(), orderID)
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"order": order, "history": history})
}

// UpdateAvailability handles PUT /api/v1/menu-items/{itemID}/availability.
func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item, err := h.service.UpdateAvailability(r.Context(), chi.URLParam(r, "itemID"), *req.IsAvailable)
	if err != nil {
		respondServiceError(w, r, err, item)
		return
	}
	respondSuccess(w, r, http.StatusOK, item)
}

// POSHealth handles GET /api/v1/locations/{locationID}/pos/health.
func (h *Handler) POSHealth(w http.ResponseWriter, r *http.Request) {
	connected := h.service.TestConnection(r.Context(), chi.URLParam(r, "locationID"))
	respondSuccess(w, r, http.StatusOK, map[string]bool{"connected": connected})
}
