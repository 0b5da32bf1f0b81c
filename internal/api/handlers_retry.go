// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/retryqueue"
	"github.com/tomtom215/orderbridge/internal/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// RetryQueueQuery holds the query parameters of GET /retry-queue.
type RetryQueueQuery struct {
	Status      string `json:"status" validate:"omitempty,retrystatus"`
	RequestType string `json:"requestType" validate:"omitempty,requesttype"`
	Limit       int    `json:"limit" validate:"gte=1,lte=500"`
}

// RetryQueueList is the response of GET /retry-queue.
type RetryQueueList struct {
	Requests []*models.FailedRequest `json:"requests"`
	Count    int                     `json:"count"`
}

// SweepRetryQueue handles POST /api/v1/retry-queue/sweep.
func (h *Handler) SweepRetryQueue(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RetryFailedRequests(r.Context())
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, result)
}

// ListRetryQueue handles GET /api/v1/retry-queue.
func (h *Handler) ListRetryQueue(w http.ResponseWriter, r *http.Request) {
	q := RetryQueueQuery{
		Status:      r.URL.Query().Get("status"),
		RequestType: r.URL.Query().Get("requestType"),
		Limit:       queryInt(r, "limit", defaultListLimit),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    validation.ErrorCode,
			Message: verr.Error(),
			Details: verr.Details(),
		})
		return
	}

	reqs, err := h.queue.List(r.Context(), retryqueue.Filter{
		Status:      models.FailedRequestStatus(q.Status),
		RequestType: models.RequestType(q.RequestType),
		Limit:       q.Limit,
	})
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	if reqs == nil {
		reqs = []*models.FailedRequest{}
	}
	respondSuccess(w, r, http.StatusOK, RetryQueueList{Requests: reqs, Count: len(reqs)})
}

// GetFailedRequest handles GET /api/v1/retry-queue/{id}.
func (h *Handler) GetFailedRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.queue.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, req)
}

// RetryFailedRequest handles POST /api/v1/retry-queue/{id}/retry. Only
// abandoned requests can be requeued.
func (h *Handler) RetryFailedRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.queue.Retry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, req)
}

// RetryQueueStats handles GET /api/v1/retry-queue/stats.
func (h *Handler) RetryQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, stats)
}
