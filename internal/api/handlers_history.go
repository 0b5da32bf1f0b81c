// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/validation"
)

type historyQuery struct {
	Status string `json:"status" validate:"omitempty,oneof=pending processed failed"`
	Limit  int    `json:"limit" validate:"gte=1,lte=500"`
}

func (h *Handler) parseHistoryQuery(w http.ResponseWriter, r *http.Request) (historyQuery, bool) {
	q := historyQuery{
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", defaultListLimit),
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondError(w, r, http.StatusBadRequest, &models.APIError{
			Code:    validation.ErrorCode,
			Message: verr.Error(),
			Details: verr.Details(),
		})
		return q, false
	}
	return q, true
}

// ListSyncLogs handles GET /api/v1/locations/{locationID}/sync-logs.
func (h *Handler) ListSyncLogs(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseHistoryQuery(w, r)
	if !ok {
		return
	}
	logs, err := h.store.ListSyncLogs(r.Context(), chi.URLParam(r, "locationID"), q.Limit)
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	if logs == nil {
		logs = []models.SyncLog{}
	}
	respondSuccess(w, r, http.StatusOK, logs)
}

// GetSyncLog handles GET /api/v1/sync-logs/{id}.
func (h *Handler) GetSyncLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.store.GetSyncLog(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, log)
}

// ListWebhookEvents handles GET /api/v1/webhook-events?status=.
func (h *Handler) ListWebhookEvents(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseHistoryQuery(w, r)
	if !ok {
		return
	}
	events, err := h.store.ListWebhookEvents(r.Context(), models.WebhookEventStatus(q.Status), q.Limit)
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	if events == nil {
		events = []models.WebhookEvent{}
	}
	respondSuccess(w, r, http.StatusOK, events)
}

// ListAuditEvents handles GET /api/v1/audit. Supported filters are type,
// outcome, target_id, since (RFC 3339) and limit.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		respondError(w, r, http.StatusNotFound, &models.APIError{Code: CodeNotFound, Message: "audit log disabled"})
		return
	}

	query := r.URL.Query()
	filter := audit.QueryFilter{
		TargetID: query.Get("target_id"),
		Limit:    queryInt(r, "limit", defaultListLimit),
	}
	if filter.Limit < 1 || filter.Limit > maxListLimit {
		filter.Limit = defaultListLimit
	}
	for _, t := range query["type"] {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	for _, o := range query["outcome"] {
		filter.Outcomes = append(filter.Outcomes, audit.Outcome(o))
	}
	if since := query.Get("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, &models.APIError{
				Code:    validation.ErrorCode,
				Message: "since must be an RFC 3339 timestamp",
			})
			return
		}
		filter.StartTime = &ts
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		respondServiceError(w, r, err, nil)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	respondSuccess(w, r, http.StatusOK, events)
}
