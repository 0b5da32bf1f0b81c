// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/posclient"
	"github.com/tomtom215/orderbridge/internal/posservice"
	"github.com/tomtom215/orderbridge/internal/provider"
	"github.com/tomtom215/orderbridge/internal/retryqueue"
)

// Error codes returned in the API envelope.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeUnprocessable  = "UNPROCESSABLE"
	CodePOSError       = "POS_ERROR"
	CodePOSAuth        = "POS_AUTH_FAILED"
	CodePOSUnavailable = "POS_UNAVAILABLE"
	CodeQueued         = "QUEUED_FOR_RETRY"
	CodeInternal       = "INTERNAL_ERROR"
)

// QueuedResponse is the 202 body for requests deferred to the retry queue.
type QueuedResponse struct {
	Queued bool        `json:"queued"`
	Reason string      `json:"reason"`
	Result interface{} `json:"result,omitempty"`
}

var notFoundErrors = []error{
	provider.ErrProviderNotFound,
	database.ErrOrderNotFound,
	database.ErrLocationNotFound,
	database.ErrMenuNotFound,
	database.ErrMenuItemNotFound,
	database.ErrSyncLogNotFound,
	database.ErrWebhookEventNotFound,
	retryqueue.ErrNotFound,
}

var conflictErrors = []error{
	posservice.ErrSyncInProgress,
	posservice.ErrOrderNotCancellable,
	posservice.ErrOrderCancelled,
	posservice.ErrNotSubmitted,
	retryqueue.ErrSweepInProgress,
	retryqueue.ErrNotAbandoned,
}

// classifyError maps a domain error to an HTTP status and API error.
func classifyError(err error) (int, *models.APIError) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound, &models.APIError{Code: CodeNotFound, Message: err.Error()}
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict, &models.APIError{Code: CodeConflict, Message: err.Error()}
		}
	}

	switch {
	case errors.Is(err, posservice.ErrMissingPOSItem):
		return http.StatusUnprocessableEntity, &models.APIError{Code: CodeUnprocessable, Message: err.Error()}
	case posclient.IsAuthError(err):
		return http.StatusBadGateway, &models.APIError{Code: CodePOSAuth, Message: err.Error()}
	case posclient.IsRetryable(err):
		return http.StatusServiceUnavailable, &models.APIError{Code: CodePOSUnavailable, Message: err.Error()}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, &models.APIError{Code: CodePOSUnavailable, Message: err.Error()}
	}

	var apiErr *posclient.APIError
	if errors.As(err, &apiErr) {
		details := map[string]interface{}{"status": apiErr.StatusCode}
		if apiErr.Code != "" {
			details["code"] = apiErr.Code
		}
		return http.StatusBadGateway, &models.APIError{Code: CodePOSError, Message: err.Error(), Details: details}
	}
	var syncErr *posservice.SyncError
	if errors.As(err, &syncErr) {
		return http.StatusBadGateway, &models.APIError{Code: CodePOSError, Message: err.Error(),
			Details: map[string]interface{}{"syncLogId": syncErr.SyncLogID}}
	}

	return http.StatusInternalServerError, &models.APIError{Code: CodeInternal, Message: "internal error"}
}

// respondServiceError writes err. Queued requests answer 202 with result.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, result interface{}) {
	if errors.Is(err, posservice.ErrQueuedForRetry) {
		respondSuccess(w, r, http.StatusAccepted, QueuedResponse{Queued: true, Reason: err.Error(), Result: result})
		return
	}

	status, apiErr := classifyError(err)
	logger := logging.Ctx(r.Context())
	ev := logger.Warn()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		ev = logger.Error()
	}
	ev.Err(err).Str("code", apiErr.Code).Str("path", sanitizeLogValue(r.URL.Path)).Msg("request failed")
	respondError(w, r, status, apiErr)
}
