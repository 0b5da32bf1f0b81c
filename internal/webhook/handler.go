// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/provider"
)

// VendorLookup resolves registered adapters. *provider.Registry satisfies it.
type VendorLookup interface {
	Get(name string) (provider.Provider, error)
}

// Handler serves POST /pos/{vendor}/webhook.
type Handler struct {
	receiver     *Receiver
	vendors      VendorLookup
	secret       string
	maxBodyBytes int64
	auditor      Auditor

	warnOnce sync.Once
}

// NewHandler creates the webhook endpoint. An empty secret disables
// signature verification.
func NewHandler(receiver *Receiver, vendors VendorLookup, secret string, maxBodyBytes int64, auditor Auditor) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Handler{
		receiver:     receiver,
		vendors:      vendors,
		secret:       secret,
		maxBodyBytes: maxBodyBytes,
		auditor:      auditor,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vendor := strings.ToLower(chi.URLParam(r, "vendor"))
	if _, err := h.vendors.Get(vendor); err != nil {
		metrics.RecordWebhook(vendor, "unknown_vendor")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown POS vendor"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read body"})
		return
	}

	if h.secret == "" {
		h.warnOnce.Do(func() {
			logging.Warn().Str("vendor", vendor).Msg("webhook secret not configured, skipping signature verification")
		})
	} else if err := VerifySignature(body, signatureFromRequest(r), h.secret); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("vendor", vendor).Str("remote_addr", r.RemoteAddr).
			Msg("webhook signature rejected")
		metrics.RecordWebhook(vendor, "rejected")
		if h.auditor != nil {
			h.auditor.Record(r.Context(), audit.EventTypeWebhookRejected, audit.OutcomeFailure,
				&audit.Target{ID: vendor, Type: "pos_vendor"}, err.Error(),
				map[string]string{"remoteAddr": r.RemoteAddr})
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
		return
	}

	writeJSON(w, http.StatusOK, h.receiver.Receive(r.Context(), vendor, body))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode webhook response")
	}
}
