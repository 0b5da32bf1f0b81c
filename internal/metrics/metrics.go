// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// POS client metrics
	POSRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_request_duration_seconds",
			Help:    "Duration of outbound POS API calls in seconds, including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "outcome"},
	)

	POSRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_requests_total",
			Help: "Total POS API attempts by method and status class",
		},
		[]string{"method", "status_class"},
	)

	POSRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_retries_total",
			Help: "Total POS API retries by reason",
		},
		[]string{"reason"}, // server_error, rate_limited, timeout, network
	)

	POSTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_token_refreshes_total",
			Help: "Total POS access token exchanges",
		},
		[]string{"outcome"},
	)

	POSRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pos_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the outbound POS rate limit window",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60},
		},
	)

	POSCircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pos_circuit_breaker_state",
			Help: "POS circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	POSCircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_circuit_breaker_transitions_total",
			Help: "Total POS circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Webhook metrics
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_webhooks_received_total",
			Help: "Total POS webhooks received by vendor and outcome",
		},
		[]string{"vendor", "outcome"}, // accepted, duplicate, invalid_signature, invalid_payload, error
	)

	WebhookProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_webhook_processing_duration_seconds",
			Help:    "Duration of asynchronous webhook event processing",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type", "outcome"},
	)

	// Failed-request queue metrics
	RetryQueueEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_retry_queue_enqueued_total",
			Help: "Total failed POS requests enqueued for retry",
		},
		[]string{"request_type"},
	)

	RetryQueueOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_retry_queue_outcomes_total",
			Help: "Total retry queue replay outcomes",
		},
		[]string{"request_type", "outcome"}, // completed, rescheduled, abandoned
	)

	RetryQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pos_retry_queue_depth",
			Help: "Failed POS requests by status",
		},
		[]string{"status"},
	)

	// Menu sync metrics
	MenuSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_menu_sync_duration_seconds",
			Help:    "Duration of POS menu synchronizations",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"sync_type", "outcome"},
	)

	MenuItemsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_menu_items_synced_total",
			Help: "Total menu items written by POS menu synchronization",
		},
		[]string{"sync_type"},
	)

	// Order submission metrics
	OrdersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_orders_submitted_total",
			Help: "Total order submissions to the POS by outcome",
		},
		[]string{"outcome"}, // synced, queued, failed
	)

	// HTTP API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Order status feed
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "order_feed_websocket_clients",
			Help: "Connected order status feed clients",
		},
	)
)

// StatusClass collapses an HTTP status into 2xx/3xx/4xx/5xx, or "error" for transport failures.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// RecordPOSAttempt records a single outbound attempt.
func RecordPOSAttempt(method string, status int) {
	POSRequestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
}

// RecordPOSRequest records a completed POS call including retries.
func RecordPOSRequest(method string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	POSRequestDuration.WithLabelValues(method, outcome).Observe(duration.Seconds())
}

// RecordPOSRetry records a retry with its cause.
func RecordPOSRetry(reason string) {
	POSRetriesTotal.WithLabelValues(reason).Inc()
}

// RecordTokenRefresh records a credential exchange.
func RecordTokenRefresh(err error) {
	if err != nil {
		POSTokenRefreshes.WithLabelValues("error").Inc()
		return
	}
	POSTokenRefreshes.WithLabelValues("success").Inc()
}

// RecordRateLimitWait records time blocked by the outbound limiter.
func RecordRateLimitWait(d time.Duration) {
	POSRateLimitWait.Observe(d.Seconds())
}

// RecordWebhook records a received webhook outcome.
func RecordWebhook(vendor, outcome string) {
	WebhooksReceived.WithLabelValues(vendor, outcome).Inc()
}

// RecordWebhookProcessing records asynchronous processing of one event.
func RecordWebhookProcessing(eventType string, duration time.Duration, err error) {
	outcome := "processed"
	if err != nil {
		outcome = "failed"
	}
	WebhookProcessingDuration.WithLabelValues(eventType, outcome).Observe(duration.Seconds())
}

// RecordRetryEnqueued records a failed request enrolled in the retry queue.
func RecordRetryEnqueued(requestType string) {
	RetryQueueEnqueued.WithLabelValues(requestType).Inc()
}

// RecordRetryOutcome records the result of one replay.
func RecordRetryOutcome(requestType, outcome string) {
	RetryQueueOutcomes.WithLabelValues(requestType, outcome).Inc()
}

// UpdateRetryQueueDepth sets the per-status gauge from a count map.
func UpdateRetryQueueDepth(counts map[string]int) {
	for status, n := range counts {
		RetryQueueDepth.WithLabelValues(status).Set(float64(n))
	}
}

// RecordMenuSync records a finished menu synchronization.
func RecordMenuSync(syncType string, duration time.Duration, items int, err error) {
	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	MenuSyncDuration.WithLabelValues(syncType, outcome).Observe(duration.Seconds())
	MenuItemsSynced.WithLabelValues(syncType).Add(float64(items))
}

// RecordOrderSubmission records an order submission outcome.
func RecordOrderSubmission(outcome string) {
	OrdersSubmitted.WithLabelValues(outcome).Inc()
}

// RecordAPIRequest records an HTTP API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
