// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package metrics defines the Prometheus collectors for OrderBridge.
//
// Collectors are registered with the default registry through promauto and
// exposed on /metrics. Components record through the Record* helpers rather
// than touching collectors directly:
//
//	metrics.RecordPOSRetry("rate_limited")
//	metrics.RecordWebhook("skytab", "accepted")
//	metrics.RecordRetryOutcome("order_submit", "completed")
package metrics
