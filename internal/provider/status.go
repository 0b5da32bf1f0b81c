// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package provider

import (
	"strings"

	"github.com/tomtom215/orderbridge/internal/models"
)

var vendorStatuses = map[string]models.OrderStatus{
	"PENDING":          models.OrderStatusPending,
	"CONFIRMED":        models.OrderStatusConfirmed,
	"PREPARING":        models.OrderStatusPreparing,
	"IN_PROGRESS":      models.OrderStatusPreparing,
	"READY":            models.OrderStatusReady,
	"OUT_FOR_DELIVERY": models.OrderStatusOutForDelivery,
	"COMPLETED":        models.OrderStatusCompleted,
	"CLOSED":           models.OrderStatusCompleted,
	"CANCELLED":        models.OrderStatusCancelled,
	"VOIDED":           models.OrderStatusCancelled,
}

// MapVendorStatus maps a vendor ticket status to the local order status.
// Matching ignores case and surrounding space; anything unrecognized is pending.
func MapVendorStatus(status string) models.OrderStatus {
	if s, ok := LookupVendorStatus(status); ok {
		return s
	}
	return models.OrderStatusPending
}

// LookupVendorStatus is MapVendorStatus without the pending fallback.
func LookupVendorStatus(status string) (models.OrderStatus, bool) {
	s, ok := vendorStatuses[strings.ToUpper(strings.TrimSpace(status))]
	return s, ok
}

// KnownVendorStatuses returns the vendor status tokens MapVendorStatus recognizes.
func KnownVendorStatuses() []string {
	out := make([]string, 0, len(vendorStatuses))
	for k := range vendorStatuses {
		out = append(out, k)
	}
	return out
}
