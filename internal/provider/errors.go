// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package provider

import (
	"errors"
	"fmt"
)

// ErrProviderNotFound matches any *ProviderNotFoundError.
var ErrProviderNotFound = errors.New("pos provider not found")

// ProviderNotFoundError is returned for an unregistered vendor name.
type ProviderNotFoundError struct {
	Vendor string
}

func (e *ProviderNotFoundError) Error() string {
	return fmt.Sprintf("no pos provider registered for vendor %q", e.Vendor)
}

func (e *ProviderNotFoundError) Is(target error) bool { return target == ErrProviderNotFound }

// ErrUnknownVendorStatus matches any *UnknownStatusError.
var ErrUnknownVendorStatus = errors.New("unknown vendor order status")

// UnknownStatusError is returned when a polled ticket carries a status
// with no local equivalent.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown vendor order status %q", e.Status)
}

func (e *UnknownStatusError) Is(target error) bool { return target == ErrUnknownVendorStatus }
