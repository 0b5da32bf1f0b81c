// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// RequestType tags the payload variant of a FailedRequest.
type RequestType string

const (
	RequestTypeOrderSubmit        RequestType = "order_submit"
	RequestTypeOrderCancel        RequestType = "order_cancel"
	RequestTypeAvailabilityUpdate RequestType = "availability_update"
)

// FailedRequestStatus is the retry lifecycle state.
//
//	pending -> retrying -> completed
//	                    -> pending (later nextRetryAt)
//	                    -> abandoned
type FailedRequestStatus string

const (
	FailedRequestPending   FailedRequestStatus = "pending"
	FailedRequestRetrying  FailedRequestStatus = "retrying"
	FailedRequestCompleted FailedRequestStatus = "completed"
	FailedRequestAbandoned FailedRequestStatus = "abandoned"
)

// IsTerminal reports whether the sweep must never select the row again.
func (s FailedRequestStatus) IsTerminal() bool {
	return s == FailedRequestCompleted || s == FailedRequestAbandoned
}

// ErrUnknownRequestType is returned when decoding a payload with an unregistered tag.
var ErrUnknownRequestType = errors.New("unknown failed request type")

// FailedRequestPayload is implemented by each payload variant.
type FailedRequestPayload interface {
	RequestType() RequestType
}

// OrderSubmitPayload re-submits a local order to the POS.
type OrderSubmitPayload struct {
	OrderID    string `json:"orderId"`
	LocationID string `json:"locationId"`
}

func (OrderSubmitPayload) RequestType() RequestType { return RequestTypeOrderSubmit }

// OrderCancelPayload re-attempts a POS ticket cancellation.
type OrderCancelPayload struct {
	OrderID    string `json:"orderId"`
	LocationID string `json:"locationId"`
	POSOrderID string `json:"posOrderId"`
	Reason     string `json:"reason,omitempty"`
}

func (OrderCancelPayload) RequestType() RequestType { return RequestTypeOrderCancel }

// AvailabilityUpdatePayload re-pushes an item availability change.
type AvailabilityUpdatePayload struct {
	LocationID  string `json:"locationId"`
	MenuItemID  string `json:"menuItemId"`
	POSItemID   string `json:"posItemId"`
	IsAvailable bool   `json:"isAvailable"`
}

func (AvailabilityUpdatePayload) RequestType() RequestType { return RequestTypeAvailabilityUpdate }

// DecodePayload unmarshals raw into the variant registered for rt.
func DecodePayload(rt RequestType, raw []byte) (FailedRequestPayload, error) {
	switch rt {
	case RequestTypeOrderSubmit:
		var p OrderSubmitPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", rt, err)
		}
		return p, nil
	case RequestTypeOrderCancel:
		var p OrderCancelPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", rt, err)
		}
		return p, nil
	case RequestTypeAvailabilityUpdate:
		var p AvailabilityUpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", rt, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequestType, rt)
	}
}

// FailedRequest is a synchronous POS call that failed retryably and is
// waiting for a deferred replay.
type FailedRequest struct {
	ID           string               `json:"id"`
	RequestType  RequestType          `json:"requestType"`
	Payload      FailedRequestPayload `json:"payload"`
	RetryCount   int                  `json:"retryCount"`
	MaxRetries   int                  `json:"maxRetries"`
	NextRetryAt  *time.Time           `json:"nextRetryAt,omitempty"`
	Status       FailedRequestStatus  `json:"status"`
	ErrorMessage string               `json:"errorMessage,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
	CompletedAt  *time.Time           `json:"completedAt,omitempty"`
}

// failedRequestJSON mirrors FailedRequest with a raw payload for two-phase decoding.
type failedRequestJSON struct {
	ID           string              `json:"id"`
	RequestType  RequestType         `json:"requestType"`
	Payload      json.RawMessage     `json:"payload"`
	RetryCount   int                 `json:"retryCount"`
	MaxRetries   int                 `json:"maxRetries"`
	NextRetryAt  *time.Time          `json:"nextRetryAt,omitempty"`
	Status       FailedRequestStatus `json:"status"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	CompletedAt  *time.Time          `json:"completedAt,omitempty"`
}

// MarshalJSON writes the payload under its request type tag.
func (r FailedRequest) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if r.Payload != nil {
		if r.Payload.RequestType() != r.RequestType {
			return nil, fmt.Errorf("payload type %q does not match request type %q", r.Payload.RequestType(), r.RequestType)
		}
		b, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(failedRequestJSON{
		ID:           r.ID,
		RequestType:  r.RequestType,
		Payload:      raw,
		RetryCount:   r.RetryCount,
		MaxRetries:   r.MaxRetries,
		NextRetryAt:  r.NextRetryAt,
		Status:       r.Status,
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		CompletedAt:  r.CompletedAt,
	})
}

// UnmarshalJSON decodes the payload into the variant named by requestType.
func (r *FailedRequest) UnmarshalJSON(data []byte) error {
	var aux failedRequestJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var payload FailedRequestPayload
	if len(aux.Payload) > 0 && string(aux.Payload) != "null" {
		p, err := DecodePayload(aux.RequestType, aux.Payload)
		if err != nil {
			return err
		}
		payload = p
	}

	*r = FailedRequest{
		ID:           aux.ID,
		RequestType:  aux.RequestType,
		Payload:      payload,
		RetryCount:   aux.RetryCount,
		MaxRetries:   aux.MaxRetries,
		NextRetryAt:  aux.NextRetryAt,
		Status:       aux.Status,
		ErrorMessage: aux.ErrorMessage,
		CreatedAt:    aux.CreatedAt,
		UpdatedAt:    aux.UpdatedAt,
		CompletedAt:  aux.CompletedAt,
	}
	return nil
}

// IsDue reports whether the sweep may select the request at now.
func (r *FailedRequest) IsDue(now time.Time) bool {
	if r.Status != FailedRequestPending && r.Status != FailedRequestRetrying {
		return false
	}
	if r.RetryCount >= r.MaxRetries {
		return false
	}
	return r.NextRetryAt == nil || !r.NextRetryAt.After(now)
}
