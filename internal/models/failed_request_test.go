// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestFailedRequest_PayloadVariantSurvivesJSON(t *testing.T) {
	t.Parallel()

	next := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := FailedRequest{
		ID:          "fr-1",
		RequestType: RequestTypeAvailabilityUpdate,
		Payload: AvailabilityUpdatePayload{
			LocationID:  "loc-1",
			MenuItemID:  "mi-1",
			POSItemID:   "guid-1",
			IsAvailable: false,
		},
		MaxRetries:  5,
		NextRetryAt: &next,
		Status:      FailedRequestPending,
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"requestType":"availability_update"`) {
		t.Errorf("expected request type tag in %s", data)
	}

	var out FailedRequest
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, ok := out.Payload.(AvailabilityUpdatePayload)
	if !ok {
		t.Fatalf("payload type = %T, want AvailabilityUpdatePayload", out.Payload)
	}
	if p.POSItemID != "guid-1" || p.IsAvailable {
		t.Errorf("payload = %+v", p)
	}
}

func TestFailedRequest_UnknownTagRejected(t *testing.T) {
	t.Parallel()

	var out FailedRequest
	err := json.Unmarshal([]byte(`{"id":"x","requestType":"menu_push","payload":{"a":1}}`), &out)
	if !errors.Is(err, ErrUnknownRequestType) {
		t.Fatalf("expected ErrUnknownRequestType, got %v", err)
	}
}

func TestFailedRequest_MismatchedPayloadRejected(t *testing.T) {
	t.Parallel()

	_, err := json.Marshal(FailedRequest{
		RequestType: RequestTypeOrderCancel,
		Payload:     OrderSubmitPayload{OrderID: "o-1"},
	})
	if err == nil {
		t.Fatal("expected error for mismatched payload variant")
	}
}

func TestFailedRequest_IsDue(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		req  FailedRequest
		want bool
	}{
		{"pending without next retry", FailedRequest{Status: FailedRequestPending, MaxRetries: 3}, true},
		{"pending past due", FailedRequest{Status: FailedRequestPending, MaxRetries: 3, NextRetryAt: &past}, true},
		{"pending not yet due", FailedRequest{Status: FailedRequestPending, MaxRetries: 3, NextRetryAt: &future}, false},
		{"retrying due", FailedRequest{Status: FailedRequestRetrying, MaxRetries: 3, NextRetryAt: &past}, true},
		{"retries exhausted", FailedRequest{Status: FailedRequestPending, RetryCount: 3, MaxRetries: 3}, false},
		{"completed", FailedRequest{Status: FailedRequestCompleted, MaxRetries: 3}, false},
		{"abandoned", FailedRequest{Status: FailedRequestAbandoned, MaxRetries: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.req.IsDue(now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderStatus(t *testing.T) {
	t.Parallel()

	for _, s := range AllOrderStatuses {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if OrderStatus("eaten").Valid() {
		t.Error("unknown status should be invalid")
	}
	if !OrderStatusCancelled.IsTerminal() || !OrderStatusCompleted.IsTerminal() {
		t.Error("completed and cancelled should be terminal")
	}
	if OrderStatusOutForDelivery.IsTerminal() {
		t.Error("out_for_delivery should not be terminal")
	}
}

func TestMenuItem_SetAvailability(t *testing.T) {
	t.Parallel()

	item := MenuItem{IsAvailable: true}
	item.SetAvailability(false)
	if item.IsAvailable || !item.Is86ed {
		t.Errorf("after 86: %+v", item)
	}
	item.SetAvailability(true)
	if !item.IsAvailable || item.Is86ed {
		t.Errorf("after restore: %+v", item)
	}
}
