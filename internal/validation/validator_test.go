// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	Reason      string `json:"reason" validate:"max=10"`
	Status      string `json:"status,omitempty" validate:"omitempty,orderstatus"`
	RequestType string `json:"requestType,omitempty" validate:"omitempty,requesttype"`
	Limit       int    `json:"limit" validate:"gte=0,lte=100"`
	Available   *bool  `json:"isAvailable" validate:"required"`
}

func boolPtr(b bool) *bool { return &b }

func TestValidator_Singleton(t *testing.T) {
	t.Parallel()
	if Validator() != Validator() {
		t.Error("Validator() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     sampleRequest
		wantField string
		wantMsg   string
	}{
		{name: "valid", input: sampleRequest{Reason: "late", Status: "ready", Limit: 5, Available: boolPtr(false)}},
		{name: "missing pointer", input: sampleRequest{}, wantField: "isAvailable", wantMsg: "isAvailable is required"},
		{name: "reason too long", input: sampleRequest{Reason: strings.Repeat("x", 11), Available: boolPtr(true)},
			wantField: "reason", wantMsg: "reason must be at most 10 characters"},
		{name: "bad status", input: sampleRequest{Status: "shipped", Available: boolPtr(true)},
			wantField: "status", wantMsg: "status must be a valid order status"},
		{name: "bad request type", input: sampleRequest{RequestType: "refund", Available: boolPtr(true)},
			wantField: "requestType"},
		{name: "limit too high", input: sampleRequest{Limit: 101, Available: boolPtr(true)},
			wantField: "limit", wantMsg: "limit must be less than or equal to 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if len(err.Fields) != 1 || err.Fields[0].Field != tt.wantField {
				t.Fatalf("fields = %+v, want %s", err.Fields, tt.wantField)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
			if err.Details()["field"] != tt.wantField {
				t.Errorf("details = %v", err.Details())
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	t.Parallel()
	err := ValidateStruct(&sampleRequest{Reason: strings.Repeat("x", 20), Limit: -1})
	if err == nil || len(err.Fields) != 3 {
		t.Fatalf("err = %v, want 3 field errors", err)
	}
	if _, ok := err.Details()["fields"]; !ok {
		t.Errorf("details = %v, want fields list", err.Details())
	}
	if strings.Count(err.Error(), ";") != 2 {
		t.Errorf("message = %q", err.Error())
	}
}
