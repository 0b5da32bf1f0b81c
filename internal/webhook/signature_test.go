// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"errors"
	"strings"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"eventId":"evt-1"}`)
	secret := "s3cret"
	good := ComputeSignature(body, secret)

	tests := []struct {
		name      string
		signature string
		wantErr   error
	}{
		{"valid", good, nil},
		{"valid with prefix", "sha256=" + good, nil},
		{"valid uppercase", strings.ToUpper(good), nil},
		{"missing", "", ErrMissingSignature},
		{"wrong length", good[:10], ErrSignatureMismatch},
		{"wrong digest", ComputeSignature(body, "other"), ErrSignatureMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := VerifySignature(body, tt.signature, secret)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrSignatureVerification) {
				t.Errorf("%v should wrap ErrSignatureVerification", err)
			}
		})
	}
}

func TestVerifySignature_BodyTampered(t *testing.T) {
	t.Parallel()

	sig := ComputeSignature([]byte(`{"a":1}`), "k")
	if err := VerifySignature([]byte(`{"a":2}`), sig, "k"); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("tampered body accepted: %v", err)
	}
}
