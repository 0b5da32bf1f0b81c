// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Signature headers. The vendor-specific name is accepted as an alias.
const (
	SignatureHeader       = "X-Pos-Signature"
	SignatureHeaderSkyTab = "X-SkyTab-Signature"
)

// Signature errors. Both concrete errors wrap ErrSignatureVerification.
var (
	ErrSignatureVerification = errors.New("webhook signature verification failed")
	ErrMissingSignature      = fmt.Errorf("%w: missing signature", ErrSignatureVerification)
	ErrSignatureMismatch     = fmt.Errorf("%w: signature mismatch", ErrSignatureVerification)
)

// VerifySignature checks a hex HMAC-SHA256 of body against signature.
// An optional "sha256=" prefix is stripped.
func VerifySignature(body []byte, signature, secret string) error {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	if signature == "" {
		return ErrMissingSignature
	}

	expected := ComputeSignature(body, secret)
	if len(signature) != len(expected) {
		return ErrSignatureMismatch
	}
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return ErrSignatureMismatch
	}
	return nil
}

// ComputeSignature returns the lowercase hex HMAC-SHA256 of body.
func ComputeSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// signatureFromRequest returns the first non-empty signature header.
func signatureFromRequest(r *http.Request) string {
	if s := r.Header.Get(SignatureHeader); s != "" {
		return s
	}
	return r.Header.Get(SignatureHeaderSkyTab)
}
