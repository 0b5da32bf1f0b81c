// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for errors.Is checks.
var (
	ErrAuthentication = errors.New("pos authentication failed")
	ErrTimeout        = errors.New("pos request timed out")
	ErrRateLimited    = errors.New("pos rate limit exceeded")
	ErrCircuitOpen    = errors.New("pos circuit breaker open")
)

// AuthenticationError is returned when credentials are missing or rejected.
type AuthenticationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthenticationError) Error() string {
	msg := "pos authentication failed"
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }
func (e *AuthenticationError) Unwrap() error        { return e.Err }

// TimeoutError is returned when a single attempt exceeds the per-request timeout.
type TimeoutError struct {
	Method  string
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pos request %s %s timed out after %s", e.Method, e.Path, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// RateLimitedError is returned when the vendor keeps answering 429.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("pos rate limit exceeded (retry after %s)", e.RetryAfter)
	}
	return "pos rate limit exceeded"
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// APIError is a non-2xx vendor response.
type APIError struct {
	Code       string
	StatusCode int
	Message    string
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pos api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("pos api error %d: %s", e.StatusCode, e.Message)
}

// NetworkError wraps a transport-level failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("pos network error: %s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient POS failure worth retrying
// later: timeouts, 429, 5xx, network errors and an open circuit.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrCircuitOpen) {
		return true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsNotFound reports whether err is a vendor 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// ErrorCode returns the vendor error code carried by err, if any.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
