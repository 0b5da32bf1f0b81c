// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package posclient provides the authenticated HTTP transport for a POS vendor API.

Every call made through Client.Do goes through the same pipeline:

 1. Bearer token from the cache, refreshed by a single credential exchange
    when missing or within TokenRefreshBuffer of expiry
 2. Client-side sliding-window rate limit (RateLimitRequests per RateLimitWindow)
 3. Per-attempt timeout
 4. Retry with exponential backoff on 5xx, 429 and network errors
 5. Circuit breaker (sony/gobreaker) counting only transient failures

Errors are classified for callers:

	err := client.Do(ctx, http.MethodPost, "/locations/abc/tickets", ticket, &out)
	if posclient.IsRetryable(err) {
	    // queue for a later replay
	}

IsRetryable reports true for *TimeoutError, *RateLimitedError, *NetworkError,
5xx *APIError and ErrCircuitOpen. *AuthenticationError and 4xx *APIError are
terminal.
*/
package posclient
