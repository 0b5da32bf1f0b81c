// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package retryqueue

import "errors"

var (
	// ErrNotFound is returned when no failed request has the given id.
	ErrNotFound = errors.New("failed request not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("retry queue is closed")

	// ErrSweepInProgress is returned when another sweep holds the lock.
	ErrSweepInProgress = errors.New("retry sweep already in progress")

	// ErrNonRetryable may be wrapped by a Replayer to abandon a row at once.
	ErrNonRetryable = errors.New("request is not retryable")

	// ErrNotAbandoned is returned by Retry for rows that are still live or completed.
	ErrNotAbandoned = errors.New("failed request is not abandoned")

	// ErrNilPayload is returned by Enqueue without a payload.
	ErrNilPayload = errors.New("failed request payload is required")
)
