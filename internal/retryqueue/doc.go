// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package retryqueue persists POS calls that failed with a retryable error and
replays them later with exponential backoff.

Rows live in BadgerDB under the "freq:" prefix as JSON-encoded
models.FailedRequest values. A sweep selects due rows (pending or retrying,
retryCount below maxRetries, nextRetryAt reached), hands each one to a
Replayer and records the outcome:

	pending -> retrying -> completed            (replay succeeded)
	                    -> pending, backoff     (retryable failure)
	                    -> abandoned            (retries exhausted or ErrNonRetryable)

Backoff after the n-th failure is min(1s * 2^n, MaxBackoff). Completed rows
expire after CompletedTTL; abandoned rows stay until an operator calls Retry.

Only one sweep runs at a time. A concurrent Sweep returns ErrSweepInProgress
so the scheduled Sweeper and an on-demand admin sweep never overlap.
*/
package retryqueue
