// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package posservice orchestrates the platform's POS-facing operations.

It resolves each location's adapter through the provider registry and keeps
the local store consistent with the POS:

  - SyncMenu pulls the catalog (full or incremental) and records a sync log.
  - SendOrder, CancelOrder and RefreshOrderStatus drive the order lifecycle.
  - UpdateAvailability pushes an item's 86 state.

Transient POS failures (timeouts, rate limits, 5xx, network errors) are
written to the failed-request queue and surface as ErrQueuedForRetry. The
Service is also the queue's Replayer, so a sweep re-executes the stored
request through the same code path without enqueuing it again.

Only one menu sync runs per location at a time; a concurrent request gets
ErrSyncInProgress.
*/
package posservice
