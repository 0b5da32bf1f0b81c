// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package models defines the data types shared across OrderBridge packages:
// local orders and menus, the POS sync audit records (SyncLog, WebhookEvent),
// the failed-request retry record with its tagged payload union, and the
// admin API response envelope.
package models
