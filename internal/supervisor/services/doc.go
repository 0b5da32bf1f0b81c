// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package services adapts blocking servers and ticker loops to
// suture.Service so they can run under the supervisor tree.
package services
