// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package middleware provides the HTTP middleware shared by every route.

Chain order used by the API router:

	RequestID -> Recoverer -> AccessLog -> PrometheusMetrics -> handler

RequestID must run first so the access log and any handler logs carry the
request and correlation ids.
*/
package middleware
