// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package authz decides which roles may call which admin API routes, using a
Casbin RBAC model.

Requests pass through package auth first, which validates the bearer token
and stores its claims. Middleware.Authorize then asks the enforcer whether
the token role may perform the request:

	Request -> auth.Authenticate -> authz.Authorize -> Handler

The request is mapped to a Casbin triple:

  - sub: the role from the token (and the token subject, for per-user rules)
  - obj: the request path, matched with keyMatch2 so ":id" and "/*" work
  - act: read for GET and HEAD, write for POST, PUT and PATCH, delete for DELETE

# Policy

The built-in model.conf and policy.csv are embedded. The policy gives
operators the order, menu and sync routes and gives admins the retry queue
and audit routes. "g, admin, operator" makes admin inherit every operator
permission:

	p, operator, /api/v1/orders/:orderID/submit, write
	p, admin, /api/v1/retry-queue/*, write
	g, admin, operator

AUTHZ_POLICY_PATH points at a CSV file in the same format to replace the
built-in policy. Decisions are cached for AUTHZ_CACHE_TTL; the cache is
cleared whenever rules change.
*/
package authz
