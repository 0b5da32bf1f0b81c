// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

/*
Package auth authenticates admin API callers with HS256 bearer tokens.

security.auth_mode selects the behavior:

  - none: every request passes with admin claims and is attributed to
    the system actor.
  - jwt:  requests need "Authorization: Bearer <token>" signed with
    security.jwt_secret. The token subject becomes the audit actor.

Authenticate only establishes who is calling. Which role may call which
route is decided afterwards by package authz.

Tokens are minted offline with "orderbridge -mint-token <name>".

Inbound POS webhooks do not pass through this package; they are
authenticated by their HMAC signature in package webhook.
*/
package auth
