// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package logging provides centralized zerolog-based structured logging for OrderBridge.
//
// A single global logger is configured once at startup from the logging
// section of the application config and used everywhere through the level
// helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//
//	logging.Info().Str("location_id", id).Int("items", n).Msg("menu sync completed")
//	logging.Err(err).Str("order_id", orderID).Msg("order submit failed")
//
// Request-scoped logging picks up request and correlation IDs placed in the
// context by the HTTP middleware:
//
//	logging.Ctx(ctx).Warn().Msg("webhook signature verification skipped")
//
// # Adapters
//
// Two adapters route third-party logging into zerolog:
//
//   - SlogHandler implements slog.Handler for sutureslog (supervisor events)
//   - WatermillAdapter implements watermill.LoggerAdapter for the webhook event router
//
// # Secrets
//
// POS credentials and access tokens must never be logged verbatim; use
// MaskSecret or SanitizeValue when a credential has to appear in a log line.
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
package logging
