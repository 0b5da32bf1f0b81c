// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package config loads and validates OrderBridge configuration.
//
// Configuration is layered with Koanf v2. Environment variables win over the
// YAML file, which wins over built-in defaults:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
//
// # POS Settings
//
// The pos section configures the vendor connection: base URL (sandbox or
// production), OAuth client credentials, API key, vendor location GUID,
// webhook signing secret, per-attempt timeout, retry policy and the outbound
// sliding-window rate limit.
//
//	POS_VENDOR=skytab
//	POS_CLIENT_ID=...
//	POS_CLIENT_SECRET=...
//	POS_LOCATION_GUID=...
//	POS_WEBHOOK_SECRET=...
//
// # Production Checks
//
// With ENVIRONMENT=production, Validate refuses to start without a webhook
// signing secret and without admin API authentication.
package config
