// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

// Package provider defines the vendor-neutral POS capability set, the neutral
// catalog and order shapes adapters translate to and from, the vendor status
// mapping shared by adapters and webhook processing, and the Registry that
// selects an adapter by vendor name.
//
// Adapters live in subpackages: skytab talks to a SkyTab-style REST API and
// mock simulates a POS in memory.
package provider
