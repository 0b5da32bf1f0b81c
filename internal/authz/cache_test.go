// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package authz

import (
	"testing"
	"time"
)

func TestDecisionCache_Expiry(t *testing.T) {
	t.Parallel()
	c := newDecisionCache(time.Hour)
	t.Cleanup(c.stop)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.set("operator", "/api/v1/audit", ActionRead, false)
	if allowed, ok := c.get("operator", "/api/v1/audit", ActionRead); !ok || allowed {
		t.Errorf("get = %v, %v; want false, true", allowed, ok)
	}
	if _, ok := c.get("admin", "/api/v1/audit", ActionRead); ok {
		t.Error("different subject should miss")
	}

	now = now.Add(time.Hour)
	if _, ok := c.get("operator", "/api/v1/audit", ActionRead); ok {
		t.Error("entry should expire after the TTL")
	}
	c.prune()
	if c.size() != 0 {
		t.Errorf("size after prune = %d, want 0", c.size())
	}
}

func TestDecisionCache_Clear(t *testing.T) {
	t.Parallel()
	c := newDecisionCache(time.Hour)
	t.Cleanup(c.stop)

	c.set("admin", "/a", ActionRead, true)
	c.set("admin", "/b", ActionWrite, true)
	c.clear()
	if c.size() != 0 {
		t.Errorf("size = %d, want 0", c.size())
	}
	c.stop()
	c.stop()
}
