// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package authz

import (
	"sync"
	"time"
)

type decisionKey struct {
	subject, object, action string
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

// decisionCache memoizes enforcer answers for a fixed TTL. A janitor
// goroutine drops expired entries every TTL until stop is called.
type decisionCache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	byKey map[decisionKey]decision

	done     chan struct{}
	stopOnce sync.Once
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	c := &decisionCache{
		ttl:   ttl,
		now:   time.Now,
		byKey: make(map[decisionKey]decision),
		done:  make(chan struct{}),
	}
	go c.janitor()
	return c
}

func (c *decisionCache) get(subject, object, action string) (allowed, ok bool) {
	c.mu.RLock()
	d, found := c.byKey[decisionKey{subject, object, action}]
	c.mu.RUnlock()
	if !found || !c.now().Before(d.expiresAt) {
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	c.byKey[decisionKey{subject, object, action}] = decision{allowed: allowed, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *decisionCache) clear() {
	c.mu.Lock()
	c.byKey = make(map[decisionKey]decision)
	c.mu.Unlock()
}

func (c *decisionCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

func (c *decisionCache) prune() {
	now := c.now()
	c.mu.Lock()
	for k, d := range c.byKey {
		if !now.Before(d.expiresAt) {
			delete(c.byKey, k)
		}
	}
	c.mu.Unlock()
}

func (c *decisionCache) janitor() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.prune()
		}
	}
}

// stop is idempotent.
func (c *decisionCache) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
