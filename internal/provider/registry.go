// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package provider

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/orderbridge/internal/models"
)

// Registry maps vendor names to adapter instances. It is built by the
// composition root and passed to its consumers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces the provider for name. Names are case-insensitive.
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[normalize(name)] = p
}

// Get returns the provider registered for name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[normalize(name)]
	if !ok {
		return nil, &ProviderNotFoundError{Vendor: name}
	}
	return p, nil
}

// Names returns the registered vendor names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForLocation resolves the provider bound to a location's POS vendor.
func (r *Registry) ForLocation(loc *models.Location) (Provider, error) {
	if loc == nil {
		return nil, errors.New("location is nil")
	}
	return r.Get(loc.POSVendor)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
