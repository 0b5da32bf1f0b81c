// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package services

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/orderbridge/internal/logging"
)

// PeriodicService calls fn every interval until its context is canceled.
// Errors from fn are logged and do not stop the loop.
type PeriodicService struct {
	name     string
	interval time.Duration
	runFirst bool
	fn       func(ctx context.Context) error
}

// NewPeriodicService creates the service. When runFirst is set fn also runs
// once as soon as Serve starts.
func NewPeriodicService(name string, interval time.Duration, runFirst bool, fn func(ctx context.Context) error) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, runFirst: runFirst, fn: fn}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	if p.runFirst {
		p.run(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *PeriodicService) run(ctx context.Context) {
	if err := p.fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Warn().Err(err).Str("service", p.name).Msg("periodic task failed")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (p *PeriodicService) String() string {
	return p.name
}
