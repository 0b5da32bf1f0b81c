// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package retryqueue

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/orderbridge/internal/logging"
)

// DefaultSweepInterval is used when the configured interval is zero.
const DefaultSweepInterval = time.Minute

// gcEvery is the number of sweep ticks between value log GC runs.
const gcEvery = 30

// Sweeper runs Queue.Sweep on a ticker. It implements suture.Service.
type Sweeper struct {
	queue    *Queue
	replayer Replayer
	interval time.Duration
}

// NewSweeper creates a scheduled sweeper. A zero interval falls back to the
// queue's SweepInterval, then DefaultSweepInterval.
func NewSweeper(q *Queue, r Replayer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = q.cfg.SweepInterval
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{queue: q, replayer: r, interval: interval}
}

// Serve sweeps every interval until ctx is canceled.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", s.interval).Msg("retry sweeper started")

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("retry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
			ticks++
			if ticks%gcEvery == 0 {
				if err := s.queue.RunGC(); err != nil {
					logging.Warn().Err(err).Msg("retry queue GC failed")
				}
			}
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	_, err := s.queue.Sweep(ctx, s.replayer)
	switch {
	case err == nil:
	case errors.Is(err, ErrSweepInProgress):
		logging.Debug().Msg("retry sweep skipped: previous sweep still running")
	case errors.Is(err, context.Canceled):
	default:
		logging.Error().Err(err).Msg("retry sweep failed")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *Sweeper) String() string {
	return "retry-sweeper"
}
