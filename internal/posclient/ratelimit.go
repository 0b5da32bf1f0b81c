// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posclient

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/orderbridge/internal/metrics"
)

// slidingWindow permits at most limit request starts in any window. A caller
// that finds the window full sleeps until the oldest start ages out.
type slidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	starts []time.Time
	now    func() time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		limit:  limit,
		window: window,
		starts: make([]time.Time, 0, limit),
		now:    time.Now,
	}
}

// Wait blocks until a request may start, then records the start.
func (w *slidingWindow) Wait(ctx context.Context) error {
	var waited time.Duration
	defer func() {
		if waited > 0 {
			metrics.RecordRateLimitWait(waited)
		}
	}()

	for {
		delay := w.reserve()
		if delay <= 0 {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			waited += delay
		}
	}
}

// reserve records a start and returns 0, or returns how long until the
// oldest start in the window expires.
func (w *slidingWindow) reserve() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.starts) && !w.starts[i].After(cutoff) {
		i++
	}
	w.starts = w.starts[i:]

	if len(w.starts) < w.limit {
		w.starts = append(w.starts, now)
		return 0
	}
	delay := w.starts[0].Add(w.window).Sub(now)
	if delay <= 0 {
		delay = time.Millisecond
	}
	return delay
}

// inWindow returns the number of starts currently counted.
func (w *slidingWindow) inWindow() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := w.now().Add(-w.window)
	n := 0
	for _, s := range w.starts {
		if s.After(cutoff) {
			n++
		}
	}
	return n
}
