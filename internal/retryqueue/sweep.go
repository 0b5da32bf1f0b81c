// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package retryqueue

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
)

// Replayer re-executes a failed request. Returning an error that wraps
// ErrNonRetryable abandons the row without using the remaining retries.
type Replayer interface {
	Replay(ctx context.Context, req *models.FailedRequest) error
}

// ReplayerFunc adapts a function to Replayer.
type ReplayerFunc func(ctx context.Context, req *models.FailedRequest) error

// Replay calls f.
func (f ReplayerFunc) Replay(ctx context.Context, req *models.FailedRequest) error {
	return f(ctx, req)
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Due         int           `json:"due"`
	Attempted   int           `json:"attempted"`
	Completed   int           `json:"completed"`
	Rescheduled int           `json:"rescheduled"`
	Abandoned   int           `json:"abandoned"`
	Duration    time.Duration `json:"duration"`
}

// errNotDue means the row changed between selection and claim.
var errNotDue = errors.New("failed request no longer due")

// outcome labels for metrics
const (
	outcomeCompleted   = "completed"
	outcomeRescheduled = "rescheduled"
	outcomeAbandoned   = "abandoned"
)

// Sweep replays up to BatchSize due rows through r. Returns
// ErrSweepInProgress when another sweep is running.
func (q *Queue) Sweep(ctx context.Context, r Replayer) (SweepResult, error) {
	if !q.sweepMu.TryLock() {
		return SweepResult{}, ErrSweepInProgress
	}
	defer q.sweepMu.Unlock()

	start := time.Now()
	var res SweepResult

	due, err := q.Due(ctx, q.now(), q.cfg.BatchSize)
	if err != nil {
		return res, err
	}
	res.Due = len(due)

	for _, req := range due {
		if err := q.limiter.Wait(ctx); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		outcome, err := q.replayOne(ctx, r, req)
		if errors.Is(err, errNotDue) {
			continue
		}
		if err != nil {
			logging.Error().Err(err).Str("failed_request_id", req.ID).Msg("retry sweep: failed to record outcome")
			continue
		}
		res.Attempted++
		switch outcome {
		case outcomeCompleted:
			res.Completed++
		case outcomeRescheduled:
			res.Rescheduled++
		case outcomeAbandoned:
			res.Abandoned++
		}
	}

	res.Duration = time.Since(start)
	if _, err := q.Stats(ctx); err != nil {
		logging.Warn().Err(err).Msg("retry sweep: failed to refresh queue depth")
	}

	if res.Attempted > 0 {
		logging.Info().
			Int("due", res.Due).
			Int("completed", res.Completed).
			Int("rescheduled", res.Rescheduled).
			Int("abandoned", res.Abandoned).
			Dur("duration", res.Duration).
			Msg("retry sweep complete")
	}
	return res, nil
}

// replayOne marks req retrying, replays it and stores the outcome.
func (q *Queue) replayOne(ctx context.Context, r Replayer, req *models.FailedRequest) (string, error) {
	claimed, err := q.update(req.ID, func(cur *models.FailedRequest) error {
		if !cur.IsDue(q.now()) {
			return errNotDue
		}
		cur.Status = models.FailedRequestRetrying
		return nil
	})
	if err != nil {
		return "", err
	}

	replayErr := r.Replay(ctx, claimed)

	// Shutdown mid-replay: hand the row back untouched.
	if replayErr != nil && ctx.Err() != nil {
		_, err := q.update(req.ID, func(cur *models.FailedRequest) error {
			cur.Status = models.FailedRequestPending
			return nil
		})
		return "", errors.Join(ctx.Err(), err)
	}

	var outcome string
	_, err = q.update(req.ID, func(cur *models.FailedRequest) error {
		now := q.now()
		switch {
		case replayErr == nil:
			cur.Status = models.FailedRequestCompleted
			cur.CompletedAt = &now
			cur.NextRetryAt = nil
			cur.ErrorMessage = ""
			outcome = outcomeCompleted
		case errors.Is(replayErr, ErrNonRetryable):
			cur.Status = models.FailedRequestAbandoned
			cur.ErrorMessage = replayErr.Error()
			cur.NextRetryAt = nil
			outcome = outcomeAbandoned
		default:
			cur.RetryCount++
			cur.ErrorMessage = replayErr.Error()
			if cur.RetryCount >= cur.MaxRetries {
				cur.RetryCount = cur.MaxRetries
				cur.Status = models.FailedRequestAbandoned
				cur.NextRetryAt = nil
				outcome = outcomeAbandoned
				return nil
			}
			next := now.Add(q.backoff(cur.RetryCount))
			cur.Status = models.FailedRequestPending
			cur.NextRetryAt = &next
			outcome = outcomeRescheduled
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.RecordRetryOutcome(string(req.RequestType), outcome)
	ev := logging.Info()
	if outcome == outcomeAbandoned {
		ev = logging.Warn()
	}
	ev.Str("failed_request_id", req.ID).
		Str("request_type", string(req.RequestType)).
		Str("outcome", outcome).
		AnErr("replay_error", replayErr).
		Msg("failed request replayed")
	return outcome, nil
}

// backoff returns min(1s * 2^retryCount, MaxBackoff) for a row that has
// just failed its retryCount-th replay.
func (q *Queue) backoff(retryCount int) time.Duration {
	maxBackoff := q.cfg.MaxBackoff
	if retryCount > 50 {
		return maxBackoff
	}
	d := time.Duration(float64(retryBaseDelay) * math.Pow(2, float64(retryCount)))
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
