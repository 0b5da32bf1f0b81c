// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package retryqueue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
)

const keyPrefix = "freq:"

// Defaults used when the matching config field is zero.
const (
	DefaultMaxRetries   = 5
	DefaultInitialDelay = 60 * time.Second
	DefaultMaxBackoff   = 30 * time.Minute
	DefaultBatchSize    = 10
	DefaultCompletedTTL = 7 * 24 * time.Hour
	DefaultCloseTimeout = 30 * time.Second

	retryBaseDelay = time.Second
)

// Queue is the Badger-backed failed-request store.
type Queue struct {
	db  *badger.DB
	cfg config.RetryQueueConfig

	mu     sync.RWMutex
	closed bool

	sweepMu sync.Mutex
	limiter *rate.Limiter

	now func() time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status      models.FailedRequestStatus
	RequestType models.RequestType
	Limit       int
}

// Open opens (or creates) the queue at cfg.Path, or an in-memory queue when
// cfg.InMemory is set.
func Open(cfg config.RetryQueueConfig) (*Queue, error) {
	applyDefaults(&cfg)

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("retry queue path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	q := &Queue{
		db:      db,
		cfg:     cfg,
		limiter: newReplayLimiter(cfg.ReplayRate),
		now:     func() time.Time { return time.Now().UTC() },
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int("max_retries", cfg.MaxRetries).
		Dur("initial_delay", cfg.InitialDelay).
		Msg("retry queue opened")
	return q, nil
}

// OpenInMemory opens a queue with default settings and no disk footprint.
func OpenInMemory() (*Queue, error) {
	return Open(config.RetryQueueConfig{InMemory: true})
}

func applyDefaults(cfg *config.RetryQueueConfig) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.CompletedTTL <= 0 {
		cfg.CompletedTTL = DefaultCompletedTTL
	}
}

func newReplayLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Config returns the effective configuration.
func (q *Queue) Config() config.RetryQueueConfig {
	return q.cfg
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

func (q *Queue) checkOpen() error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	return nil
}

// Enqueue records a new failed request due after the initial delay.
func (q *Queue) Enqueue(ctx context.Context, payload models.FailedRequestPayload, errMsg string) (*models.FailedRequest, error) {
	if err := q.checkOpen(); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrNilPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := q.now()
	next := now.Add(q.cfg.InitialDelay)
	req := &models.FailedRequest{
		ID:           uuid.NewString(),
		RequestType:  payload.RequestType(),
		Payload:      payload,
		RetryCount:   0,
		MaxRetries:   q.cfg.MaxRetries,
		NextRetryAt:  &next,
		Status:       models.FailedRequestPending,
		ErrorMessage: errMsg,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := q.put(req); err != nil {
		return nil, err
	}

	metrics.RecordRetryEnqueued(string(req.RequestType))
	logging.Ctx(ctx).Info().
		Str("failed_request_id", req.ID).
		Str("request_type", string(req.RequestType)).
		Time("next_retry_at", next).
		Str("error", errMsg).
		Msg("request queued for retry")
	return req, nil
}

// put writes req, applying the completed-row TTL.
func (q *Queue) put(req *models.FailedRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal failed request: %w", err)
	}
	err = q.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(req.ID), data)
		if req.Status == models.FailedRequestCompleted {
			e = e.WithTTL(q.cfg.CompletedTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("write failed request: %w", err)
	}
	return nil
}

// update applies fn to the stored row inside one read-write transaction.
func (q *Queue) update(id string, fn func(req *models.FailedRequest) error) (*models.FailedRequest, error) {
	if err := q.checkOpen(); err != nil {
		return nil, err
	}

	var out *models.FailedRequest
	err := q.db.Update(func(txn *badger.Txn) error {
		req, err := getTxn(txn, id)
		if err != nil {
			return err
		}
		if err := fn(req); err != nil {
			return err
		}
		req.UpdatedAt = q.now()

		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("marshal failed request: %w", err)
		}
		e := badger.NewEntry(key(id), data)
		if req.Status == models.FailedRequestCompleted {
			e = e.WithTTL(q.cfg.CompletedTTL)
		}
		if err := txn.SetEntry(e); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func getTxn(txn *badger.Txn, id string) (*models.FailedRequest, error) {
	item, err := txn.Get(key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get failed request: %w", err)
	}
	var req models.FailedRequest
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &req)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal failed request: %w", err)
	}
	return &req, nil
}

// Get returns one failed request by id.
func (q *Queue) Get(ctx context.Context, id string) (*models.FailedRequest, error) {
	if err := q.checkOpen(); err != nil {
		return nil, err
	}
	var req *models.FailedRequest
	err := q.db.View(func(txn *badger.Txn) error {
		r, err := getTxn(txn, id)
		req = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// scan visits every stored row. Rows that fail to decode are logged and skipped.
func (q *Queue) scan(ctx context.Context, visit func(req *models.FailedRequest)) error {
	if err := q.checkOpen(); err != nil {
		return err
	}
	err := q.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var req models.FailedRequest
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &req)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("retry queue: skipping undecodable row")
				continue
			}
			visit(&req)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("iterate failed requests: %w", err)
	}
	return nil
}

// Due returns the rows a sweep may replay at now, ordered by nextRetryAt and
// then createdAt. A row without nextRetryAt sorts first.
func (q *Queue) Due(ctx context.Context, now time.Time, limit int) ([]*models.FailedRequest, error) {
	var due []*models.FailedRequest
	err := q.scan(ctx, func(req *models.FailedRequest) {
		if req.IsDue(now) {
			due = append(due, req)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		at, bt := nextOrZero(a), nextOrZero(b)
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func nextOrZero(r *models.FailedRequest) time.Time {
	if r.NextRetryAt == nil {
		return time.Time{}
	}
	return *r.NextRetryAt
}

// List returns rows matching f, newest first.
func (q *Queue) List(ctx context.Context, f Filter) ([]*models.FailedRequest, error) {
	var out []*models.FailedRequest
	err := q.scan(ctx, func(req *models.FailedRequest) {
		if f.Status != "" && req.Status != f.Status {
			return
		}
		if f.RequestType != "" && req.RequestType != f.RequestType {
			return
		}
		out = append(out, req)
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Stats returns the row count per status and refreshes the depth gauge.
func (q *Queue) Stats(ctx context.Context) (map[models.FailedRequestStatus]int, error) {
	counts := map[models.FailedRequestStatus]int{
		models.FailedRequestPending:   0,
		models.FailedRequestRetrying:  0,
		models.FailedRequestCompleted: 0,
		models.FailedRequestAbandoned: 0,
	}
	err := q.scan(ctx, func(req *models.FailedRequest) {
		counts[req.Status]++
	})
	if err != nil {
		return nil, err
	}

	gauge := make(map[string]int, len(counts))
	for s, n := range counts {
		gauge[string(s)] = n
	}
	metrics.UpdateRetryQueueDepth(gauge)
	return counts, nil
}

// Retry puts an abandoned row back in the queue with a fresh retry budget,
// due immediately.
func (q *Queue) Retry(ctx context.Context, id string) (*models.FailedRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req, err := q.update(id, func(req *models.FailedRequest) error {
		if req.Status != models.FailedRequestAbandoned {
			return fmt.Errorf("%w: status is %s", ErrNotAbandoned, req.Status)
		}
		now := q.now()
		req.Status = models.FailedRequestPending
		req.RetryCount = 0
		req.NextRetryAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("failed_request_id", id).Msg("abandoned request re-queued")
	return req, nil
}

// Close closes the store, giving up after DefaultCloseTimeout.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- q.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().Msg("retry queue closed")
		return nil
	case <-time.After(DefaultCloseTimeout):
		logging.Warn().Dur("timeout", DefaultCloseTimeout).Msg("retry queue close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", DefaultCloseTimeout)
	}
}

// RunGC reclaims value log space. In-memory queues have nothing to collect.
func (q *Queue) RunGC() error {
	if err := q.checkOpen(); err != nil {
		return err
	}
	if q.cfg.InMemory {
		return nil
	}
	for {
		err := q.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}
