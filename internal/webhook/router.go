// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/logging"
)

// EventProcessor applies one stored event. *Processor satisfies it.
type EventProcessor interface {
	Process(ctx context.Context, rowID string) error
}

// EventRouter consumes dispatched events and runs them through the
// processor. It implements suture.Service; each Serve call builds a fresh
// watermill router so the supervisor can restart it.
type EventRouter struct {
	cfg       config.WebhookConfig
	transport *Transport
	processor EventProcessor
	logger    watermill.LoggerAdapter

	readyOnce sync.Once
	ready     chan struct{}
}

// NewEventRouter creates a router reading cfg.Topic from transport.
func NewEventRouter(cfg config.WebhookConfig, transport *Transport, processor EventProcessor) *EventRouter {
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}
	return &EventRouter{
		cfg:       cfg,
		transport: transport,
		processor: processor,
		logger:    logging.NewWatermillAdapter("webhook-router"),
		ready:     make(chan struct{}),
	}
}

// Ready is closed once the first router run is consuming messages.
func (r *EventRouter) Ready() <-chan struct{} {
	return r.ready
}

func (r *EventRouter) build() (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.cfg.CloseTimeout}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outermost first: poison routing sees the error only after retries run out.
	poison, err := middleware.PoisonQueue(r.transport.Publisher, PoisonTopic(r.cfg.Topic))
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	router.AddMiddleware(poison)

	retry := middleware.Retry{
		MaxRetries:      r.cfg.ProcessRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		Logger:          r.logger,
	}
	router.AddMiddleware(retry.Middleware, middleware.Recoverer)

	if r.cfg.ThrottlePerSec > 0 {
		router.AddMiddleware(middleware.NewThrottle(r.cfg.ThrottlePerSec, time.Second).Middleware)
	}

	router.AddConsumerHandler("webhook-processor", r.cfg.Topic, r.transport.Subscriber, r.handle)
	return router, nil
}

func (r *EventRouter) handle(msg *message.Message) error {
	ctx := msg.Context()
	if cid := msg.Metadata.Get("correlation_id"); cid != "" {
		ctx = logging.ContextWithCorrelationID(ctx, cid)
	}
	return r.processor.Process(ctx, string(msg.Payload))
}

// Serve runs the router until ctx is canceled.
func (r *EventRouter) Serve(ctx context.Context) error {
	router, err := r.build()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-router.Running():
			r.readyOnce.Do(func() { close(r.ready) })
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("webhook router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (r *EventRouter) String() string {
	return "webhook-router"
}
