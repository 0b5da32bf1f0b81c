// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/logging"
)

// StreamName is the JetStream stream holding webhook dispatch messages.
const StreamName = "POS_WEBHOOKS"

// PoisonTopic returns the topic for messages that exhausted their retries.
func PoisonTopic(topic string) string {
	return topic + ".poison"
}

// Transport is the publisher/subscriber pair used between Receiver and
// EventRouter.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	embedded *EmbeddedNATS
	closers  []func() error
}

// NewTransport builds the transport selected by cfg.Transport.
func NewTransport(ctx context.Context, cfg config.WebhookConfig) (*Transport, error) {
	switch cfg.Transport {
	case "", config.TransportMemory:
		return NewMemoryTransport(), nil
	case config.TransportNATS:
		return newNATSTransport(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown webhook transport %q", cfg.Transport)
	}
}

// NewMemoryTransport returns an in-process gochannel transport. Messages
// published while nothing is subscribed are dropped.
func NewMemoryTransport() *Transport {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
		Persistent:          false,
		PreserveContext:     true,
	}, logging.NewWatermillAdapter("webhook-transport"))

	return &Transport{
		Publisher:  ch,
		Subscriber: ch,
		closers:    []func() error{ch.Close},
	}
}

func newNATSTransport(ctx context.Context, cfg config.WebhookConfig) (*Transport, error) {
	t := &Transport{}
	url := cfg.NATSURL
	if cfg.EmbeddedNATS {
		ns, err := StartEmbeddedNATS(cfg.NATSStoreDir)
		if err != nil {
			return nil, err
		}
		t.embedded = ns
		url = ns.ClientURL()
	}

	if err := ensureStream(ctx, url, cfg.Topic); err != nil {
		t.shutdownEmbedded()
		return nil, err
	}

	logger := logging.NewWatermillAdapter("webhook-nats")
	natsOpts := []natsgo.Option{
		natsgo.Name("orderbridge-webhooks"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		t.shutdownEmbedded()
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: "orderbridge",
		SubscribersCount: workers,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(StreamName),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverAll(),
			},
			DurablePrefix: "orderbridge",
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		t.shutdownEmbedded()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	t.Publisher = pub
	t.Subscriber = sub
	t.closers = []func() error{pub.Close, sub.Close}
	return t, nil
}

// ensureStream creates or updates the stream covering the event and poison topics.
func ensureStream(ctx context.Context, url, topic string) error {
	nc, err := natsgo.Connect(url, natsgo.Name("orderbridge-stream-init"))
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{topic, PoisonTopic(topic)},
		Retention:  jetstream.LimitsPolicy,
		Storage:    jetstream.FileStorage,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
		Discard:    jetstream.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", StreamName, err)
	}
	return nil
}

// Close closes the publisher and subscriber, then the embedded server.
func (t *Transport) Close() error {
	var errs []error
	for _, c := range t.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdownEmbedded()
	return errors.Join(errs...)
}

func (t *Transport) shutdownEmbedded() {
	if t.embedded != nil {
		t.embedded.Shutdown()
	}
}

// EmbeddedNATS is an in-process JetStream server for single-node deployments.
type EmbeddedNATS struct {
	server *server.Server
}

// StartEmbeddedNATS starts a loopback JetStream server storing data in storeDir.
func StartEmbeddedNATS(storeDir string) (*EmbeddedNATS, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "orderbridge",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		JetStream:  true,
		StoreDir:   storeDir,
		MaxPayload: 4 * 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()
	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}
	logging.Info().Str("url", ns.ClientURL()).Str("store_dir", storeDir).Msg("embedded NATS server started")
	return &EmbeddedNATS{server: ns}, nil
}

// ClientURL returns the connection URL.
func (e *EmbeddedNATS) ClientURL() string {
	return e.server.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (e *EmbeddedNATS) Shutdown() {
	e.server.Shutdown()
	e.server.WaitForShutdown()
}
