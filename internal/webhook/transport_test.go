// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"context"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/models"
)

func TestNewTransport_UnknownKind(t *testing.T) {
	t.Parallel()
	if _, err := NewTransport(context.Background(), config.WebhookConfig{Transport: "kafka"}); err == nil {
		t.Error("expected error for unknown transport")
	}
}

func TestMemoryTransport_DispatchReachesSubscriber(t *testing.T) {
	t.Parallel()

	tr := NewMemoryTransport()
	t.Cleanup(func() { _ = tr.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := tr.Subscriber.Subscribe(ctx, "topic")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	row := &models.WebhookEvent{ID: "row-1", EventID: "evt-1", EventType: EventStockUpdated, Vendor: "skytab"}
	if err := NewDispatcher(tr.Publisher, "topic").Dispatch(ctx, row); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case msg := <-msgs:
		if string(msg.Payload) != "row-1" {
			t.Errorf("payload = %q", msg.Payload)
		}
		if msg.Metadata.Get(MetadataEventID) != "evt-1" || msg.Metadata.Get(MetadataVendor) != "skytab" {
			t.Errorf("metadata = %v", msg.Metadata)
		}
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestEmbeddedNATS_EnsureStream(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}
	t.Parallel()

	ns, err := StartEmbeddedNATS(t.TempDir())
	if err != nil {
		t.Fatalf("StartEmbeddedNATS: %v", err)
	}
	t.Cleanup(ns.Shutdown)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := ensureStream(ctx, ns.ClientURL(), "pos.webhook.events"); err != nil {
			t.Fatalf("ensureStream #%d: %v", i+1, err)
		}
	}

	nc, err := natsgo.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream: %v", err)
	}
	stream, err := js.Stream(ctx, StreamName)
	if err != nil {
		t.Fatalf("stream lookup: %v", err)
	}
	subjects := stream.CachedInfo().Config.Subjects
	if len(subjects) != 2 || subjects[1] != "pos.webhook.events.poison" {
		t.Errorf("subjects = %v", subjects)
	}
}
