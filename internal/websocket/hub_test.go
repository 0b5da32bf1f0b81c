// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/orderbridge/internal/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = h.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func newTestClient(h *Hub, locationID string, buffer int) *Client {
	return &Client{
		id:         clientIDCounter.Add(1),
		hub:        h,
		send:       make(chan Message, buffer),
		locationID: locationID,
	}
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", n, h.ClientCount())
}

func receive(t *testing.T, c *Client) (Message, bool) {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		return msg, ok
	case <-time.After(time.Second):
		return Message{}, false
	}
}

func TestHub_LocationFilter(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	all := newTestClient(h, "", 8)
	loc1 := newTestClient(h, "loc-1", 8)
	loc2 := newTestClient(h, "loc-2", 8)
	h.register <- all
	h.register <- loc1
	h.register <- loc2
	waitForClients(t, h, 3)

	h.BroadcastAvailability("loc-1", "mi-1", false)

	if msg, ok := receive(t, all); !ok || msg.Type != MessageTypeAvailability {
		t.Errorf("unfiltered client got %+v ok=%v", msg, ok)
	}
	msg, ok := receive(t, loc1)
	if !ok || msg.LocationID != "loc-1" {
		t.Fatalf("loc-1 client got %+v ok=%v", msg, ok)
	}
	data, isData := msg.Data.(AvailabilityData)
	if !isData || data.MenuItemID != "mi-1" || data.IsAvailable {
		t.Errorf("unexpected payload %+v", msg.Data)
	}
	select {
	case m := <-loc2.send:
		t.Errorf("loc-2 client should not receive loc-1 message, got %+v", m)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_OrderStatusPayload(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	c := newTestClient(h, "loc-1", 8)
	h.register <- c
	waitForClients(t, h, 1)

	h.BroadcastOrderStatus(&models.Order{
		ID: "o-1", LocationID: "loc-1", POSOrderID: "t-9", Status: models.OrderStatusPreparing,
	}, models.StatusSourceWebhook)

	msg, ok := receive(t, c)
	if !ok {
		t.Fatal("no message received")
	}
	data, isData := msg.Data.(OrderStatusData)
	if !isData {
		t.Fatalf("data type %T", msg.Data)
	}
	if data.OrderID != "o-1" || data.Status != models.OrderStatusPreparing || data.Source != models.StatusSourceWebhook {
		t.Errorf("unexpected payload %+v", data)
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	slow := newTestClient(h, "", 1)
	h.register <- slow
	waitForClients(t, h, 1)

	slow.send <- Message{Type: MessageTypePong}
	h.Broadcast(Message{Type: MessageTypeMenuSync})

	waitForClients(t, h, 0)
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("send channel should be closed after drop")
	}
}

func TestHub_UnregisterAndShutdown(t *testing.T) {
	t.Parallel()

	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Serve(ctx) }()

	a := newTestClient(h, "", 1)
	b := newTestClient(h, "", 1)
	h.register <- a
	h.register <- b
	waitForClients(t, h, 2)

	h.unregister <- a
	waitForClients(t, h, 1)
	if _, ok := <-a.send; ok {
		t.Error("unregistered client channel should be closed")
	}
	// A second unregister is a no-op.
	h.unregister <- a

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
	if h.ClientCount() != 0 {
		t.Errorf("clients left after shutdown: %d", h.ClientCount())
	}
	if _, ok := <-b.send; ok {
		t.Error("client channel should be closed on shutdown")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	t.Parallel()

	h := NewHub()
	finished := make(chan struct{})
	go func() {
		for i := 0; i < cap(h.broadcast)+10; i++ {
			h.Broadcast(Message{Type: MessageTypeMenuSync})
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked with no running hub")
	}
}

func TestHandler_EndToEnd(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	srv := httptest.NewServer(NewHandler(h, []string{"https://shop.example.com"}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?locationId=loc-1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()
	waitForClients(t, h, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var pong Message
	if err := conn.ReadJSON(&pong); err != nil || pong.Type != MessageTypePong {
		t.Fatalf("expected pong, got %+v err=%v", pong, err)
	}

	h.BroadcastAvailability("loc-2", "other", true)
	h.BroadcastAvailability("loc-1", "mi-7", false)

	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got struct {
		Type       string           `json:"type"`
		LocationID string           `json:"locationId"`
		Data       AvailabilityData `json:"data"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.LocationID != "loc-1" || got.Data.MenuItemID != "mi-7" {
		t.Errorf("filtered feed delivered %s", raw)
	}
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	srv := httptest.NewServer(NewHandler(h, []string{"https://shop.example.com"}))
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Origin", "https://evil.example.net")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %+v", resp)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
