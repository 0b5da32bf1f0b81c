// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
	"github.com/tomtom215/orderbridge/internal/models"
)

// Message types for WebSocket communication
const (
	MessageTypeOrderStatus  = "order_status"
	MessageTypeMenuSync     = "menu_sync"
	MessageTypeAvailability = "item_availability"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is one frame sent to clients.
type Message struct {
	Type       string      `json:"type"`
	LocationID string      `json:"locationId,omitempty"`
	Data       interface{} `json:"data"`
}

// OrderStatusData is the payload of an order_status message.
type OrderStatusData struct {
	OrderID    string              `json:"orderId"`
	POSOrderID string              `json:"posOrderId,omitempty"`
	Status     models.OrderStatus  `json:"status"`
	Source     models.StatusSource `json:"source"`
	Timestamp  time.Time           `json:"timestamp"`
}

// MenuSyncData is the payload of a menu_sync message.
type MenuSyncData struct {
	SyncLogID string            `json:"syncLogId"`
	SyncType  string            `json:"syncType"`
	Status    models.SyncStatus `json:"status"`
	Items     int               `json:"itemsSynced"`
}

// AvailabilityData is the payload of an item_availability message.
type AvailabilityData struct {
	MenuItemID  string `json:"menuItemId"`
	IsAvailable bool   `json:"isAvailable"`
}

// Hub tracks connected clients and fans out broadcasts.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Call Serve to start it.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Serve runs the hub until ctx is canceled, then closes every client.
// It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		// Lifecycle events before broadcasts so a new client sees the next message.
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
	logging.Debug().Int("total_clients", n).Str("location_id", c.locationID).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketClients.Set(float64(n))
	logging.Debug().Int("total_clients", n).Msg("websocket client disconnected")
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	n := len(h.clients)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	metrics.WebSocketClients.Set(0)
	logging.Info().Str("component", "websocket-hub").Int("clients_closed", n).Msg("websocket hub stopped")
}

// broadcastToClients delivers msg in client id order. Clients whose buffer
// is full are dropped.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.wants(msg) {
			clients = append(clients, c)
		}
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			logging.Warn().Uint64("client_id", c.id).Msg("websocket client too slow, dropped")
		}
	}
}

// Broadcast queues msg for delivery. It never blocks.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		logging.Warn().Str("message_type", msg.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastOrderStatus announces an order status change.
func (h *Hub) BroadcastOrderStatus(order *models.Order, source models.StatusSource) {
	h.Broadcast(Message{
		Type:       MessageTypeOrderStatus,
		LocationID: order.LocationID,
		Data: OrderStatusData{
			OrderID:    order.ID,
			POSOrderID: order.POSOrderID,
			Status:     order.Status,
			Source:     source,
			Timestamp:  time.Now().UTC(),
		},
	})
}

// BroadcastMenuSync announces a finished menu sync.
func (h *Hub) BroadcastMenuSync(log *models.SyncLog) {
	h.Broadcast(Message{
		Type:       MessageTypeMenuSync,
		LocationID: log.LocationID,
		Data: MenuSyncData{
			SyncLogID: log.ID,
			SyncType:  string(log.SyncType),
			Status:    log.Status,
			Items:     log.ItemsSynced,
		},
	})
}

// BroadcastAvailability announces an item being 86'd or restored.
func (h *Hub) BroadcastAvailability(locationID, menuItemID string, isAvailable bool) {
	h.Broadcast(Message{
		Type:       MessageTypeAvailability,
		LocationID: locationID,
		Data:       AvailabilityData{MenuItemID: menuItemID, IsAvailable: isAvailable},
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
