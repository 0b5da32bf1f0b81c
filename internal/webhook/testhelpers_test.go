// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type recordedAudit struct {
	typ     audit.EventType
	outcome audit.Outcome
	target  *audit.Target
	actor   audit.Actor
}

type fakeAuditor struct {
	mu     sync.Mutex
	events []recordedAudit
}

func (a *fakeAuditor) Record(ctx context.Context, typ audit.EventType, outcome audit.Outcome, target *audit.Target, _ string, _ interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, recordedAudit{typ: typ, outcome: outcome, target: target, actor: audit.ActorFromContext(ctx)})
}

func (a *fakeAuditor) ofType(typ audit.EventType) []recordedAudit {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []recordedAudit
	for _, e := range a.events {
		if e.typ == typ {
			out = append(out, e)
		}
	}
	return out
}

type statusBroadcast struct {
	orderID string
	status  models.OrderStatus
}

type availabilityBroadcast struct {
	menuItemID  string
	isAvailable bool
}

type fakeNotifier struct {
	mu           sync.Mutex
	statuses     []statusBroadcast
	availability []availabilityBroadcast
}

func (n *fakeNotifier) BroadcastOrderStatus(order *models.Order, _ models.StatusSource) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, statusBroadcast{orderID: order.ID, status: order.Status})
}

func (n *fakeNotifier) BroadcastAvailability(_, menuItemID string, isAvailable bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.availability = append(n.availability, availabilityBroadcast{menuItemID: menuItemID, isAvailable: isAvailable})
}

func (n *fakeNotifier) statusCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.statuses)
}

// envelope builds a webhook body.
func envelope(t *testing.T, eventID, eventType, locationGUID string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	body, err := json.Marshal(Envelope{
		EventType:    eventType,
		EventID:      eventID,
		Timestamp:    EventTime{Time: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		LocationGUID: locationGUID,
		Data:         raw,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return body
}

// storeEvent inserts a pending row for body and returns its id.
func storeEvent(t *testing.T, db *database.DB, body []byte) *models.WebhookEvent {
	t.Helper()
	env, err := ParseEnvelope(body)
	if err != nil {
		t.Fatalf("ParseEnvelope: %v", err)
	}
	row := &models.WebhookEvent{EventID: env.EventID, Vendor: "skytab", EventType: env.EventType,
		LocationID: env.LocationGUID, Payload: body}
	inserted, _, err := db.InsertWebhookEvent(context.Background(), row)
	if err != nil || !inserted {
		t.Fatalf("InsertWebhookEvent inserted=%v err=%v", inserted, err)
	}
	return row
}

type fixture struct {
	db       *database.DB
	location *models.Location
	order    *models.Order
	item     *models.MenuItem
	menu     *models.Menu
}

// seed creates one location with a menu, one item and one submitted order.
func seed(t *testing.T, db *database.DB) *fixture {
	t.Helper()
	ctx := context.Background()

	loc := &models.Location{Name: "Downtown", POSVendor: "skytab", POSLocationID: "loc-guid-1", Timezone: "UTC", IsActive: true}
	if err := db.UpsertLocation(ctx, loc); err != nil {
		t.Fatalf("UpsertLocation: %v", err)
	}
	menu, err := db.EnsureMenu(ctx, loc.ID, "Main")
	if err != nil {
		t.Fatalf("EnsureMenu: %v", err)
	}
	if err := db.SetMenuSynced(ctx, menu.ID, time.Now().UTC()); err != nil {
		t.Fatalf("SetMenuSynced: %v", err)
	}
	item := &models.MenuItem{MenuID: menu.ID, LocationID: loc.ID, POSItemID: "item-guid-1", Name: "Margherita",
		Price: 1299, IsAvailable: true}
	if _, err := db.UpsertMenuItemByPOSID(ctx, item); err != nil {
		t.Fatalf("UpsertMenuItemByPOSID: %v", err)
	}

	order := &models.Order{LocationID: loc.ID, OrderType: models.OrderTypePickup, Status: models.OrderStatusConfirmed,
		CustomerName: "Ada", Subtotal: 1299, Total: 1299}
	if err := db.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	synced := time.Now().UTC()
	if err := db.UpdateOrderPOSSync(ctx, order.ID, database.POSSyncUpdate{
		POSOrderID: "ticket-1", Status: models.POSSyncSynced, SyncedAt: &synced,
	}); err != nil {
		t.Fatalf("UpdateOrderPOSSync: %v", err)
	}
	order.POSOrderID = "ticket-1"

	return &fixture{db: db, location: loc, order: order, item: item, menu: menu}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
