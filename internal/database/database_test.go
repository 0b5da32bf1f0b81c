// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return db
}

func seedOrder(t *testing.T, db *DB) *models.Order {
	t.Helper()

	o := &models.Order{
		LocationID:      "loc-1",
		OrderType:       models.OrderTypeDelivery,
		CustomerName:    "Ada",
		DeliveryAddress: &models.Address{Line1: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701"},
		Subtotal:        2598,
		Total:           2898,
		Items: []models.OrderItem{
			{MenuItemID: "mi-1", POSItemID: "pos-1", Name: "Margherita", Quantity: 2, UnitPrice: 1299,
				Modifiers: []models.OrderItemModifier{{POSModifierID: "mod-1", Name: "Large", Price: 300, Quantity: 1}}},
		},
	}
	if err := db.CreateOrder(context.Background(), o); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func TestOrders_CreateAndGet(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	o := seedOrder(t, db)
	got, err := db.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != models.OrderStatusPending || got.POSSyncStatus != models.POSSyncPending {
		t.Errorf("status = %q / %q", got.Status, got.POSSyncStatus)
	}
	if got.DeliveryAddress == nil || got.DeliveryAddress.City != "Springfield" {
		t.Errorf("address = %+v", got.DeliveryAddress)
	}
	if len(got.Items) != 1 || got.Items[0].POSItemID != "pos-1" || len(got.Items[0].Modifiers) != 1 {
		t.Fatalf("items = %+v", got.Items)
	}
	if got.Items[0].Modifiers[0].Price != 300 {
		t.Errorf("modifier = %+v", got.Items[0].Modifiers[0])
	}

	if _, err := db.GetOrder(ctx, "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}

	history, err := db.ListOrderHistory(ctx, o.ID)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %v, %v", history, err)
	}
}

func TestOrders_POSSyncAndLookup(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	o := seedOrder(t, db)
	now := time.Now().UTC().Truncate(time.Microsecond)
	if err := db.UpdateOrderPOSSync(ctx, o.ID, POSSyncUpdate{POSOrderID: "ticket-1", Status: models.POSSyncSynced, SyncedAt: &now}); err != nil {
		t.Fatalf("UpdateOrderPOSSync: %v", err)
	}

	got, err := db.FindOrderByPOSOrderID(ctx, "ticket-1")
	if err != nil {
		t.Fatalf("FindOrderByPOSOrderID: %v", err)
	}
	if got.ID != o.ID || got.POSSyncStatus != models.POSSyncSynced || got.POSSyncedAt == nil {
		t.Errorf("order = %+v", got)
	}

	// An empty POS id keeps the stored one.
	if err := db.UpdateOrderPOSSync(ctx, o.ID, POSSyncUpdate{Status: models.POSSyncFailed, ErrorMessage: "boom"}); err != nil {
		t.Fatalf("UpdateOrderPOSSync: %v", err)
	}
	got, _ = db.GetOrder(ctx, o.ID)
	if got.POSOrderID != "ticket-1" || got.POSErrorMessage != "boom" {
		t.Errorf("order = %+v", got)
	}

	if err := db.UpdateOrderPOSSync(ctx, "missing", POSSyncUpdate{Status: models.POSSyncFailed}); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrders_UpdateStatus(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	o := seedOrder(t, db)

	changed, err := db.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPreparing, models.StatusSourceWebhook, "")
	if err != nil || !changed {
		t.Fatalf("UpdateOrderStatus = %v, %v", changed, err)
	}
	changed, err = db.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPreparing, models.StatusSourceWebhook, "")
	if err != nil || changed {
		t.Errorf("same status should be a no-op: %v, %v", changed, err)
	}

	changed, err = db.UpdateOrderStatus(ctx, o.ID, models.OrderStatusCancelled, models.StatusSourceWebhook, "kitchen closed")
	if err != nil || !changed {
		t.Fatalf("cancel = %v, %v", changed, err)
	}
	got, _ := db.GetOrder(ctx, o.ID)
	if got.Status != models.OrderStatusCancelled || got.CancelledAt == nil {
		t.Errorf("order = %+v", got)
	}

	// A terminal status is final, whatever arrives later.
	for _, late := range []models.OrderStatus{models.OrderStatusReady, models.OrderStatusCompleted} {
		changed, err = db.UpdateOrderStatus(ctx, o.ID, late, models.StatusSourceWebhook, "")
		if err != nil || changed {
			t.Errorf("terminal override with %s = %v, %v", late, changed, err)
		}
	}
	if got, _ := db.GetOrder(ctx, o.ID); got.Status != models.OrderStatusCancelled {
		t.Errorf("status after late events = %s, want cancelled", got.Status)
	}

	history, _ := db.ListOrderHistory(ctx, o.ID)
	if len(history) != 3 {
		t.Fatalf("history len = %d, want 3: %+v", len(history), history)
	}
	last := history[2]
	if last.Status != models.OrderStatusCancelled || last.Note != "kitchen closed" || last.Source != models.StatusSourceWebhook {
		t.Errorf("last history = %+v", last)
	}

	if _, err := db.UpdateOrderStatus(ctx, o.ID, "eaten", models.StatusSourceAPI, ""); err == nil {
		t.Error("expected error for invalid status")
	}
	if _, err := db.UpdateOrderStatus(ctx, "missing", models.OrderStatusReady, models.StatusSourceAPI, ""); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestMenus(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	loc := &models.Location{ID: "loc-1", Name: "Downtown", POSVendor: "mock", POSLocationID: "pos-loc-1", IsActive: true}
	if err := db.UpsertLocation(ctx, loc); err != nil {
		t.Fatalf("UpsertLocation: %v", err)
	}
	got, err := db.FindLocationByPOSID(ctx, "pos-loc-1")
	if err != nil || got.ID != "loc-1" {
		t.Fatalf("FindLocationByPOSID = %+v, %v", got, err)
	}
	if _, err := db.FindLocationByPOSID(ctx, "nope"); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}

	menu, err := db.EnsureMenu(ctx, "loc-1", "Main")
	if err != nil {
		t.Fatalf("EnsureMenu: %v", err)
	}
	again, _ := db.EnsureMenu(ctx, "loc-1", "Main")
	if again.ID != menu.ID {
		t.Error("EnsureMenu should reuse the existing menu")
	}

	item := &models.MenuItem{MenuID: menu.ID, LocationID: "loc-1", POSItemID: "pos-1", Name: "Margherita", Price: 1299, IsAvailable: true}
	inserted, err := db.UpsertMenuItemByPOSID(ctx, item)
	if err != nil || !inserted {
		t.Fatalf("UpsertMenuItemByPOSID = %v, %v", inserted, err)
	}
	item2 := &models.MenuItem{MenuID: menu.ID, LocationID: "loc-1", POSItemID: "pos-1", Name: "Margherita DOP", Price: 1399, IsAvailable: true}
	inserted, err = db.UpsertMenuItemByPOSID(ctx, item2)
	if err != nil || inserted || item2.ID != item.ID {
		t.Fatalf("second upsert = %v, %v, id %s vs %s", inserted, err, item2.ID, item.ID)
	}

	now := time.Now().UTC()
	if n, err := db.TouchMenuItems(ctx, "loc-1", []string{"pos-1", "pos-unknown"}, now); err != nil || n != 1 {
		t.Errorf("TouchMenuItems = %d, %v", n, err)
	}
	if n, err := db.MarkItemsUnavailableByPOSIDs(ctx, "loc-1", []string{"pos-1"}); err != nil || n != 1 {
		t.Errorf("MarkItemsUnavailableByPOSIDs = %d, %v", n, err)
	}
	stored, err := db.FindMenuItemByPOSID(ctx, "", "pos-1")
	if err != nil {
		t.Fatalf("FindMenuItemByPOSID: %v", err)
	}
	if stored.Name != "Margherita DOP" || stored.IsAvailable || !stored.Is86ed || stored.POSTouchedAt == nil {
		t.Errorf("stored = %+v", stored)
	}

	if err := db.SetMenuItemAvailability(ctx, stored.ID, true); err != nil {
		t.Fatalf("SetMenuItemAvailability: %v", err)
	}
	stored, _ = db.GetMenuItem(ctx, stored.ID)
	if !stored.IsAvailable || stored.Is86ed {
		t.Errorf("after restore = %+v", stored)
	}

	if err := db.SetMenuSynced(ctx, menu.ID, now); err != nil {
		t.Fatalf("SetMenuSynced: %v", err)
	}
	if n, err := db.ClearMenuSync(ctx, "loc-1"); err != nil || n != 1 {
		t.Errorf("ClearMenuSync = %d, %v", n, err)
	}
	menus, _ := db.ListMenus(ctx, "loc-1")
	if len(menus) != 1 || menus[0].LastSyncedAt != nil {
		t.Errorf("menus = %+v", menus)
	}
}

func TestSyncLogs(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	l := &models.SyncLog{LocationID: "loc-1", SyncType: models.SyncTypeFull}
	if err := db.CreateSyncLog(ctx, l); err != nil {
		t.Fatalf("CreateSyncLog: %v", err)
	}

	l.Status = models.SyncStatusCompleted
	l.ItemsSynced = 4
	if err := db.FinalizeSyncLog(ctx, l); err != nil {
		t.Fatalf("FinalizeSyncLog: %v", err)
	}

	// Finalizing twice is rejected.
	l.Status = models.SyncStatusFailed
	if err := db.FinalizeSyncLog(ctx, l); !errors.Is(err, ErrSyncLogNotFound) {
		t.Errorf("expected second finalize to be rejected, got %v", err)
	}

	got, err := db.GetSyncLog(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetSyncLog: %v", err)
	}
	if got.Status != models.SyncStatusCompleted || got.ItemsSynced != 4 || got.CompletedAt == nil {
		t.Errorf("log = %+v", got)
	}

	logs, err := db.ListSyncLogs(ctx, "loc-1", 10)
	if err != nil || len(logs) != 1 {
		t.Errorf("ListSyncLogs = %v, %v", logs, err)
	}
}

func TestWebhookEvents_UniqueEventID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	e := &models.WebhookEvent{EventID: "evt-1", Vendor: "skytab", EventType: "ticket.updated", Payload: []byte(`{"a":1}`)}
	inserted, existing, err := db.InsertWebhookEvent(ctx, e)
	if err != nil || !inserted || existing != nil {
		t.Fatalf("first insert = %v, %v, %v", inserted, existing, err)
	}

	dup := &models.WebhookEvent{EventID: "evt-1", Vendor: "skytab", EventType: "ticket.updated"}
	inserted, existing, err = db.InsertWebhookEvent(ctx, dup)
	if err != nil || inserted {
		t.Fatalf("duplicate insert = %v, %v", inserted, err)
	}
	if existing == nil || existing.ID != e.ID || existing.Status != models.WebhookEventPending {
		t.Errorf("existing = %+v", existing)
	}

	if err := db.MarkWebhookFailed(ctx, e.ID, "boom"); err != nil {
		t.Fatalf("MarkWebhookFailed: %v", err)
	}
	got, _ := db.GetWebhookEvent(ctx, e.ID)
	if got.Status != models.WebhookEventFailed || got.RetryCount != 1 || got.ErrorMessage != "boom" {
		t.Errorf("after fail = %+v", got)
	}

	if err := db.ResetWebhookPending(ctx, e.ID); err != nil {
		t.Fatalf("ResetWebhookPending: %v", err)
	}
	if err := db.MarkWebhookProcessed(ctx, e.ID, time.Now()); err != nil {
		t.Fatalf("MarkWebhookProcessed: %v", err)
	}
	got, _ = db.GetWebhookEventByEventID(ctx, "evt-1")
	if got.Status != models.WebhookEventProcessed || got.ProcessedAt == nil || string(got.Payload) != `{"a":1}` {
		t.Errorf("after processed = %+v", got)
	}

	failed, err := db.ListWebhookEvents(ctx, models.WebhookEventFailed, 10)
	if err != nil || len(failed) != 0 {
		t.Errorf("failed events = %v, %v", failed, err)
	}
}

type brokenResult struct{ err error }

func (r brokenResult) LastInsertId() (int64, error) { return 0, r.err }
func (r brokenResult) RowsAffected() (int64, error) { return 0, r.err }

func TestRequireAffected(t *testing.T) {
	t.Parallel()

	driverErr := errors.New("driver does not report rows")
	if err := requireAffected(brokenResult{err: driverErr}, ErrOrderNotFound); !errors.Is(err, driverErr) {
		t.Errorf("RowsAffected failure = %v, want wrapped driver error", err)
	}
	if _, err := rowsAffected(brokenResult{err: driverErr}); !errors.Is(err, driverErr) {
		t.Errorf("rowsAffected = %v, want wrapped driver error", err)
	}
}
