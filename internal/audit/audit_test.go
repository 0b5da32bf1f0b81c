// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/orderbridge/internal/logging"
)

func TestLogger_RecordWritesToStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	l := NewLogger(store, nil)

	ctx := logging.ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithActor(ctx, Actor{ID: "admin", Type: "user"})
	l.Record(ctx, EventTypeOrderSubmitted, OutcomeSuccess, &Target{ID: "o-1", Type: "order"}, "sent", map[string]string{"posOrderId": "t-1"})

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	events, _ := store.Query(context.Background(), QueryFilter{})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Errorf("id/timestamp not populated: %+v", e)
	}
	if e.RequestID != "req-1" || e.Actor.ID != "admin" {
		t.Errorf("context not carried: request=%q actor=%+v", e.RequestID, e.Actor)
	}
	if string(e.Metadata) != `{"posOrderId":"t-1"}` {
		t.Errorf("metadata = %s", e.Metadata)
	}
}

func TestLogger_SeverityAndDisabled(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	l := NewLogger(store, &Config{Enabled: true, LogLevel: SeverityWarning})
	l.Log(&Event{Type: EventTypeMenuSyncStarted, Severity: SeverityInfo})
	l.Log(&Event{Type: EventTypeMenuSyncFailed, Severity: SeverityError})
	_ = l.Close()
	if store.Len() != 1 {
		t.Errorf("expected only the error event, got %d", store.Len())
	}

	off := NewMemoryStore(10)
	l = NewLogger(off, &Config{Enabled: false})
	l.Log(&Event{Type: EventTypeMenuSyncFailed, Severity: SeverityError})
	_ = l.Close()
	if off.Len() != 0 {
		t.Errorf("disabled logger stored %d events", off.Len())
	}
}

func TestLogger_LogAfterClose(t *testing.T) {
	t.Parallel()

	l := NewLogger(NewMemoryStore(10), nil)
	_ = l.Close()
	_ = l.Close()
	l.Log(&Event{Type: EventTypeOrderCancelled})
}

func TestMemoryStore_Filters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore(100)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = s.Save(ctx, &Event{ID: "1", Timestamp: base, Type: EventTypeOrderSubmitted, Outcome: OutcomeSuccess, Target: &Target{ID: "o-1", Type: "order"}})
	_ = s.Save(ctx, &Event{ID: "2", Timestamp: base.Add(time.Hour), Type: EventTypeOrderQueued, Outcome: OutcomeFailure, Target: &Target{ID: "o-2", Type: "order"}})
	_ = s.Save(ctx, &Event{ID: "3", Timestamp: base.Add(2 * time.Hour), Type: EventTypeMenuSyncCompleted, Outcome: OutcomeSuccess})

	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"all newest first", QueryFilter{}, []string{"3", "2", "1"}},
		{"by type", QueryFilter{Types: []EventType{EventTypeOrderQueued}}, []string{"2"}},
		{"by outcome", QueryFilter{Outcomes: []Outcome{OutcomeSuccess}}, []string{"3", "1"}},
		{"by target", QueryFilter{TargetID: "o-1"}, []string{"1"}},
		{"limit offset", QueryFilter{Limit: 1, Offset: 1}, []string{"2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := s.Query(ctx, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("event %d = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}

	n, _ := s.Delete(ctx, base.Add(90*time.Minute))
	if n != 2 || s.Len() != 1 {
		t.Errorf("Delete removed %d, left %d", n, s.Len())
	}
}

func TestDuckDBStore_RoundTrip(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	store := NewDuckDBStore(db)
	if err := store.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := store.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable should be idempotent: %v", err)
	}

	ts := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	ev := &Event{
		ID: "e-1", Timestamp: ts, Type: EventTypeItemAvailability, Severity: SeverityInfo,
		Outcome: OutcomeSuccess, Actor: SystemActor(),
		Target: &Target{ID: "mi-1", Type: "menu_item"}, Action: "86", Description: "item 86'd",
		Metadata: []byte(`{"isAvailable":false}`), RequestID: "req-9",
	}
	if err := store.Save(ctx, ev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, &Event{
		ID: "e-2", Timestamp: ts.Add(time.Minute), Type: EventTypeMenuSyncCompleted,
		Severity: SeverityInfo, Outcome: OutcomeSuccess, Actor: SystemActor(), Action: "sync", Description: "ok",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Query(ctx, QueryFilter{TargetType: "menu_item"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].ID != "e-1" || got[0].Target == nil || got[0].Target.ID != "mi-1" {
		t.Fatalf("Query = %+v", got)
	}
	if got[0].RequestID != "req-9" || string(got[0].Metadata) != `{"isAvailable":false}` {
		t.Errorf("round trip lost fields: %+v", got[0])
	}

	n, err := store.Count(ctx, QueryFilter{Types: []EventType{EventTypeMenuSyncCompleted, EventTypeItemAvailability}})
	if err != nil || n != 2 {
		t.Errorf("Count = %d, %v", n, err)
	}

	deleted, err := store.Delete(ctx, ts.Add(30*time.Second))
	if err != nil || deleted != 1 {
		t.Errorf("Delete = %d, %v", deleted, err)
	}
}
