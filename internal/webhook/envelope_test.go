// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"testing"
	"time"
)

func TestParseEnvelope_Timestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"rfc3339", `"2026-01-01T12:00:00Z"`, want},
		{"rfc3339 offset", `"2026-01-01T13:00:00+01:00"`, want},
		{"epoch millis", `1767268800000`, want},
		{"epoch seconds", `1767268800`, want},
		{"epoch millis string", `"1767268800000"`, want},
		{"null", `null`, time.Time{}},
		{"garbage", `"next tuesday"`, time.Time{}},
		{"object", `{"at":1}`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := []byte(`{"eventType":"menu.updated","eventId":"evt-1","timestamp":` + tt.ts + `}`)
			env, err := ParseEnvelope(body)
			if err != nil {
				t.Fatalf("ParseEnvelope: %v", err)
			}
			if !env.Timestamp.Equal(tt.want) {
				t.Errorf("timestamp = %v, want %v", env.Timestamp.Time, tt.want)
			}
		})
	}
}

func TestEnvelope_OccurredAt(t *testing.T) {
	t.Parallel()
	received := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

	env := &Envelope{}
	if got := env.OccurredAt(received); !got.Equal(received) {
		t.Errorf("zero timestamp: got %v, want received time", got)
	}
	sent := received.Add(-time.Minute)
	env.Timestamp = EventTime{Time: sent}
	if got := env.OccurredAt(received); !got.Equal(sent) {
		t.Errorf("got %v, want %v", got, sent)
	}
}

func TestParseEnvelope_MissingEventID(t *testing.T) {
	t.Parallel()
	if _, err := ParseEnvelope([]byte(`{"eventType":"menu.updated","timestamp":1}`)); err == nil {
		t.Error("expected error without eventId")
	}
}
