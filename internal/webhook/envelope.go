// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package webhook

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Vendor event types.
const (
	EventTicketCreated           = "ticket.created"
	EventTicketUpdated           = "ticket.updated"
	EventTicketStatusChanged     = "ticket.status_changed"
	EventTicketCancelled         = "ticket.cancelled"
	EventMenuUpdated             = "menu.updated"
	EventItemAvailabilityChanged = "menu.item_availability_changed"
	EventStockUpdated            = "stock.updated"
	EventLocationHoursChanged    = "location.hours_changed"
)

var errMissingEventID = errors.New("missing eventId")

// Envelope is the common wrapper of every vendor push.
type Envelope struct {
	EventType    string          `json:"eventType"`
	EventID      string          `json:"eventId"`
	Timestamp    EventTime       `json:"timestamp"`
	LocationGUID string          `json:"locationGuid"`
	Data         json.RawMessage `json:"data"`
	Signature    string          `json:"signature,omitempty"`
}

// EventTime is the vendor's event timestamp. It accepts RFC3339 strings and
// epoch seconds or milliseconds, as numbers or numeric strings. Anything else
// decodes to the zero time rather than rejecting the event.
type EventTime struct {
	time.Time
}

// Epoch values above this are taken as milliseconds.
const epochMillisThreshold = 1e11

// UnmarshalJSON never fails.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = ts.UTC()
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		if f >= epochMillisThreshold {
			t.Time = time.UnixMilli(int64(f)).UTC()
		} else {
			t.Time = time.Unix(int64(f), 0).UTC()
		}
	}
	return nil
}

// MarshalJSON writes RFC3339, or null for the zero time.
func (t EventTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// OccurredAt is the vendor timestamp, or fallback when the vendor sent none
// that could be read.
func (e *Envelope) OccurredAt(fallback time.Time) time.Time {
	if e.Timestamp.IsZero() {
		return fallback
	}
	return e.Timestamp.Time
}

// ParseEnvelope decodes body and requires an event id.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.EventID == "" {
		return nil, errMissingEventID
	}
	return &env, nil
}

// TicketData is the data of ticket.* events.
type TicketData struct {
	TicketGUID        string `json:"ticketGuid"`
	ExternalReference string `json:"externalReference,omitempty"`
	Status            string `json:"status"`
	Reason            string `json:"reason,omitempty"`
}

// MenuData is the data of menu.updated and menu.item_availability_changed.
type MenuData struct {
	ItemGUIDs   []string `json:"itemGuids,omitempty"`
	ItemGUID    string   `json:"itemGuid,omitempty"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
}

// itemIDs merges the list and single-item forms.
func (d MenuData) itemIDs() []string {
	ids := append([]string(nil), d.ItemGUIDs...)
	if d.ItemGUID != "" {
		ids = append(ids, d.ItemGUID)
	}
	return ids
}

// StockItem is one entry of a stock.updated event.
type StockItem struct {
	ItemGUID    string `json:"itemGuid"`
	IsAvailable bool   `json:"isAvailable"`
}

// StockData is the data of stock.updated.
type StockData struct {
	Items []StockItem `json:"items"`
}
