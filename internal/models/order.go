// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package models

import "time"

// OrderStatus is the platform-side order lifecycle status. The same enum is
// used for statuses reported by the POS, so adapter polling and webhooks
// always agree on the local value.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// AllOrderStatuses lists every valid status in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOutForDelivery,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// IsTerminal reports whether no further transitions are expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderType is how the customer receives the order.
type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDineIn   OrderType = "dine_in"
)

// POSSyncStatus tracks whether an order has reached the POS.
type POSSyncStatus string

const (
	POSSyncPending POSSyncStatus = "pending"
	POSSyncSynced  POSSyncStatus = "synced"
	POSSyncFailed  POSSyncStatus = "failed"
)

// StatusSource identifies who caused a status change.
type StatusSource string

const (
	StatusSourceAPI     StatusSource = "api"
	StatusSourceWebhook StatusSource = "webhook"
	StatusSourceSystem  StatusSource = "system"
)

// Address is a delivery address.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

// Order is the local order aggregate. Amounts are in minor currency units.
type Order struct {
	ID                  string      `json:"id"`
	LocationID          string      `json:"locationId"`
	OrderType           OrderType   `json:"orderType"`
	Status              OrderStatus `json:"status"`
	CustomerName        string      `json:"customerName"`
	CustomerPhone       string      `json:"customerPhone,omitempty"`
	CustomerEmail       string      `json:"customerEmail,omitempty"`
	DeliveryAddress     *Address    `json:"deliveryAddress,omitempty"`
	SpecialInstructions string      `json:"specialInstructions,omitempty"`
	ScheduledFor        *time.Time  `json:"scheduledFor,omitempty"`

	Subtotal    int64 `json:"subtotal"`
	Tax         int64 `json:"tax"`
	Tip         int64 `json:"tip"`
	DeliveryFee int64 `json:"deliveryFee"`
	Total       int64 `json:"total"`

	POSOrderID      string        `json:"posOrderId,omitempty"`
	POSSyncStatus   POSSyncStatus `json:"posSyncStatus"`
	POSSyncedAt     *time.Time    `json:"posSyncedAt,omitempty"`
	POSErrorMessage string        `json:"posErrorMessage,omitempty"`

	CancelledAt *time.Time  `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem is one order line.
type OrderItem struct {
	ID                  string              `json:"id"`
	OrderID             string              `json:"orderId"`
	MenuItemID          string              `json:"menuItemId"`
	POSItemID           string              `json:"posItemId,omitempty"`
	Name                string              `json:"name"`
	Quantity            int                 `json:"quantity"`
	UnitPrice           int64               `json:"unitPrice"`
	SpecialInstructions string              `json:"specialInstructions,omitempty"`
	Modifiers           []OrderItemModifier `json:"modifiers,omitempty"`
}

// OrderItemModifier is a modifier selected on an order line.
type OrderItemModifier struct {
	POSModifierID string `json:"posModifierId,omitempty"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Quantity      int    `json:"quantity"`
}

// OrderStatusHistory is one append-only status change record.
type OrderStatusHistory struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"orderId"`
	Status    OrderStatus  `json:"status"`
	Note      string       `json:"note,omitempty"`
	Source    StatusSource `json:"source"`
	CreatedAt time.Time    `json:"createdAt"`
}
