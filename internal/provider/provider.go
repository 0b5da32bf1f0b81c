// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package provider

import (
	"context"
	"time"

	"github.com/tomtom215/orderbridge/internal/models"
)

// Provider is the capability set every POS vendor adapter implements.
// locationID arguments are vendor location ids; an empty value selects the
// adapter's configured default location.
type Provider interface {
	// Name returns the registry key, e.g. "skytab".
	Name() string

	// Authenticate reports whether the vendor accepts our credentials. It never errors.
	Authenticate(ctx context.Context) bool

	SyncFullMenu(ctx context.Context, locationID string) (*MenuSyncResult, error)
	SyncMenuUpdates(ctx context.Context, locationID string, since time.Time) (*MenuUpdateResult, error)

	SendOrder(ctx context.Context, order *POSOrder) (*OrderResult, error)
	GetOrderStatus(ctx context.Context, posOrderID string) (models.OrderStatus, error)

	// CancelOrder returns true when the ticket is cancelled or the vendor
	// reports it missing or already terminal.
	CancelOrder(ctx context.Context, posOrderID, reason string) (bool, error)

	// UpdateItemAvailability sets an item's stock flag at the given POS
	// location; an empty locationID means the adapter's default location.
	UpdateItemAvailability(ctx context.Context, locationID, itemID string, isAvailable bool) error
	GetUnavailableItems(ctx context.Context, locationID string) ([]string, error)
}

// POSMenuItem is a vendor catalog item in neutral form. Prices are in cents.
type POSMenuItem struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Price            int64    `json:"price"`
	CategoryID       string   `json:"categoryId,omitempty"`
	CategoryName     string   `json:"categoryName,omitempty"`
	IsAvailable      bool     `json:"isAvailable"`
	ModifierGroupIDs []string `json:"modifierGroupIds,omitempty"`
}

// POSModifierGroup is a vendor modifier group.
type POSModifierGroup struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	MinSelections int      `json:"minSelections"`
	MaxSelections int      `json:"maxSelections"`
	ModifierIDs   []string `json:"modifierIds,omitempty"`
}

// POSModifier is a single vendor modifier option.
type POSModifier struct {
	ID          string `json:"id"`
	GroupID     string `json:"groupId"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	IsAvailable bool   `json:"isAvailable"`
}

// MenuSyncResult is the mapped result of a full catalog fetch.
type MenuSyncResult struct {
	Items          []POSMenuItem      `json:"items"`
	Modifiers      []POSModifier      `json:"modifiers"`
	ModifierGroups []POSModifierGroup `json:"modifierGroups"`
	ItemCount      int                `json:"itemCount"`
	ModifierCount  int                `json:"modifierCount"`
}

// MenuUpdateResult is a delta since a timestamp. Deleted ids are vendor ids
// the caller must reconcile.
type MenuUpdateResult struct {
	Items                   []POSMenuItem      `json:"items"`
	Modifiers               []POSModifier      `json:"modifiers"`
	ModifierGroups          []POSModifierGroup `json:"modifierGroups"`
	DeletedItemIDs          []string           `json:"deletedItemIds,omitempty"`
	DeletedModifierGroupIDs []string           `json:"deletedModifierGroupIds,omitempty"`
}

// POSCustomer identifies the ordering customer.
type POSCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// POSOrderModifier is a modifier on an order line.
type POSOrderModifier struct {
	POSModifierID string `json:"posModifierId"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Quantity      int    `json:"quantity"`
}

// POSOrderItem is an order line referencing a vendor catalog item.
type POSOrderItem struct {
	POSItemID           string             `json:"posItemId"`
	Name                string             `json:"name"`
	Quantity            int                `json:"quantity"`
	UnitPrice           int64              `json:"unitPrice"`
	SpecialInstructions string             `json:"specialInstructions,omitempty"`
	Modifiers           []POSOrderModifier `json:"modifiers,omitempty"`
}

// POSOrder is an order ready for submission to a vendor.
type POSOrder struct {
	LocationID          string           `json:"locationId"`
	ExternalReference   string           `json:"externalReference"`
	OrderType           models.OrderType `json:"orderType"`
	Customer            POSCustomer      `json:"customer"`
	DeliveryAddress     *models.Address  `json:"deliveryAddress,omitempty"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
	ScheduledFor        *time.Time       `json:"scheduledFor,omitempty"`
	Items               []POSOrderItem   `json:"items"`
	Subtotal            int64            `json:"subtotal"`
	Tax                 int64            `json:"tax"`
	Tip                 int64            `json:"tip"`
	DeliveryFee         int64            `json:"deliveryFee"`
	Total               int64            `json:"total"`
}

// OrderResult is the vendor's answer to a submission.
type OrderResult struct {
	POSOrderID string             `json:"posOrderId"`
	Success    bool               `json:"success"`
	Status     models.OrderStatus `json:"status,omitempty"`
	Message    string             `json:"message,omitempty"`
}
