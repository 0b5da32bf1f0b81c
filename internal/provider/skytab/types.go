// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package skytab

// Wire types for the SkyTab REST API. Money is decimal currency units.

type menuResponse struct {
	Categories     []category      `json:"categories"`
	Items          []menuItem      `json:"items"`
	ModifierGroups []modifierGroup `json:"modifierGroups"`
}

type menuChangesResponse struct {
	Categories                []category      `json:"categories"`
	Items                     []menuItem      `json:"items"`
	ModifierGroups            []modifierGroup `json:"modifierGroups"`
	DeletedItemGUIDs          []string        `json:"deletedItemGuids"`
	DeletedModifierGroupGUIDs []string        `json:"deletedModifierGroupGuids"`
}

type category struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

type menuItem struct {
	GUID               string   `json:"guid"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	CategoryGUID       string   `json:"categoryGuid"`
	IsActive           bool     `json:"isActive"`
	IsAvailable        bool     `json:"isAvailable"`
	ModifierGroupGUIDs []string `json:"modifierGroupGuids"`
}

type modifierGroup struct {
	GUID          string     `json:"guid"`
	Name          string     `json:"name"`
	MinSelections int        `json:"minSelections"`
	MaxSelections int        `json:"maxSelections"`
	Modifiers     []modifier `json:"modifiers"`
}

type modifier struct {
	GUID        string  `json:"guid"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	IsActive    bool    `json:"isActive"`
	IsAvailable bool    `json:"isAvailable"`
}

type ticketRequest struct {
	ExternalReference   string         `json:"externalReference"`
	OrderType           string         `json:"orderType"`
	Customer            ticketCustomer `json:"customer"`
	DeliveryAddress     *ticketAddress `json:"deliveryAddress,omitempty"`
	ScheduledTime       string         `json:"scheduledTime,omitempty"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
	Items               []ticketItem   `json:"items"`
	Subtotal            float64        `json:"subtotal"`
	Tax                 float64        `json:"tax"`
	Tip                 float64        `json:"tip"`
	DeliveryFee         float64        `json:"deliveryFee"`
	Total               float64        `json:"total"`
}

type ticketCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type ticketAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

type ticketItem struct {
	ItemGUID            string           `json:"itemGuid"`
	Quantity            int              `json:"quantity"`
	UnitPrice           float64          `json:"unitPrice"`
	SpecialInstructions string           `json:"specialInstructions,omitempty"`
	Modifiers           []ticketModifier `json:"modifiers,omitempty"`
}

type ticketModifier struct {
	ModifierGUID string  `json:"modifierGuid"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
}

type ticketResponse struct {
	GUID              string `json:"guid"`
	Status            string `json:"status"`
	ExternalReference string `json:"externalReference,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

type stockUpdateRequest struct {
	IsAvailable bool `json:"isAvailable"`
}

type stockResponse struct {
	Items []stockItem `json:"items"`
}

type stockItem struct {
	ItemGUID    string `json:"itemGuid"`
	IsAvailable bool   `json:"isAvailable"`
}
