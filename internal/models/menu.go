// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package models

import "time"

// Location is a restaurant location and its POS binding.
type Location struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	POSVendor     string `json:"posVendor"`
	POSLocationID string `json:"posLocationId"`
	Timezone      string `json:"timezone,omitempty"`
	IsActive      bool   `json:"isActive"`
}

// Menu is a location's menu. A nil LastSyncedAt marks it for re-sync.
type Menu struct {
	ID           string     `json:"id"`
	LocationID   string     `json:"locationId"`
	Name         string     `json:"name"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// MenuItem is a local menu item mapped to a POS catalog entry by POSItemID.
type MenuItem struct {
	ID           string     `json:"id"`
	MenuID       string     `json:"menuId"`
	LocationID   string     `json:"locationId"`
	POSItemID    string     `json:"posItemId,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Price        int64      `json:"price"`
	CategoryID   string     `json:"categoryId,omitempty"`
	IsAvailable  bool       `json:"isAvailable"`
	Is86ed       bool       `json:"is86ed"`
	POSTouchedAt *time.Time `json:"posTouchedAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// SetAvailability keeps IsAvailable and Is86ed consistent.
func (m *MenuItem) SetAvailability(available bool) {
	m.IsAvailable = available
	m.Is86ed = !available
}
