// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package mock

import "github.com/tomtom215/orderbridge/internal/provider"

func sampleItems() []provider.POSMenuItem {
	return []provider.POSMenuItem{
		{
			ID:               "mock-item-margherita",
			Name:             "Margherita Pizza",
			Description:      "Tomato, mozzarella, basil",
			Price:            1299,
			CategoryID:       "mock-cat-pizza",
			CategoryName:     "Pizza",
			IsAvailable:      true,
			ModifierGroupIDs: []string{"mock-grp-size", "mock-grp-toppings"},
		},
		{
			ID:               "mock-item-pepperoni",
			Name:             "Pepperoni Pizza",
			Description:      "Tomato, mozzarella, pepperoni",
			Price:            1499,
			CategoryID:       "mock-cat-pizza",
			CategoryName:     "Pizza",
			IsAvailable:      true,
			ModifierGroupIDs: []string{"mock-grp-size", "mock-grp-toppings"},
		},
		{
			ID:           "mock-item-garlic-knots",
			Name:         "Garlic Knots",
			Price:        599,
			CategoryID:   "mock-cat-sides",
			CategoryName: "Sides",
			IsAvailable:  true,
		},
		{
			ID:           "mock-item-soda",
			Name:         "Fountain Soda",
			Price:        249,
			CategoryID:   "mock-cat-drinks",
			CategoryName: "Drinks",
			IsAvailable:  true,
		},
	}
}

func sampleModifiers() ([]provider.POSModifierGroup, []provider.POSModifier) {
	groups := []provider.POSModifierGroup{
		{
			ID:            "mock-grp-size",
			Name:          "Size",
			MinSelections: 1,
			MaxSelections: 1,
			ModifierIDs:   []string{"mock-mod-small", "mock-mod-large"},
		},
		{
			ID:            "mock-grp-toppings",
			Name:          "Extra Toppings",
			MinSelections: 0,
			MaxSelections: 5,
			ModifierIDs:   []string{"mock-mod-mushroom", "mock-mod-olive"},
		},
	}
	mods := []provider.POSModifier{
		{ID: "mock-mod-small", GroupID: "mock-grp-size", Name: "Small", Price: 0, IsAvailable: true},
		{ID: "mock-mod-large", GroupID: "mock-grp-size", Name: "Large", Price: 300, IsAvailable: true},
		{ID: "mock-mod-mushroom", GroupID: "mock-grp-toppings", Name: "Mushroom", Price: 150, IsAvailable: true},
		{ID: "mock-mod-olive", GroupID: "mock-grp-toppings", Name: "Black Olive", Price: 150, IsAvailable: true},
	}
	return groups, mods
}
