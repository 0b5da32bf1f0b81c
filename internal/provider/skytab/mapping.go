// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package skytab

import (
	"math"
	"time"

	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/provider"
)

// Vendor order type tokens.
const (
	orderTypeDelivery = "DELIVERY"
	orderTypeTakeout  = "TAKEOUT"
	orderTypeDineIn   = "DINE_IN"
)

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}

func mapOrderType(t models.OrderType) string {
	switch t {
	case models.OrderTypeDelivery:
		return orderTypeDelivery
	case models.OrderTypeDineIn:
		return orderTypeDineIn
	default:
		return orderTypeTakeout
	}
}

func mapItems(items []menuItem, categories []category) []provider.POSMenuItem {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.GUID] = c.Name
	}

	out := make([]provider.POSMenuItem, 0, len(items))
	for _, it := range items {
		out = append(out, provider.POSMenuItem{
			ID:               it.GUID,
			Name:             it.Name,
			Description:      it.Description,
			Price:            toCents(it.Price),
			CategoryID:       it.CategoryGUID,
			CategoryName:     names[it.CategoryGUID],
			IsAvailable:      it.IsActive && it.IsAvailable,
			ModifierGroupIDs: it.ModifierGroupGUIDs,
		})
	}
	return out
}

func mapModifierGroups(groups []modifierGroup) ([]provider.POSModifierGroup, []provider.POSModifier) {
	outGroups := make([]provider.POSModifierGroup, 0, len(groups))
	var outMods []provider.POSModifier
	for _, g := range groups {
		ids := make([]string, 0, len(g.Modifiers))
		for _, m := range g.Modifiers {
			ids = append(ids, m.GUID)
			outMods = append(outMods, provider.POSModifier{
				ID:          m.GUID,
				GroupID:     g.GUID,
				Name:        m.Name,
				Price:       toCents(m.Price),
				IsAvailable: m.IsActive && m.IsAvailable,
			})
		}
		outGroups = append(outGroups, provider.POSModifierGroup{
			ID:            g.GUID,
			Name:          g.Name,
			MinSelections: g.MinSelections,
			MaxSelections: g.MaxSelections,
			ModifierIDs:   ids,
		})
	}
	if outMods == nil {
		outMods = []provider.POSModifier{}
	}
	return outGroups, outMods
}

func buildTicket(o *provider.POSOrder) ticketRequest {
	req := ticketRequest{
		ExternalReference: o.ExternalReference,
		OrderType:         mapOrderType(o.OrderType),
		Customer: ticketCustomer{
			Name:  o.Customer.Name,
			Phone: o.Customer.Phone,
			Email: o.Customer.Email,
		},
		SpecialInstructions: o.SpecialInstructions,
		Items:               make([]ticketItem, 0, len(o.Items)),
		Subtotal:            fromCents(o.Subtotal),
		Tax:                 fromCents(o.Tax),
		Tip:                 fromCents(o.Tip),
		DeliveryFee:         fromCents(o.DeliveryFee),
		Total:               fromCents(o.Total),
	}
	if o.DeliveryAddress != nil {
		req.DeliveryAddress = &ticketAddress{
			Line1:      o.DeliveryAddress.Line1,
			Line2:      o.DeliveryAddress.Line2,
			City:       o.DeliveryAddress.City,
			State:      o.DeliveryAddress.State,
			PostalCode: o.DeliveryAddress.PostalCode,
		}
	}
	if o.ScheduledFor != nil {
		req.ScheduledTime = o.ScheduledFor.UTC().Format(time.RFC3339)
	}
	for _, it := range o.Items {
		ti := ticketItem{
			ItemGUID:            it.POSItemID,
			Quantity:            it.Quantity,
			UnitPrice:           fromCents(it.UnitPrice),
			SpecialInstructions: it.SpecialInstructions,
		}
		for _, m := range it.Modifiers {
			qty := m.Quantity
			if qty <= 0 {
				qty = 1
			}
			ti.Modifiers = append(ti.Modifiers, ticketModifier{
				ModifierGUID: m.POSModifierID,
				Quantity:     qty,
				Price:        fromCents(m.Price),
			})
		}
		req.Items = append(req.Items, ti)
	}
	return req
}
