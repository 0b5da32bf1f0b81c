// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/models"
	"github.com/tomtom215/orderbridge/internal/posclient"
	"github.com/tomtom215/orderbridge/internal/provider"
	"github.com/tomtom215/orderbridge/internal/provider/mock"
	"github.com/tomtom215/orderbridge/internal/provider/skytab"
	"github.com/tomtom215/orderbridge/internal/webhook"
)

const demoLocationID = "demo-location"

// buildRegistry registers the configured POS vendor. The mock provider is
// also registered outside production so demo locations keep working.
func buildRegistry(ctx context.Context, cfg *config.Config, db *database.DB, receiver *webhook.Receiver) (*provider.Registry, func(), error) {
	registry := provider.NewRegistry()
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.POS.Vendor == skytab.Name {
		client, err := posclient.New(posclient.FromConfig(cfg.POS))
		if err != nil {
			return nil, closeAll, fmt.Errorf("init skytab client: %w", err)
		}
		registry.Register(skytab.Name, skytab.New(client, cfg.POS.LocationGUID))
		logging.Info().Str("base_url", cfg.POS.ResolvedBaseURL()).Msg("SkyTab provider registered")
	}

	if cfg.POS.Vendor == mock.Name || !cfg.Server.IsProduction() {
		p := mock.New(cfg.Mock.StatusStep)
		p.OnStatusChange(mockStatusFeed(ctx, receiver))
		registry.Register(mock.Name, p)
		closers = append(closers, p.Close)
		logging.Info().Dur("status_step", cfg.Mock.StatusStep).Msg("Mock provider registered")

		if cfg.POS.Vendor == mock.Name {
			if err := seedDemoLocation(ctx, db); err != nil {
				return nil, closeAll, err
			}
		}
	}

	return registry, closeAll, nil
}

// mockStatusFeed turns simulated ticket transitions into webhook deliveries
// so they travel the same path as real vendor pushes.
func mockStatusFeed(ctx context.Context, receiver *webhook.Receiver) mock.StatusListener {
	return func(posOrderID string, status models.OrderStatus) {
		data, err := json.Marshal(webhook.TicketData{TicketGUID: posOrderID, Status: string(status)})
		if err != nil {
			return
		}
		body, err := json.Marshal(webhook.Envelope{
			EventType: webhook.EventTicketStatusChanged,
			EventID:   uuid.NewString(),
			Timestamp: webhook.EventTime{Time: time.Now().UTC()},
			Data:      data,
		})
		if err != nil {
			return
		}
		if ack := receiver.Receive(ctx, mock.Name, body); ack.Error != "" {
			logging.Warn().Str("pos_order_id", posOrderID).Str("error", ack.Error).Msg("mock status delivery failed")
		}
	}
}

func seedDemoLocation(ctx context.Context, db *database.DB) error {
	if _, err := db.GetLocation(ctx, demoLocationID); err == nil {
		return nil
	}
	loc := &models.Location{
		ID:            demoLocationID,
		Name:          "Demo Kitchen",
		POSVendor:     mock.Name,
		POSLocationID: "mock-location",
		Timezone:      "UTC",
		IsActive:      true,
	}
	if err := db.UpsertLocation(ctx, loc); err != nil {
		return fmt.Errorf("seed demo location: %w", err)
	}
	logging.Info().Str("location_id", loc.ID).Msg("Seeded demo location for mock provider")
	return nil
}
