// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/provider/mock"
	"github.com/tomtom215/orderbridge/internal/provider/skytab"
	"github.com/tomtom215/orderbridge/internal/webhook"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMintToken(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	if err := mintToken(cfg, "ops", "admin", 0); err == nil {
		t.Error("expected error without a JWT secret")
	}

	cfg.Security.JWTSecret = strings.Repeat("k", 32)
	if err := mintToken(cfg, "ops", "superuser", 0); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		vendor    string
		env       string
		wantNames []string
	}{
		{"mock vendor", mock.Name, config.EnvDevelopment, []string{mock.Name}},
		{"skytab in development", skytab.Name, config.EnvDevelopment, []string{mock.Name, skytab.Name}},
		{"skytab in production", skytab.Name, config.EnvProduction, []string{skytab.Name}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := newTestDB(t)
			cfg := &config.Config{}
			cfg.POS.Vendor = tt.vendor
			cfg.POS.BaseURL = "https://pos.example/v1"
			cfg.Server.Environment = tt.env

			receiver := webhook.NewReceiver(db, webhook.NewDispatcher(webhook.NewMemoryTransport().Publisher, "test"))
			registry, closeAll, err := buildRegistry(context.Background(), cfg, db, receiver)
			if err != nil {
				t.Fatalf("buildRegistry: %v", err)
			}
			defer closeAll()

			names := registry.Names()
			if strings.Join(names, ",") != strings.Join(tt.wantNames, ",") {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
		})
	}
}

func TestSeedDemoLocation_Idempotent(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := seedDemoLocation(ctx, db); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	loc, err := db.GetLocation(ctx, demoLocationID)
	if err != nil {
		t.Fatalf("GetLocation: %v", err)
	}
	if loc.POSVendor != mock.Name || !loc.IsActive {
		t.Errorf("location = %+v", loc)
	}
}
