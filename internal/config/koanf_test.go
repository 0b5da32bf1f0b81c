// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.POS.ClientID = "client"
	cfg.POS.ClientSecret = "secret"
	cfg.POS.LocationGUID = "loc-guid"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.POS.Timeout != 30*time.Second {
		t.Errorf("POS.Timeout = %v, want 30s", cfg.POS.Timeout)
	}
	if cfg.POS.MaxRetries != 3 {
		t.Errorf("POS.MaxRetries = %d, want 3", cfg.POS.MaxRetries)
	}
	if cfg.POS.RateLimitRequests != 60 || cfg.POS.RateLimitWindow != time.Minute {
		t.Errorf("POS rate limit = %d/%v, want 60/1m", cfg.POS.RateLimitRequests, cfg.POS.RateLimitWindow)
	}
	if cfg.POS.TokenRefreshBuffer != 5*time.Minute {
		t.Errorf("POS.TokenRefreshBuffer = %v, want 5m", cfg.POS.TokenRefreshBuffer)
	}
	if cfg.RetryQueue.BatchSize != 10 {
		t.Errorf("RetryQueue.BatchSize = %d, want 10", cfg.RetryQueue.BatchSize)
	}
	if cfg.RetryQueue.InitialDelay != 60*time.Second {
		t.Errorf("RetryQueue.InitialDelay = %v, want 60s", cfg.RetryQueue.InitialDelay)
	}
	if cfg.Webhook.Transport != TransportMemory {
		t.Errorf("Webhook.Transport = %q, want memory", cfg.Webhook.Transport)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
pos:
  vendor: skytab
  client_id: file-client
  client_secret: file-secret
  location_guid: file-loc
  max_retries: 2
retry_queue:
  batch_size: 25
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("POS_CLIENT_ID", "env-client")
	t.Setenv("POS_TIMEOUT", "10s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.POS.ClientID != "env-client" {
		t.Errorf("ClientID = %q, want env-client", cfg.POS.ClientID)
	}
	if cfg.POS.ClientSecret != "file-secret" {
		t.Errorf("ClientSecret = %q, want file-secret", cfg.POS.ClientSecret)
	}
	if cfg.POS.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", cfg.POS.MaxRetries)
	}
	if cfg.POS.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.POS.Timeout)
	}
	if cfg.RetryQueue.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", cfg.RetryQueue.BatchSize)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"POS_API_BASE_URL":   "pos.base_url",
		"POS_WEBHOOK_SECRET": "pos.webhook_secret",
		"DUCKDB_PATH":        "database.path",
		"ENVIRONMENT":        "server.environment",
		"NATS_EMBEDDED":      "webhook.embedded_nats",
		"HOME":               "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid skytab config",
			mutate: func(*Config) {},
		},
		{
			name: "mock vendor needs no credentials",
			mutate: func(c *Config) {
				c.POS = POSConfig{Vendor: "mock"}
			},
		},
		{
			name: "production without webhook secret fails",
			mutate: func(c *Config) {
				c.Server.Environment = EnvProduction
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = strings.Repeat("x", 32)
			},
			wantErr: "POS_WEBHOOK_SECRET",
		},
		{
			name: "production with webhook secret passes",
			mutate: func(c *Config) {
				c.Server.Environment = EnvProduction
				c.POS.WebhookSecret = "whsec"
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = strings.Repeat("x", 32)
			},
		},
		{
			name: "development without webhook secret passes",
			mutate: func(c *Config) {
				c.POS.WebhookSecret = ""
			},
		},
		{
			name: "missing credentials",
			mutate: func(c *Config) {
				c.POS.ClientSecret = ""
			},
			wantErr: "POS_CLIENT_SECRET",
		},
		{
			name: "bad base url",
			mutate: func(c *Config) {
				c.POS.BaseURL = "ftp://pos.example"
			},
			wantErr: "POS_API_BASE_URL",
		},
		{
			name: "unknown transport",
			mutate: func(c *Config) {
				c.Webhook.Transport = "kafka"
			},
			wantErr: "WEBHOOK_TRANSPORT",
		},
		{
			name: "short jwt secret",
			mutate: func(c *Config) {
				c.Security.AuthMode = "jwt"
				c.Security.JWTSecret = "short"
			},
			wantErr: "JWT_SECRET",
		},
		{
			name: "zero batch size",
			mutate: func(c *Config) {
				c.RetryQueue.BatchSize = 0
			},
			wantErr: "RETRY_QUEUE_BATCH_SIZE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolvedBaseURL(t *testing.T) {
	t.Parallel()

	p := POSConfig{Sandbox: true}
	if got := p.ResolvedBaseURL(); got != SkyTabSandboxURL {
		t.Errorf("sandbox URL = %q", got)
	}
	p.Sandbox = false
	if got := p.ResolvedBaseURL(); got != SkyTabProductionURL {
		t.Errorf("production URL = %q", got)
	}
	p.BaseURL = "http://localhost:9000"
	if got := p.ResolvedBaseURL(); got != "http://localhost:9000" {
		t.Errorf("explicit URL = %q", got)
	}
}
