// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package config

import (
	"fmt"
	"time"
)

// Environment names recognized by server.environment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Webhook transports.
const (
	TransportMemory = "memory"
	TransportNATS   = "nats"
)

// POS vendor base URLs used when pos.base_url is not set.
const (
	SkyTabSandboxURL    = "https://api-sandbox.skytab.com/v1"
	SkyTabProductionURL = "https://api.skytab.com/v1"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config file: optional YAML (CONFIG_PATH, config.yaml, config.yml)
//  3. Environment variables: legacy names mapped in envTransformFunc
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	POS        POSConfig        `koanf:"pos"`
	Mock       MockConfig       `koanf:"mock"`
	Database   DatabaseConfig   `koanf:"database"`
	RetryQueue RetryQueueConfig `koanf:"retry_queue"`
	Webhook    WebhookConfig    `koanf:"webhook"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Environment     string        `koanf:"environment"` // development, staging, production
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == EnvProduction
}

// POSConfig holds the POS vendor connection settings.
type POSConfig struct {
	Vendor           string `koanf:"vendor"` // skytab or mock
	BaseURL          string `koanf:"base_url"`
	Sandbox          bool   `koanf:"sandbox"`
	ClientID         string `koanf:"client_id"`
	ClientSecret     string `koanf:"client_secret"`
	APIKey           string `koanf:"api_key"`
	LocationGUID     string `koanf:"location_guid"`
	WebhookSecret    string `koanf:"webhook_secret"`
	InterfaceName    string `koanf:"interface_name"`
	InterfaceVersion string `koanf:"interface_version"`

	Timeout            time.Duration `koanf:"timeout"`
	MaxRetries         int           `koanf:"max_retries"`
	RetryBaseDelay     time.Duration `koanf:"retry_base_delay"`
	MaxRetryDelay      time.Duration `koanf:"max_retry_delay"`
	RateLimitRequests  int           `koanf:"rate_limit_requests"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	TokenRefreshBuffer time.Duration `koanf:"token_refresh_buffer"`
}

// ResolvedBaseURL returns BaseURL, or the sandbox/production default when unset.
func (p POSConfig) ResolvedBaseURL() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	if p.Sandbox {
		return SkyTabSandboxURL
	}
	return SkyTabProductionURL
}

// MockConfig tunes the in-memory mock provider.
type MockConfig struct {
	StatusStep time.Duration `koanf:"status_step"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// RetryQueueConfig holds failed-request queue settings.
type RetryQueueConfig struct {
	Path          string        `koanf:"path"`
	InMemory      bool          `koanf:"in_memory"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	BatchSize     int           `koanf:"batch_size"`
	MaxRetries    int           `koanf:"max_retries"`
	InitialDelay  time.Duration `koanf:"initial_delay"`
	MaxBackoff    time.Duration `koanf:"max_backoff"`
	ReplayRate    float64       `koanf:"replay_rate"` // replays per second
	CompletedTTL  time.Duration `koanf:"completed_ttl"`
}

// WebhookConfig holds inbound webhook processing settings.
type WebhookConfig struct {
	Transport      string        `koanf:"transport"` // memory or nats
	Topic          string        `koanf:"topic"`
	Workers        int           `koanf:"workers"`
	MaxBodyBytes   int64         `koanf:"max_body_bytes"`
	ProcessRetries int           `koanf:"process_retries"`
	ThrottlePerSec int64         `koanf:"throttle_per_sec"` // 0 disables
	NATSURL        string        `koanf:"nats_url"`
	EmbeddedNATS   bool          `koanf:"embedded_nats"`
	NATSStoreDir   string        `koanf:"nats_store_dir"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds admin API authentication and HTTP rate limiting.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none or jwt
	JWTSecret         string        `koanf:"jwt_secret"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// AuthzPolicyPath replaces the built-in route policy when set.
	AuthzPolicyPath string        `koanf:"authz_policy_path"`
	AuthzCacheTTL   time.Duration `koanf:"authz_cache_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
