// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/orderbridge/config.yaml",
	"/etc/orderbridge/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3857,
			Environment:     EnvDevelopment,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		POS: POSConfig{
			Vendor:             "skytab",
			Sandbox:            true,
			InterfaceName:      "OrderBridge",
			InterfaceVersion:   "1.0",
			Timeout:            30 * time.Second,
			MaxRetries:         3,
			RetryBaseDelay:     time.Second,
			MaxRetryDelay:      30 * time.Second,
			RateLimitRequests:  60,
			RateLimitWindow:    time.Minute,
			TokenRefreshBuffer: 5 * time.Minute,
		},
		Mock: MockConfig{
			StatusStep: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "./data/orderbridge.duckdb",
			MaxMemory: "512MB",
		},
		RetryQueue: RetryQueueConfig{
			Path:          "./data/retryqueue",
			SweepInterval: time.Minute,
			BatchSize:     10,
			MaxRetries:    5,
			InitialDelay:  60 * time.Second,
			MaxBackoff:    30 * time.Minute,
			ReplayRate:    5,
			CompletedTTL:  7 * 24 * time.Hour,
		},
		Webhook: WebhookConfig{
			Transport:      TransportMemory,
			Topic:          "pos.webhook.events",
			Workers:        4,
			MaxBodyBytes:   1 << 20,
			ProcessRetries: 3,
			ThrottlePerSec: 50,
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedNATS:   false,
			NATSStoreDir:   "./data/nats",
			CloseTimeout:   30 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:          "none",
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
			AuthzCacheTTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment (highest priority), then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"environment":      "server.environment",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	// POS vendor
	"pos_vendor":               "pos.vendor",
	"pos_api_base_url":         "pos.base_url",
	"pos_sandbox":              "pos.sandbox",
	"pos_client_id":            "pos.client_id",
	"pos_client_secret":        "pos.client_secret",
	"pos_api_key":              "pos.api_key",
	"pos_location_guid":        "pos.location_guid",
	"pos_webhook_secret":       "pos.webhook_secret",
	"pos_interface_name":       "pos.interface_name",
	"pos_interface_version":    "pos.interface_version",
	"pos_timeout":              "pos.timeout",
	"pos_max_retries":          "pos.max_retries",
	"pos_retry_base_delay":     "pos.retry_base_delay",
	"pos_max_retry_delay":      "pos.max_retry_delay",
	"pos_rate_limit_requests":  "pos.rate_limit_requests",
	"pos_rate_limit_window":    "pos.rate_limit_window",
	"pos_token_refresh_buffer": "pos.token_refresh_buffer",

	// Mock provider
	"mock_status_step": "mock.status_step",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Retry queue
	"retry_queue_path":           "retry_queue.path",
	"retry_queue_in_memory":      "retry_queue.in_memory",
	"retry_queue_sweep_interval": "retry_queue.sweep_interval",
	"retry_queue_batch_size":     "retry_queue.batch_size",
	"retry_queue_max_retries":    "retry_queue.max_retries",
	"retry_queue_initial_delay":  "retry_queue.initial_delay",
	"retry_queue_max_backoff":    "retry_queue.max_backoff",
	"retry_queue_replay_rate":    "retry_queue.replay_rate",
	"retry_queue_completed_ttl":  "retry_queue.completed_ttl",

	// Webhooks
	"webhook_transport":       "webhook.transport",
	"webhook_topic":           "webhook.topic",
	"webhook_workers":         "webhook.workers",
	"webhook_max_body_bytes":  "webhook.max_body_bytes",
	"webhook_process_retries": "webhook.process_retries",
	"webhook_throttle":        "webhook.throttle_per_sec",
	"nats_url":                "webhook.nats_url",
	"nats_embedded":           "webhook.embedded_nats",
	"nats_store_dir":          "webhook.nats_store_dir",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"authz_policy_path":   "security.authz_policy_path",
	"authz_cache_ttl":     "security.authz_cache_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
//
//   - POS_API_BASE_URL -> pos.base_url
//   - DUCKDB_PATH -> database.path
//   - ENVIRONMENT -> server.environment
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
