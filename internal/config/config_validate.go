// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validatePOS(); err != nil {
		return err
	}
	if err := c.validateRetryQueue(); err != nil {
		return err
	}
	if err := c.validateWebhook(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, staging, production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validatePOS() error {
	p := c.POS
	switch p.Vendor {
	case "mock":
		return nil
	case "skytab":
	default:
		return fmt.Errorf("POS_VENDOR must be skytab or mock, got %q", p.Vendor)
	}

	if err := validateHTTPURL(p.ResolvedBaseURL(), "POS_API_BASE_URL"); err != nil {
		return err
	}
	if p.ClientID == "" || p.ClientSecret == "" {
		return fmt.Errorf("POS_CLIENT_ID and POS_CLIENT_SECRET are required when POS_VENDOR=skytab")
	}
	if p.LocationGUID == "" {
		return fmt.Errorf("POS_LOCATION_GUID is required when POS_VENDOR=skytab")
	}

	// Unsigned webhooks are a development allowance only.
	if c.Server.IsProduction() && p.WebhookSecret == "" {
		return fmt.Errorf("POS_WEBHOOK_SECRET is required when ENVIRONMENT=production")
	}

	if p.Timeout <= 0 {
		return fmt.Errorf("POS_TIMEOUT must be positive, got %v", p.Timeout)
	}
	if p.MaxRetries < 0 || p.MaxRetries > 10 {
		return fmt.Errorf("POS_MAX_RETRIES must be between 0 and 10, got %d", p.MaxRetries)
	}
	if p.RetryBaseDelay <= 0 || p.MaxRetryDelay < p.RetryBaseDelay {
		return fmt.Errorf("POS_RETRY_BASE_DELAY must be positive and not exceed POS_MAX_RETRY_DELAY")
	}
	if p.RateLimitRequests < 1 {
		return fmt.Errorf("POS_RATE_LIMIT_REQUESTS must be at least 1, got %d", p.RateLimitRequests)
	}
	if p.RateLimitWindow <= 0 {
		return fmt.Errorf("POS_RATE_LIMIT_WINDOW must be positive, got %v", p.RateLimitWindow)
	}
	if p.TokenRefreshBuffer < 0 {
		return fmt.Errorf("POS_TOKEN_REFRESH_BUFFER must not be negative")
	}
	return nil
}

func (c *Config) validateRetryQueue() error {
	q := c.RetryQueue
	if !q.InMemory && q.Path == "" {
		return fmt.Errorf("RETRY_QUEUE_PATH is required unless RETRY_QUEUE_IN_MEMORY=true")
	}
	if q.BatchSize < 1 {
		return fmt.Errorf("RETRY_QUEUE_BATCH_SIZE must be at least 1, got %d", q.BatchSize)
	}
	if q.MaxRetries < 1 {
		return fmt.Errorf("RETRY_QUEUE_MAX_RETRIES must be at least 1, got %d", q.MaxRetries)
	}
	if q.SweepInterval <= 0 {
		return fmt.Errorf("RETRY_QUEUE_SWEEP_INTERVAL must be positive")
	}
	if q.ReplayRate <= 0 {
		return fmt.Errorf("RETRY_QUEUE_REPLAY_RATE must be positive")
	}
	return nil
}

func (c *Config) validateWebhook() error {
	w := c.Webhook
	switch w.Transport {
	case TransportMemory:
	case TransportNATS:
		if !w.EmbeddedNATS && w.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when WEBHOOK_TRANSPORT=nats without NATS_EMBEDDED")
		}
	default:
		return fmt.Errorf("WEBHOOK_TRANSPORT must be memory or nats, got %q", w.Transport)
	}
	if w.Topic == "" {
		return fmt.Errorf("WEBHOOK_TOPIC must not be empty")
	}
	if w.Workers < 1 {
		return fmt.Errorf("WEBHOOK_WORKERS must be at least 1, got %d", w.Workers)
	}
	if w.ThrottlePerSec < 0 {
		return fmt.Errorf("WEBHOOK_THROTTLE must not be negative, got %d", w.ThrottlePerSec)
	}
	if w.MaxBodyBytes < 1024 {
		return fmt.Errorf("WEBHOOK_MAX_BODY_BYTES must be at least 1024, got %d", w.MaxBodyBytes)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	switch s.AuthMode {
	case "none":
		if c.Server.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(s.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", s.AuthMode)
	}
	if !s.RateLimitDisabled && (s.RateLimitRequests < 1 || s.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL checks scheme and host. Vendor base URLs may carry a version path.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}
