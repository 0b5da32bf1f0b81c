// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/orderbridge/internal/config"
)

// Defaults applied by New to zero-valued Config fields.
const (
	DefaultAuthPath           = "/oauth/token"
	DefaultTimeout            = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBaseDelay     = time.Second
	DefaultMaxRetryDelay      = 30 * time.Second
	DefaultRateLimitRequests  = 60
	DefaultRateLimitWindow    = time.Minute
	DefaultTokenRefreshBuffer = 5 * time.Minute
)

// Config configures a Client.
type Config struct {
	BaseURL          string
	ClientID         string
	ClientSecret     string
	APIKey           string
	InterfaceName    string
	InterfaceVersion string
	AuthPath         string

	Timeout            time.Duration
	MaxRetries         int // retries after the first attempt
	RetryBaseDelay     time.Duration
	MaxRetryDelay      time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	TokenRefreshBuffer time.Duration
}

// FromConfig builds a client Config from the application POS settings.
func FromConfig(p config.POSConfig) Config {
	return Config{
		BaseURL:            p.ResolvedBaseURL(),
		ClientID:           p.ClientID,
		ClientSecret:       p.ClientSecret,
		APIKey:             p.APIKey,
		InterfaceName:      p.InterfaceName,
		InterfaceVersion:   p.InterfaceVersion,
		Timeout:            p.Timeout,
		MaxRetries:         p.MaxRetries,
		RetryBaseDelay:     p.RetryBaseDelay,
		MaxRetryDelay:      p.MaxRetryDelay,
		RateLimitRequests:  p.RateLimitRequests,
		RateLimitWindow:    p.RateLimitWindow,
		TokenRefreshBuffer: p.TokenRefreshBuffer,
	}
}

func (c *Config) applyDefaults() {
	if c.AuthPath == "" {
		c.AuthPath = DefaultAuthPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if c.RateLimitRequests <= 0 {
		c.RateLimitRequests = DefaultRateLimitRequests
	}
	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = DefaultRateLimitWindow
	}
	if c.TokenRefreshBuffer < 0 {
		c.TokenRefreshBuffer = 0
	}
}

// Client is an authenticated, rate-limited HTTP client for one POS vendor API.
// It is safe for concurrent use.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	limiter    *slidingWindow
	breaker    *gobreaker.CircuitBreaker[struct{}]

	tokenMu   sync.RWMutex
	token     string
	expiresAt time.Time
	tokenSF   singleflight.Group

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(s)
	}
}

// WithoutBreaker disables the circuit breaker.
func WithoutBreaker() Option {
	return func(c *Client) {
		c.breaker = nil
	}
}

// New creates a Client. MaxRetries=3 means up to 4 attempts per call.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.applyDefaults()

	if cfg.BaseURL == "" {
		return nil, errors.New("posclient: base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("posclient: invalid base URL %q", cfg.BaseURL)
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{},
		limiter:    newSlidingWindow(cfg.RateLimitRequests, cfg.RateLimitWindow),
		breaker:    newBreaker(DefaultBreakerSettings()),
		now:        time.Now,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// TestConnection reports whether credentials can be exchanged for a token.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.AccessToken(ctx)
	return err == nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
