// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
)

type tokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	APIKey       string `json:"apiKey"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	TokenType   string `json:"tokenType,omitempty"`
}

// AccessToken returns a cached bearer token, exchanging credentials when the
// cached token is missing or within the refresh buffer of expiry. Concurrent
// callers share a single exchange.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if tok, ok := c.cachedToken(); ok {
		return tok, nil
	}

	ch := c.tokenSF.DoChan("token", func() (interface{}, error) {
		if tok, ok := c.cachedToken(); ok {
			return tok, nil
		}
		// Detached from the first caller so its cancellation does not fail the others.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()
		return c.fetchToken(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) cachedToken() (string, bool) {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	if c.token == "" {
		return "", false
	}
	if !c.now().Add(c.cfg.TokenRefreshBuffer).Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

// invalidateToken drops the cached token so the next call re-authenticates.
func (c *Client) invalidateToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.tokenMu.Unlock()
}

func (c *Client) fetchToken(ctx context.Context) (tok string, err error) {
	defer func() { metrics.RecordTokenRefresh(err) }()

	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", &AuthenticationError{Message: "client credentials not configured"}
	}

	body, err := json.Marshal(tokenRequest{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		APIKey:       c.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.cfg.AuthPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setInterfaceHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthenticationError{Message: "token exchange failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := parseAPIError(resp.StatusCode, raw)
		return "", &AuthenticationError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &AuthenticationError{Message: "decode token response", Err: err}
	}
	if tr.AccessToken == "" {
		return "", &AuthenticationError{Message: "token response missing accessToken"}
	}

	expiresAt := c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	c.tokenMu.Lock()
	c.token = tr.AccessToken
	c.expiresAt = expiresAt
	c.tokenMu.Unlock()

	logging.Debug().Time("expires_at", expiresAt).Msg("POS access token refreshed")
	return tr.AccessToken, nil
}
