// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package posclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/metrics"
)

const maxErrorBody = 1 << 20

// Do performs an authenticated JSON request against path, relative to the
// base URL. body is JSON-encoded when non-nil; a 2xx response body is
// decoded into out when out is non-nil.
//
// Retries:
//   - 5xx, 429 and network errors are retried up to MaxRetries times
//   - 429 waits for Retry-After when the vendor sends it
//   - 401 drops the cached token and fails with *AuthenticationError
//   - other 4xx fail immediately with *APIError
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	start := time.Now()

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, c.doWithRetry(ctx, method, path, body, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Str("method", method).Str("path", path).Msg("POS request rejected by circuit breaker")
			err = fmt.Errorf("%w: %s %s", ErrCircuitOpen, method, path)
		}
	} else {
		err = c.doWithRetry(ctx, method, path, body, out)
	}

	metrics.RecordPOSRequest(method, time.Since(start), err)
	return err
}

// Get is Do with GET and no body.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post is Do with POST.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put is Do with PUT.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) doWithRetry(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = b
	}

	for attempt := 0; ; attempt++ {
		token, err := c.AccessToken(ctx)
		if err != nil {
			return err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		err = c.attempt(ctx, method, path, payload, token, out)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= c.cfg.MaxRetries {
			logging.Warn().Err(err).Str("method", method).Str("path", path).Int("attempts", attempt+1).Msg("POS request failed after retries")
			return err
		}

		delay := c.backoff(attempt)
		reason := "server_error"
		var rl *RateLimitedError
		if errors.As(err, &rl) {
			reason = "rate_limited"
			if rl.RetryAfter > 0 {
				delay = rl.RetryAfter
			}
		} else if errors.Is(err, ErrTimeout) {
			reason = "timeout"
		} else {
			var netErr *NetworkError
			if errors.As(err, &netErr) {
				reason = "network"
			}
		}
		metrics.RecordPOSRetry(reason)

		logging.Warn().Err(err).Dur("retry_delay", delay).Int("attempt", attempt+1).Int("max_retries", c.cfg.MaxRetries).Str("path", path).Msg("POS request failed, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// backoff returns min(RetryBaseDelay * 2^attempt, MaxRetryDelay).
func (c *Client) backoff(attempt int) time.Duration {
	if attempt > 30 {
		return c.cfg.MaxRetryDelay
	}
	d := c.cfg.RetryBaseDelay * time.Duration(1<<attempt)
	if d <= 0 || d > c.cfg.MaxRetryDelay {
		return c.cfg.MaxRetryDelay
	}
	return d
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, token string, out interface{}) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setInterfaceHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordPOSAttempt(method, 0)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Method: method, Path: path, Timeout: c.cfg.Timeout}
		}
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()
	metrics.RecordPOSAttempt(method, resp.StatusCode)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		if out == nil || resp.StatusCode == http.StatusNoContent {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return &TimeoutError{Method: method, Path: path, Timeout: c.cfg.Timeout}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode response: %w", err)
		}
		return nil

	case resp.StatusCode == http.StatusUnauthorized:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.invalidateToken()
		return &AuthenticationError{StatusCode: resp.StatusCode, Message: parseAPIError(resp.StatusCode, raw).Message}

	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return &RateLimitedError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now())}

	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return parseAPIError(resp.StatusCode, raw)
	}
}

func (c *Client) setInterfaceHeaders(req *http.Request) {
	if c.cfg.InterfaceName != "" {
		req.Header.Set("Interface-Name", c.cfg.InterfaceName)
	}
	if c.cfg.InterfaceVersion != "" {
		req.Header.Set("Interface-Version", c.cfg.InterfaceVersion)
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP-date (RFC 9110).
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// vendorError matches both {"error":{"code":...}} and {"code":...} bodies.
type vendorError struct {
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var ve vendorError
	if len(raw) > 0 && json.Unmarshal(raw, &ve) == nil {
		if ve.Error != nil {
			apiErr.Code = ve.Error.Code
			apiErr.Message = ve.Error.Message
			apiErr.Details = ve.Error.Details
		} else {
			apiErr.Code = ve.Code
			apiErr.Message = ve.Message
			apiErr.Details = ve.Details
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
