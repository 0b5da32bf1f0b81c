// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/orderbridge/internal/audit"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestNewJWTManager_EmptySecret(t *testing.T) {
	t.Parallel()
	if _, err := NewJWTManager(""); err != ErrEmptySecret {
		t.Errorf("err = %v, want ErrEmptySecret", err)
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	token, err := m.GenerateToken("ops-alice", RoleOperator, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "ops-alice" || claims.Role != RoleOperator || claims.Issuer != issuer {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	t.Parallel()
	m := newManager(t)

	expired := &JWTManager{secret: m.secret, now: func() time.Time { return time.Now().Add(-2 * time.Hour) }}
	expiredToken, _ := expired.GenerateToken("a", RoleAdmin, time.Hour)

	other, _ := NewJWTManager("another-secret-another-secret-xx")
	foreignToken, _ := other.GenerateToken("a", RoleAdmin, time.Hour)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"expired":         expiredToken,
		"wrong secret":    foreignToken,
		"alg none":        noneToken,
		"garbage":         "not.a.token",
		"missing expires": mustSign(t, &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}),
		"wrong issuer": mustSign(t, &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := m.ValidateToken(token); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func mustSign(t *testing.T, c *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

type countingAuditor struct {
	mu sync.Mutex
	n  int
}

func (a *countingAuditor) Record(context.Context, audit.EventType, audit.Outcome, *audit.Target, string, interface{}) {
	a.mu.Lock()
	a.n++
	a.mu.Unlock()
}

func TestMiddleware_Authenticate(t *testing.T) {
	t.Parallel()
	m := newManager(t)
	adminToken, _ := m.GenerateToken("root", RoleAdmin, time.Hour)
	operatorToken, _ := m.GenerateToken("ops", RoleOperator, time.Hour)
	viewerToken, _ := m.GenerateToken("viewer", "viewer", time.Hour)

	auditor := &countingAuditor{}
	mw := NewMiddleware(ModeJWT, m, auditor)

	var actor audit.Actor
	h := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = audit.ActorFromContext(r.Context())
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			t.Error("claims missing from context")
		}
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"admin passes", "Bearer " + adminToken, http.StatusOK},
		{"unknown role left to authorization", "Bearer " + viewerToken, http.StatusOK},
		{"operator passes", "bearer " + operatorToken, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic Zm9vOmJhcg==", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/retry-queue/sweep", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
		if tt.want == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
			t.Errorf("%s: missing WWW-Authenticate", tt.name)
		}
	}

	if actor.ID != "ops" || actor.Type != "user" {
		t.Errorf("last actor = %+v", actor)
	}
	if auditor.n != 3 {
		t.Errorf("auth failure audits = %d, want 3", auditor.n)
	}
}

func TestMiddleware_ModeNone(t *testing.T) {
	t.Parallel()
	mw := NewMiddleware(ModeNone, nil, nil)

	var actor audit.Actor
	var role string
	h := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor = audit.ActorFromContext(r.Context())
		if c, ok := ClaimsFromContext(r.Context()); ok {
			role = c.Role
		}
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || actor != audit.SystemActor() {
		t.Errorf("status = %d actor = %+v", rec.Code, actor)
	}
	if role != RoleAdmin {
		t.Errorf("role = %q, want admin", role)
	}
}
