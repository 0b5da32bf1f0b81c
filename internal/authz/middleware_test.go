// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/auth"
)

type recordingAuditor struct {
	mu    sync.Mutex
	types []audit.EventType
}

func (a *recordingAuditor) Record(_ context.Context, typ audit.EventType, _ audit.Outcome, _ *audit.Target, _ string, _ interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, typ)
}

func (a *recordingAuditor) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.types)
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		http.MethodGet:     ActionRead,
		http.MethodHead:    ActionRead,
		http.MethodOptions: ActionRead,
		http.MethodPost:    ActionWrite,
		http.MethodPut:     ActionWrite,
		http.MethodPatch:   ActionWrite,
		http.MethodDelete:  ActionDelete,
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}

func TestMiddleware_Authorize(t *testing.T) {
	t.Parallel()

	jwtm, err := auth.NewJWTManager(strings.Repeat("k", 32))
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	adminToken, _ := jwtm.GenerateToken("root", auth.RoleAdmin, time.Hour)
	operatorToken, _ := jwtm.GenerateToken("ops", auth.RoleOperator, time.Hour)

	auditor := &recordingAuditor{}
	authn := auth.NewMiddleware(auth.ModeJWT, jwtm, nil)
	mw := NewMiddleware(newTestEnforcer(t, EnforcerConfig{CacheTTL: time.Minute}), auditor)
	h := authn.Authenticate(mw.Authorize(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"operator submits", http.MethodPost, "/api/v1/orders/o-1/submit", operatorToken, http.StatusNoContent},
		{"operator sweeps", http.MethodPost, "/api/v1/retry-queue/sweep", operatorToken, http.StatusForbidden},
		{"admin sweeps", http.MethodPost, "/api/v1/retry-queue/sweep", adminToken, http.StatusNoContent},
		{"admin submits", http.MethodPost, "/api/v1/orders/o-1/submit", adminToken, http.StatusNoContent},
		{"wrong method", http.MethodDelete, "/api/v1/orders/o-1", adminToken, http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		req.Header.Set("Authorization", "Bearer "+tt.token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
		if tt.want == http.StatusForbidden && !strings.Contains(rec.Body.String(), "FORBIDDEN") {
			t.Errorf("%s: body = %s", tt.name, rec.Body.String())
		}
	}
	if auditor.count() != 2 {
		t.Errorf("denials audited = %d, want 2", auditor.count())
	}
}

func TestMiddleware_NoClaims(t *testing.T) {
	t.Parallel()
	mw := NewMiddleware(newTestEnforcer(t, EnforcerConfig{}), nil)
	called := false
	h := mw.Authorize(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/o-1", nil))
	if rec.Code != http.StatusForbidden || called {
		t.Errorf("status = %d called = %v, want 403 without reaching the handler", rec.Code, called)
	}
}

func TestMiddleware_ModeNoneIsAdmin(t *testing.T) {
	t.Parallel()
	authn := auth.NewMiddleware(auth.ModeNone, nil, nil)
	mw := NewMiddleware(newTestEnforcer(t, EnforcerConfig{}), nil)
	h := authn.Authenticate(mw.Authorize(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
