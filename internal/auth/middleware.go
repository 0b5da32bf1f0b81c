// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/logging"
)

// Auth modes.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

type contextKey struct{}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(*Claims)
	return c, ok
}

// Auditor records rejected requests. *audit.Logger satisfies it.
type Auditor interface {
	Record(ctx context.Context, typ audit.EventType, outcome audit.Outcome, target *audit.Target, description string, metadata interface{})
}

// Middleware authenticates admin API callers.
type Middleware struct {
	mode    string
	jwt     *JWTManager
	auditor Auditor
}

// NewMiddleware creates the guard. jwt may be nil when mode is none.
func NewMiddleware(mode string, jwt *JWTManager, auditor Auditor) *Middleware {
	return &Middleware{mode: mode, jwt: jwt, auditor: auditor}
}

// Authenticate rejects requests without a valid bearer token and stores
// the token claims for the authorization step. In mode none every request
// carries admin claims for the system actor.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			sys := audit.SystemActor()
			claims := &Claims{Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{Subject: sys.ID}}
			ctx := context.WithValue(r.Context(), contextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(audit.ContextWithActor(ctx, sys)))
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			m.reject(w, r, "missing bearer token")
			return
		}
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("token rejected")
			m.reject(w, r, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, claims)
		ctx = audit.ContextWithActor(ctx, audit.Actor{ID: claims.Subject, Type: "user", Name: claims.Subject})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, msg string) {
	if m.auditor != nil {
		m.auditor.Record(r.Context(), audit.EventTypeAuthFailure, audit.OutcomeFailure,
			&audit.Target{ID: r.URL.Path, Type: "endpoint"}, msg,
			map[string]string{"method": r.Method, "remoteAddr": r.RemoteAddr})
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="orderbridge"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error":  map[string]string{"code": "UNAUTHORIZED", "message": msg},
	})
}
