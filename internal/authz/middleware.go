// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package authz

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/auth"
	"github.com/tomtom215/orderbridge/internal/logging"
)

// Auditor records denied requests. *audit.Logger satisfies it.
type Auditor interface {
	Record(ctx context.Context, typ audit.EventType, outcome audit.Outcome, target *audit.Target, description string, metadata interface{})
}

// Middleware enforces the route policy on authenticated requests.
type Middleware struct {
	enforcer *Enforcer
	auditor  Auditor
}

// NewMiddleware creates the authorization middleware. auditor may be nil.
func NewMiddleware(enforcer *Enforcer, auditor Auditor) *Middleware {
	return &Middleware{enforcer: enforcer, auditor: auditor}
}

// Authorize checks the token role against the request path and method. It
// must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			m.deny(w, r, "", "no authentication context")
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.EnforceWithRoles(claims.Subject, []string{claims.Role}, r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("authorization check failed")
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization check failed")
			return
		}
		if !allowed {
			m.deny(w, r, claims.Role, "insufficient role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

func (m *Middleware) deny(w http.ResponseWriter, r *http.Request, role, msg string) {
	logging.Ctx(r.Context()).Debug().Str("role", role).Str("method", r.Method).Str("path", r.URL.Path).
		Msg("request denied by policy")
	if m.auditor != nil {
		m.auditor.Record(r.Context(), audit.EventTypeAuthFailure, audit.OutcomeFailure,
			&audit.Target{ID: r.URL.Path, Type: "endpoint"}, msg,
			map[string]string{"method": r.Method, "role": role, "remoteAddr": r.RemoteAddr})
	}
	writeError(w, http.StatusForbidden, "FORBIDDEN", msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error":  map[string]string{"code": code, "message": msg},
	})
}
