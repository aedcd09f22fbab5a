// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package authz

import (
	"net/http"

	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/logging"
)

// Middleware provides route authorization backed by an Enforcer.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
	security   *logging.SecurityLogger
}

// NewMiddleware creates the authorization middleware. A nil writeError
// falls back to http.Error.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		enforcer:   enforcer,
		writeError: writeError,
		security:   logging.NewSecurityLogger(),
	}
}

// Authorize requires the authenticated subject's role to allow action on
// object. It must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := auth.SubjectFromContext(r.Context())
			if subject == nil {
				m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Not authenticated")
				return
			}

			allowed, err := m.enforcer.Enforce(subject.Role, object, action)
			if err != nil {
				logging.CtxError(r.Context()).Err(err).
					Str("role", subject.Role).
					Str("object", object).
					Msg("Authorization error")
				m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}
			if !allowed {
				DeniedTotal.WithLabelValues(object, action).Inc()
				m.security.LogAccessDenied(subject.UserID, subject.Role, r.Method, r.URL.Path)
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", deniedMessage(object))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeRequest derives the action from the HTTP method.
func (m *Middleware) AuthorizeRequest(object string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.Authorize(object, methodToAction(r.Method))(next).ServeHTTP(w, r)
		})
	}
}

func deniedMessage(object string) string {
	switch object {
	case ObjectUsers, ObjectAudit, ObjectContent:
		return "Admin access required"
	default:
		return "Insufficient permissions"
	}
}

// methodToAction maps HTTP methods to policy actions.
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
