// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/mediarec/internal/models"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no token was provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials is a failed login. It never says which of
	// username or password was wrong.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidToken covers malformed, tampered and wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token is past its exp claim.
	ErrExpiredToken = errors.New("token expired")

	// ErrRevokedToken indicates the token was logged out.
	ErrRevokedToken = errors.New("token revoked")

	// ErrAccountDisabled indicates the user was blocked by an admin.
	ErrAccountDisabled = errors.New("user account is disabled")

	// ErrUnknownUser indicates the token subject no longer exists.
	ErrUnknownUser = errors.New("user not found")

	// ErrRevocationClosed indicates the revocation list has been closed.
	ErrRevocationClosed = errors.New("revocation list is closed")
)

// AuthSubject is the authenticated caller of a request.
type AuthSubject struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the subject holds the admin role.
func (s *AuthSubject) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Identity is the short description returned in token responses.
func (s *AuthSubject) Identity() models.UserIdentity {
	return models.UserIdentity{UserID: s.UserID, Username: s.Username, Role: s.Role}
}

func subjectFromClaims(c *Claims, userID int64) *AuthSubject {
	s := &AuthSubject{
		UserID:   userID,
		Username: c.Username,
		Role:     c.Role,
		TokenID:  c.ID,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

type contextKey string

const subjectContextKey contextKey = "auth-subject"

// ContextWithSubject stores s in ctx.
func ContextWithSubject(ctx context.Context, s *AuthSubject) context.Context {
	return context.WithValue(ctx, subjectContextKey, s)
}

// SubjectFromContext returns the subject set by the middleware, or nil.
func SubjectFromContext(ctx context.Context) *AuthSubject {
	s, _ := ctx.Value(subjectContextKey).(*AuthSubject)
	return s
}
