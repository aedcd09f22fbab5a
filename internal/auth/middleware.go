// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/metrics"
)

// TokenCookie is the cookie consulted when no Authorization header is sent.
const TokenCookie = "token"

// ErrorWriter renders a failed request. The api package supplies one that
// writes its standard envelope.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware authenticates requests and rate limits each subject.
type Middleware struct {
	svc        *Service
	limiter    *RateLimiter
	writeError ErrorWriter
}

// NewMiddleware creates the authentication middleware. reqsPerWindow <= 0
// disables the per-subject limit. A nil writeError writes a bare JSON body.
func NewMiddleware(svc *Service, reqsPerWindow int, window time.Duration, writeError ErrorWriter) *Middleware {
	m := &Middleware{svc: svc, writeError: writeError}
	if m.writeError == nil {
		m.writeError = plainError
	}
	if reqsPerWindow > 0 && window > 0 {
		m.limiter = NewRateLimiter(reqsPerWindow, window)
		go m.limiter.startCleanup(5 * time.Minute)
	}
	return m
}

// Close stops the limiter's cleanup goroutine.
func (m *Middleware) Close() {
	if m.limiter != nil {
		m.limiter.Stop()
	}
}

// Authenticate rejects requests without a valid token for an active user
// and stores the AuthSubject in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ExtractToken(r)
		if err != nil {
			TokenValidations.WithLabelValues("missing").Inc()
			m.unauthorized(w, r, err)
			return
		}

		subject, err := m.svc.Authenticate(r.Context(), token)
		if err != nil {
			if isAuthError(err) {
				TokenValidations.WithLabelValues(outcomeFor(err)).Inc()
				m.unauthorized(w, r, err)
				return
			}
			TokenValidations.WithLabelValues("error").Inc()
			logging.CtxError(r.Context()).Err(err).Msg("Token validation failed")
			m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication unavailable")
			return
		}
		TokenValidations.WithLabelValues("valid").Inc()

		if m.limiter != nil && !m.limiter.Allow(strconv.FormatInt(subject.UserID, 10)) {
			metrics.APIRateLimitHits.WithLabelValues("subject").Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(m.limiter.retryAfter().Seconds())))
			m.writeError(w, r, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many requests")
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", messageFor(err))
}

// ExtractToken reads a Bearer Authorization header, falling back to the
// token cookie.
func ExtractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		cookie, err := r.Cookie(TokenCookie)
		if err != nil || cookie.Value == "" {
			return "", ErrNoCredentials
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}

func isAuthError(err error) bool {
	for _, target := range []error{
		ErrNoCredentials, ErrInvalidToken, ErrExpiredToken,
		ErrRevokedToken, ErrAccountDisabled, ErrUnknownUser,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrRevokedToken):
		return "revoked"
	case errors.Is(err, ErrAccountDisabled):
		return "disabled"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	}
	return "invalid"
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, ErrNoCredentials):
		return "Not authenticated"
	case errors.Is(err, ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, ErrRevokedToken):
		return "Token revoked"
	case errors.Is(err, ErrAccountDisabled):
		return "User account is disabled"
	case errors.Is(err, ErrUnknownUser):
		return "User not found"
	}
	return "Invalid token"
}

func plainError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}

// RateLimiter implements per-key token buckets with automatic cleanup
type RateLimiter struct {
	limiters  map[string]*rateLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	window    time.Duration
	stopClean chan struct{}
	stopOnce  sync.Once
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows reqsPerWindow requests per window and key, refilled
// evenly.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window / time.Duration(reqsPerWindow)),
		burst:     reqsPerWindow,
		window:    window,
		stopClean: make(chan struct{}),
	}
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, exists := rl.limiters[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) retryAfter() time.Duration {
	d := rl.window / time.Duration(rl.burst)
	if d < time.Second {
		return time.Second
	}
	return d
}

func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-2 * rl.window))
		case <-rl.stopClean:
			return
		}
	}
}

// cleanup drops limiters idle since before threshold.
func (rl *RateLimiter) cleanup(threshold time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, key)
		}
	}
}

// Len is the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopClean) })
}
