// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package logging

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an authentication or authorization event written to the
// audit stream.
type SecurityEvent struct {
	Event     string
	UserID    int64
	Username  string
	IPAddress string
	Success   bool
	Reason    string
	Details   map[string]string
}

// SecurityLogger writes security events with credentials and addresses masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger returns a SecurityLogger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: With().Str("component", "security").Logger()}
}

// NewSecurityLoggerWithLogger returns a SecurityLogger writing to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "security").Logger()}
}

// LogEvent writes event. Failed events are logged at warn level.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", event.Event).Str("status", status)

	if event.UserID != 0 {
		e = e.Int64("user_id", event.UserID)
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Reason != "" && !event.Success {
		e = e.Str("reason", SanitizeError(event.Reason))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}
	e.Msg("")
}

// LogLoginSuccess records a successful password login.
func (l *SecurityLogger) LogLoginSuccess(userID int64, username, ip string) {
	l.LogEvent(&SecurityEvent{Event: "login_success", UserID: userID, Username: username, IPAddress: ip, Success: true})
}

// LogLoginFailure records a rejected login attempt.
func (l *SecurityLogger) LogLoginFailure(username, ip, reason string) {
	l.LogEvent(&SecurityEvent{Event: "login_failure", Username: username, IPAddress: ip, Reason: reason})
}

// LogRegistration records a new account.
func (l *SecurityLogger) LogRegistration(userID int64, username, email, ip string) {
	l.LogEvent(&SecurityEvent{
		Event: "registration", UserID: userID, Username: username, IPAddress: ip, Success: true,
		Details: map[string]string{"email": email},
	})
}

// LogTokenRevoked records a logout that revoked a token.
func (l *SecurityLogger) LogTokenRevoked(userID int64, tokenID, ip string) {
	l.LogEvent(&SecurityEvent{
		Event: "token_revoked", UserID: userID, IPAddress: ip, Success: true,
		Details: map[string]string{"token_id": tokenID},
	})
}

// LogAccessDenied records an authorization refusal.
func (l *SecurityLogger) LogAccessDenied(userID int64, role, method, path string) {
	l.LogEvent(&SecurityEvent{
		Event: "access_denied", UserID: userID, Reason: "forbidden",
		Details: map[string]string{"role": role, "method": method, "path": path},
	})
}

// LogAccountStatus records an admin blocking or unblocking an account.
func (l *SecurityLogger) LogAccountStatus(adminID, targetID int64, active bool) {
	l.LogEvent(&SecurityEvent{
		Event: "account_status", UserID: adminID, Success: true,
		Details: map[string]string{"target_user_id": strconv.FormatInt(targetID, 10), "active": strconv.FormatBool(active)},
	})
}

// SanitizeToken keeps the first and last four characters of a token.
// Example: "eyJhbGciOiJIUzI1NiJ9.payload" -> "eyJh...load"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUsername keeps the first two characters of a username.
func SanitizeUsername(username string) string {
	if len(username) <= 2 {
		if username == "" {
			return ""
		}
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks the local part of an address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

var sensitiveErrorWords = []string{"password", "secret", "token", "bearer", "authorization"}

// SanitizeError replaces messages that mention credentials with a generic
// one and truncates the rest.
func SanitizeError(msg string) string {
	lower := strings.ToLower(msg)
	for _, w := range sensitiveErrorWords {
		if strings.Contains(lower, w) {
			return "authentication error"
		}
	}
	return truncateString(msg, 200)
}

var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"token":         true,
	"token_id":      true,
	"password":      true,
	"secret":        true,
	"authorization": true,
}

// SanitizeValue masks value when key names a credential or value looks
// like an email address.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
