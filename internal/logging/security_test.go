// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSanitizers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"token empty", SanitizeToken, "", ""},
		{"token short", SanitizeToken, "exactlytwelv", "***"},
		{"token long", SanitizeToken, "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"username", SanitizeUsername, "johndoe", "jo***"},
		{"username short", SanitizeUsername, "jo", "***"},
		{"email", SanitizeEmail, "john.doe@example.com", "jo***@example.com"},
		{"email short local", SanitizeEmail, "jd@example.com", "***@example.com"},
		{"email invalid", SanitizeEmail, "not-an-email", "***"},
		{"error with secret", SanitizeError, "invalid password for user", "authentication error"},
		{"error plain", SanitizeError, "connection refused", "connection refused"},
	}

	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSanitizeError_Truncates(t *testing.T) {
	t.Parallel()

	got := SanitizeError(strings.Repeat("x", 300))
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("len = %d, want 203 with ellipsis", len(got))
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	if got := SanitizeValue("token_id", "0123456789abcdef"); got != "0123...cdef" {
		t.Errorf("token_id = %q", got)
	}
	if got := SanitizeValue("email", "alice@example.com"); got != "al***@example.com" {
		t.Errorf("email = %q", got)
	}
	if got := SanitizeValue("role", "admin"); got != "admin" {
		t.Errorf("role = %q", got)
	}
}

func TestSecurityLogger_Events(t *testing.T) {
	var buf bytes.Buffer
	l := NewSecurityLoggerWithLogger(zerolog.New(&buf))

	l.LogLoginSuccess(7, "alice", "10.0.0.1")
	out := buf.String()
	for _, want := range []string{`"event":"login_success"`, `"status":"success"`, `"user_id":7`, `"username":"al***"`, `"component":"security"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}

	buf.Reset()
	l.LogLoginFailure("bob", "10.0.0.2", "bad password")
	out = buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"reason":"authentication error"`) {
		t.Errorf("failure output = %s", out)
	}

	buf.Reset()
	l.LogRegistration(3, "carol", "carol@example.com", "")
	if strings.Contains(buf.String(), "carol@example.com") {
		t.Errorf("email leaked: %s", buf.String())
	}

	buf.Reset()
	l.LogAccessDenied(3, "user", "DELETE", "/api/v1/admin/users/5")
	if !strings.Contains(buf.String(), `"path":"/api/v1/admin/users/5"`) {
		t.Errorf("access denied output = %s", buf.String())
	}
}
