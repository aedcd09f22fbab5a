// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/mediarec/internal/config"
)

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{"valid secret", &config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: time.Hour}, false},
		{"nil config", nil, true},
		{"empty secret", &config.SecurityConfig{SessionTimeout: time.Hour}, true},
		{"short secret", &config.SecurityConfig{JWTSecret: "short", SessionTimeout: time.Hour}, true},
		{"zero timeout", &config.SecurityConfig{JWTSecret: testSecret}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil || m == nil {
				t.Fatalf("NewJWTManager() = %v, %v", m, err)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testJWTManager(t, time.Hour)

	token, issued, err := m.GenerateToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "alice" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
	if id, err := claims.UserID(); err != nil || id != 42 {
		t.Errorf("UserID() = %d, %v", id, err)
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Errorf("jti = %q, issued %q", claims.ID, issued.ID)
	}
	if claims.IssuedAt == nil || claims.NotBefore == nil || claims.ExpiresAt == nil {
		t.Fatal("time claims missing")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("lifetime = %v, want 1h", got)
	}

	other, _, _ := m.GenerateToken(42, "alice", "admin")
	if other == token {
		t.Error("two tokens for the same user are identical")
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	m := testJWTManager(t, time.Hour)
	good, _, err := m.GenerateToken(1, "bob", "user")
	if err != nil {
		t.Fatal(err)
	}

	otherKey := testJWTManager(t, time.Hour)
	otherKey.secret = []byte(strings.Repeat("x", 40))
	foreign, _, _ := otherKey.GenerateToken(1, "bob", "user")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "bob"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noJTI := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "bob",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noJTIToken, _ := noJTI.SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", good + "x"},
		{"wrong key", foreign},
		{"alg none", unsigned},
		{"missing jti", noJTIToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ValidateToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	m := testJWTManager(t, time.Minute)
	now := time.Now()
	m.now = func() time.Time { return now }

	token, _, err := m.GenerateToken(1, "bob", "user")
	if err != nil {
		t.Fatal(err)
	}
	m.now = func() time.Time { return now.Add(2 * time.Minute) }

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestClaims_UserID(t *testing.T) {
	for _, sub := range []string{"", "abc", "0", "-3"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
		if _, err := c.UserID(); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("UserID(%q) error = %v", sub, err)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1", 4)
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "secret1") {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword(hash, "secret2") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("not-a-hash", "secret1") {
		t.Error("CheckPassword() accepted a malformed hash")
	}

	h, err := Hasher(4)("pw")
	if err != nil || !CheckPassword(h, "pw") {
		t.Errorf("Hasher() = %q, %v", h, err)
	}
}
