// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package authz

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/mediarec/internal/config"
)

func newTestEnforcer(t *testing.T, cfg *config.CasbinConfig) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(cfg)
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func TestEnforcer_EmbeddedPolicy(t *testing.T) {
	e := newTestEnforcer(t, nil)

	tests := []struct {
		role, object, action string
		want                 bool
	}{
		{"user", ObjectContent, ActionRead, true},
		{"user", ObjectContent, ActionWrite, false},
		{"user", ObjectContent, ActionDelete, false},
		{"user", ObjectInteractions, ActionDelete, true},
		{"user", ObjectSimulation, ActionWrite, true},
		{"user", ObjectRecommendations, ActionWrite, true},
		{"user", ObjectProfile, ActionWrite, true},
		{"user", ObjectUsers, ActionRead, false},
		{"user", ObjectAudit, ActionRead, false},
		{"admin", ObjectContent, ActionRead, true},
		{"admin", ObjectContent, ActionWrite, true},
		{"admin", ObjectContent, ActionDelete, true},
		{"admin", ObjectUsers, ActionWrite, true},
		{"admin", ObjectAudit, ActionRead, true},
		{"admin", ObjectSimulation, ActionRead, true},
		{"admin", ObjectAudit, ActionDelete, false},
		{"guest", ObjectContent, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.object+"/"+tt.action, func(t *testing.T) {
			got, err := e.Enforce(tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforcer_EmptyRole(t *testing.T) {
	e := newTestEnforcer(t, nil)
	if _, err := e.Enforce("", ObjectContent, ActionRead); !errors.Is(err, ErrEmptyRole) {
		t.Errorf("Enforce(\"\") error = %v, want ErrEmptyRole", err)
	}
	if e.Can("", ObjectContent, ActionRead) {
		t.Error("Can(\"\") = true")
	}
}

func TestEnforcer_CachesDecisions(t *testing.T) {
	e := newTestEnforcer(t, &config.CasbinConfig{CacheEnabled: true, CacheTTL: time.Minute})

	if !e.Can("admin", ObjectUsers, ActionRead) {
		t.Fatal("admin denied users read")
	}
	if e.cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", e.cache.Len())
	}
	if !e.Can("admin", ObjectUsers, ActionRead) {
		t.Fatal("cached decision differs")
	}
	if stats := e.cache.GetStats(); stats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.Hits)
	}

	e.InvalidateCache()
	if e.cache.Len() != 0 {
		t.Errorf("cache len after invalidate = %d", e.cache.Len())
	}
}

func TestEnforcer_CacheDisabled(t *testing.T) {
	e := newTestEnforcer(t, &config.CasbinConfig{})
	if e.cache != nil {
		t.Fatal("cache should be nil when disabled")
	}
	if !e.Can("user", ObjectContent, ActionRead) {
		t.Error("user denied content read")
	}
	e.InvalidateCache()
}

func TestEnforcer_RolesFor(t *testing.T) {
	e := newTestEnforcer(t, nil)
	roles, err := e.RolesFor("admin")
	if err != nil {
		t.Fatalf("RolesFor() error = %v", err)
	}
	if len(roles) != 1 || roles[0] != "user" {
		t.Errorf("RolesFor(admin) = %v, want [user]", roles)
	}
}

func TestEnforcer_PolicyFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.csv")
	policy := "p, user, content, read\np, editor, content, write\ng, editor, user\n"
	if err := os.WriteFile(path, []byte(policy), 0o600); err != nil {
		t.Fatal(err)
	}

	e := newTestEnforcer(t, &config.CasbinConfig{PolicyPath: path})
	if !e.Can("editor", ObjectContent, ActionWrite) {
		t.Error("editor denied content write")
	}
	if !e.Can("editor", ObjectContent, ActionRead) {
		t.Error("editor did not inherit content read")
	}
	if e.Can("admin", ObjectUsers, ActionRead) {
		t.Error("embedded policy leaked into file policy")
	}
}

func TestEnforcer_MissingFilesFallBack(t *testing.T) {
	e := newTestEnforcer(t, &config.CasbinConfig{
		ModelPath:  filepath.Join(t.TempDir(), "missing.conf"),
		PolicyPath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	if !e.Can("admin", ObjectAudit, ActionRead) {
		t.Error("embedded policy not loaded")
	}
}

func TestLoadPolicy_Malformed(t *testing.T) {
	e := newTestEnforcer(t, &config.CasbinConfig{})
	for _, policy := range []string{
		"p, user, content",
		"g, admin",
		"x, user, content, read",
	} {
		if err := loadPolicy(e.enforcer, policy); err == nil {
			t.Errorf("loadPolicy(%q) succeeded", policy)
		}
	}
	if err := loadPolicy(e.enforcer, "# comment only\n\n"); err != nil {
		t.Errorf("loadPolicy(comments) error = %v", err)
	}
}
