// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/tomtom215/mediarec/internal/cache"
	"github.com/tomtom215/mediarec/internal/config"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects guarded by the policy.
const (
	ObjectContent         = "content"
	ObjectInteractions    = "interactions"
	ObjectSimulation      = "simulation"
	ObjectRecommendations = "recommendations"
	ObjectProfile         = "profile"
	ObjectUsers           = "users"
	ObjectAudit           = "audit"
)

// Actions understood by the policy.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// DefaultCacheTTL is used when caching is enabled without a TTL.
const DefaultCacheTTL = 5 * time.Minute

// ErrEmptyRole is returned by Enforce for a blank role.
var ErrEmptyRole = errors.New("authz: empty role")

// Enforcer wraps a casbin SyncedEnforcer with a decision cache.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	cache    *cache.Cache
}

// NewEnforcer builds an enforcer from cfg. Paths that are empty or missing
// fall back to the embedded model and policy. A nil cfg uses the embedded
// files with caching on.
func NewEnforcer(cfg *config.CasbinConfig) (*Enforcer, error) {
	if cfg == nil {
		cfg = &config.CasbinConfig{CacheEnabled: true, CacheTTL: DefaultCacheTTL}
	}

	var m model.Model
	var err error
	if cfg.ModelPath != "" && fileExists(cfg.ModelPath) {
		m, err = model.NewModelFromFile(cfg.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if cfg.PolicyPath != "" && fileExists(cfg.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	e := &Enforcer{enforcer: enforcer}
	if cfg.CacheEnabled {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		e.cache = cache.New("authz", ttl)
	}
	return e, nil
}

// loadPolicy adds the p and g lines of a policy CSV to enforcer.
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch rule := parts[1:]; parts[0] {
		case "p":
			if len(rule) != 3 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(rule[0], rule[1], rule[2]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", rule, err)
			}
		case "g":
			if len(rule) != 2 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(rule[0], rule[1]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", rule, err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// Enforce reports whether role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	if role == "" {
		return false, ErrEmptyRole
	}
	start := time.Now()

	key := role + ":" + object + ":" + action
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			allowed, _ := v.(bool)
			recordDecision(role, object, action, allowed, true, time.Since(start))
			return allowed, nil
		}
	}

	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	if e.cache != nil {
		e.cache.Set(key, allowed)
	}
	recordDecision(role, object, action, allowed, false, time.Since(start))
	return allowed, nil
}

// Can is Enforce with errors treated as a denial.
func (e *Enforcer) Can(role, object, action string) bool {
	allowed, err := e.Enforce(role, object, action)
	return err == nil && allowed
}

// RolesFor returns the roles role inherits from, directly or transitively.
func (e *Enforcer) RolesFor(role string) ([]string, error) {
	return e.enforcer.GetImplicitRolesForUser(role)
}

// InvalidateCache drops every cached decision.
func (e *Enforcer) InvalidateCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close stops the decision cache.
func (e *Enforcer) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
