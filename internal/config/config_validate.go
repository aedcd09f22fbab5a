// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateSecurity,
		c.validateSimulation,
		c.validateRecommend,
		c.validateEvents,
		c.validateAPI,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return errors.New("server.timeout must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required (use :memory: for an ephemeral database)")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	if s.JWTSecret == "" {
		return errors.New("security.jwt_secret is required (set JWT_SECRET)")
	}
	if len(s.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters, got %d", len(s.JWTSecret))
	}
	if s.SessionTimeout <= 0 {
		return errors.New("security.session_timeout must be positive")
	}
	if s.BcryptCost != 0 && (s.BcryptCost < 4 || s.BcryptCost > 31) {
		return fmt.Errorf("security.bcrypt_cost must be between 4 and 31, got %d", s.BcryptCost)
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs <= 0 || s.RateLimitWindow <= 0) {
		return errors.New("security.rate_limit_requests and rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateSimulation() error {
	s := c.Simulation
	ranges := map[string]DurationRange{
		"book_duration":  s.BookDuration,
		"movie_duration": s.MovieDuration,
		"game_duration":  s.GameDuration,
	}
	for name, r := range ranges {
		if r.Min <= 0 || r.Max < r.Min {
			return fmt.Errorf("simulation.%s must satisfy 0 < min <= max, got [%d,%d]", name, r.Min, r.Max)
		}
	}
	if s.EventThreshold < 0 || s.EventThreshold > 100 {
		return fmt.Errorf("simulation.event_threshold must be within [0,100], got %d", s.EventThreshold)
	}
	if s.EventChance < 0 || s.EventChance > 1 {
		return fmt.Errorf("simulation.event_chance must be within [0,1], got %g", s.EventChance)
	}
	if s.MaxEvents < 0 {
		return errors.New("simulation.max_events must not be negative")
	}
	if s.ReaperEnabled {
		if s.ReaperInterval <= 0 {
			return errors.New("simulation.reaper_interval must be positive when the reaper is enabled")
		}
		if s.ExpiryFactor < 1 {
			return fmt.Errorf("simulation.expiry_factor must be at least 1, got %g", s.ExpiryFactor)
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.DefaultLimit <= 0 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend limits must satisfy 0 < default_limit <= max_limit, got %d/%d", r.DefaultLimit, r.MaxLimit)
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	switch e.Backend {
	case "memory":
	case "nats":
		if !e.EmbeddedNATS && e.NATSURL == "" {
			return errors.New("events.nats_url is required when events.backend is nats and embedded_nats is false")
		}
		if e.EmbeddedNATS && e.StoreDir == "" {
			return errors.New("events.store_dir is required when embedded_nats is enabled")
		}
	default:
		return fmt.Errorf("events.backend must be memory or nats, got %q", e.Backend)
	}
	if e.Topic == "" {
		return errors.New("events.topic is required")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize <= 0 || c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api page sizes must satisfy 0 < default_page_size <= max_page_size, got %d/%d",
			c.API.DefaultPageSize, c.API.MaxPageSize)
	}
	return nil
}
