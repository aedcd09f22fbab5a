// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/mediarec/internal/config"
)

// Limits for the similar-content listing.
const (
	DefaultSimilarLimit = 5
	MaxSimilarLimit     = 20
)

// Heuristic constants.
const (
	// recentRated is how many rated interactions feed the tag profile.
	recentRated = 5
	// likedRating is the lowest rating whose tags count as preferred.
	likedRating = 7
	// maxPreferredTags caps the tag profile.
	maxPreferredTags = 10
	// popularityBand is the half width of the popularity window, on the
	// 0-100 preference scale.
	popularityBand = 20
	newnessHigh    = 70
	newnessLow     = 30
	recentYears    = 10
	classicYears   = 20
	tagJitter      = 0.1
)

// Config controls the heuristic and its result cache.
type Config struct {
	// CurrentYear anchors the newness window. Zero uses the clock's year.
	CurrentYear  int
	CacheTTL     time.Duration
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:     10 * time.Minute,
		DefaultLimit: 10,
		MaxLimit:     50,
	}
}

// ConfigFrom maps the application config section, keeping defaults for
// unset values.
func ConfigFrom(c *config.RecommendConfig) Config {
	cfg := DefaultConfig()
	if c == nil {
		return cfg
	}
	cfg.CurrentYear = c.CurrentYear
	if c.CacheTTL > 0 {
		cfg.CacheTTL = c.CacheTTL
	}
	if c.DefaultLimit > 0 {
		cfg.DefaultLimit = c.DefaultLimit
	}
	if c.MaxLimit > 0 {
		cfg.MaxLimit = c.MaxLimit
	}
	return cfg
}

// Validate checks the limits are coherent.
func (c Config) Validate() error {
	if c.DefaultLimit <= 0 || c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("limits must satisfy 0 < default <= max, got %d/%d", c.DefaultLimit, c.MaxLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}
