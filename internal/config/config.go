// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package config loads Mediarec configuration from struct defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	Simulation SimulationConfig `koanf:"simulation"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Events     EventsConfig     `koanf:"events"`
	Logging    LoggingConfig    `koanf:"logging"`
	API        APIConfig        `koanf:"api"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig configures the DuckDB catalog and ledger.
type DatabaseConfig struct {
	// Path is the DuckDB file, or ":memory:" for an ephemeral database.
	Path        string `koanf:"path"`
	MaxMemory   string `koanf:"max_memory"`
	Threads     int    `koanf:"threads"`
	// SeedOnStart loads the sample catalog and demo accounts when the
	// database is empty.
	SeedOnStart bool   `koanf:"seed_on_start"`
}

type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	BcryptCost     int           `koanf:"bcrypt_cost"`

	// RevocationPath is the badger directory holding revoked token ids.
	// Empty keeps the revocation list in memory.
	RevocationPath string `koanf:"revocation_path"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string     `koanf:"cors_origins"`
	Casbin      CasbinConfig `koanf:"casbin"`
}

// CasbinConfig configures RBAC. Empty paths use the embedded model and policy.
type CasbinConfig struct {
	ModelPath    string        `koanf:"model_path"`
	PolicyPath   string        `koanf:"policy_path"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// DurationRange is an inclusive range of whole seconds.
type DurationRange struct {
	Min int `koanf:"min"`
	Max int `koanf:"max"`
}

// SimulationConfig tunes the consumption simulation tracker.
type SimulationConfig struct {
	BookDuration  DurationRange `koanf:"book_duration"`
	MovieDuration DurationRange `koanf:"movie_duration"`
	GameDuration  DurationRange `koanf:"game_duration"`

	// EventThreshold is the progress percentage after which flavor events may fire.
	EventThreshold int     `koanf:"event_threshold"`
	EventChance    float64 `koanf:"event_chance"`
	MaxEvents      int     `koanf:"max_events"`

	// Seed fixes the random source. Zero seeds from the clock.
	Seed int64 `koanf:"seed"`

	ReaperEnabled  bool          `koanf:"reaper_enabled"`
	ReaperInterval time.Duration `koanf:"reaper_interval"`
	// ExpiryFactor evicts sessions older than ExpiryFactor x planned duration.
	ExpiryFactor   float64       `koanf:"expiry_factor"`
}

type RecommendConfig struct {
	// CurrentYear anchors the newness window. Zero uses the clock.
	CurrentYear  int           `koanf:"current_year"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	DefaultLimit int           `koanf:"default_limit"`
	MaxLimit     int           `koanf:"max_limit"`
}

// EventsConfig selects the lifecycle event transport.
type EventsConfig struct {
	// Backend is "memory" (watermill gochannel) or "nats" (JetStream).
	Backend string `koanf:"backend"`
	Topic   string `koanf:"topic"`

	NATSURL      string `koanf:"nats_url"`
	EmbeddedNATS bool   `koanf:"embedded_nats"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
	StoreDir     string `koanf:"store_dir"`
	StreamName   string `koanf:"stream_name"`

	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// Load reads configuration from all layers and validates the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
