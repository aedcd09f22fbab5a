// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediarec/config.yaml",
	"/etc/mediarec/config.yml",
}

// ConfigPathEnvVar overrides the search with an explicit file.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "production",
		},
		Database: DatabaseConfig{
			Path:        "/data/mediarec.duckdb",
			MaxMemory:   "512MB",
			SeedOnStart: true,
		},
		Security: SecurityConfig{
			SessionTimeout:  24 * time.Hour,
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
			Casbin: CasbinConfig{
				CacheEnabled: true,
				CacheTTL:     5 * time.Minute,
			},
		},
		Simulation: SimulationConfig{
			BookDuration:   DurationRange{Min: 30, Max: 180},
			MovieDuration:  DurationRange{Min: 20, Max: 60},
			GameDuration:   DurationRange{Min: 45, Max: 300},
			EventThreshold: 20,
			EventChance:    0.3,
			MaxEvents:      3,
			ReaperEnabled:  true,
			ReaperInterval: time.Minute,
			ExpiryFactor:   10,
		},
		Recommend: RecommendConfig{
			CacheTTL:     10 * time.Minute,
			DefaultLimit: 10,
			MaxLimit:     50,
		},
		Events: EventsConfig{
			Backend:         "memory",
			Topic:           "simulation.events",
			NATSURL:         "nats://127.0.0.1:4222",
			EmbeddedHost:    "127.0.0.1",
			EmbeddedPort:    4222,
			StoreDir:        "/data/nats",
			StreamName:      "SIMULATION",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// LoadWithKoanf layers defaults, the config file and the environment, then
// unmarshals and validates.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
// Values that already arrived as slices (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"db_path":       "database.path",
	"db_max_memory": "database.max_memory",
	"db_threads":    "database.threads",
	"db_seed":       "database.seed_on_start",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"revocation_path":     "security.revocation_path",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"casbin_model_path":   "security.casbin.model_path",
	"casbin_policy_path":  "security.casbin.policy_path",
	"casbin_cache":        "security.casbin.cache_enabled",
	"casbin_cache_ttl":    "security.casbin.cache_ttl",

	"simulation_seed":            "simulation.seed",
	"simulation_event_threshold": "simulation.event_threshold",
	"simulation_event_chance":    "simulation.event_chance",
	"simulation_max_events":      "simulation.max_events",
	"simulation_reaper":          "simulation.reaper_enabled",
	"simulation_reaper_interval": "simulation.reaper_interval",
	"simulation_expiry_factor":   "simulation.expiry_factor",

	"recommend_current_year": "recommend.current_year",
	"recommend_cache_ttl":    "recommend.cache_ttl",

	"events_backend":       "events.backend",
	"events_topic":         "events.topic",
	"nats_url":             "events.nats_url",
	"nats_embedded":        "events.embedded_nats",
	"nats_embedded_port":   "events.embedded_port",
	"nats_store_dir":       "events.store_dir",
	"nats_stream":          "events.stream_name",
	"events_breaker_fails": "events.breaker_failures",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
