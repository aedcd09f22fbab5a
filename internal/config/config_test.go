// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// validConfig returns the defaults with the one required field filled in.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

// isolateEnv points the loader at a missing file so a stray config.yaml
// in the working directory cannot leak into the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	old := DefaultConfigPaths
	DefaultConfigPaths = []string{filepath.Join(t.TempDir(), "absent.yaml")}
	t.Cleanup(func() { DefaultConfigPaths = old })
	t.Setenv(ConfigPathEnvVar, "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Simulation.BookDuration != (DurationRange{Min: 30, Max: 180}) {
		t.Errorf("BookDuration = %+v, want 30-180", cfg.Simulation.BookDuration)
	}
	if cfg.Simulation.MovieDuration != (DurationRange{Min: 20, Max: 60}) {
		t.Errorf("MovieDuration = %+v, want 20-60", cfg.Simulation.MovieDuration)
	}
	if cfg.Simulation.GameDuration != (DurationRange{Min: 45, Max: 300}) {
		t.Errorf("GameDuration = %+v, want 45-300", cfg.Simulation.GameDuration)
	}
	if cfg.Simulation.EventThreshold != 20 || cfg.Simulation.EventChance != 0.3 || cfg.Simulation.MaxEvents != 3 {
		t.Errorf("event gate = %d/%g/%d, want 20/0.3/3",
			cfg.Simulation.EventThreshold, cfg.Simulation.EventChance, cfg.Simulation.MaxEvents)
	}
	if cfg.Simulation.ExpiryFactor != 10 {
		t.Errorf("ExpiryFactor = %g, want 10", cfg.Simulation.ExpiryFactor)
	}
	if cfg.Events.Backend != "memory" {
		t.Errorf("Events.Backend = %q, want memory", cfg.Events.Backend)
	}
	if cfg.Security.SessionTimeout != 24*time.Hour {
		t.Errorf("SessionTimeout = %v, want 24h", cfg.Security.SessionTimeout)
	}
}

func TestValidate_Defaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() on defaults: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing secret", func(c *Config) { c.Security.JWTSecret = "" }, "jwt_secret is required"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, "at least 32"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"empty db path", func(c *Config) { c.Database.Path = " " }, "database.path"},
		{"inverted range", func(c *Config) { c.Simulation.GameDuration = DurationRange{Min: 10, Max: 5} }, "game_duration"},
		{"zero min", func(c *Config) { c.Simulation.BookDuration.Min = 0 }, "book_duration"},
		{"chance above one", func(c *Config) { c.Simulation.EventChance = 1.5 }, "event_chance"},
		{"threshold above 100", func(c *Config) { c.Simulation.EventThreshold = 101 }, "event_threshold"},
		{"expiry factor", func(c *Config) { c.Simulation.ExpiryFactor = 0.5 }, "expiry_factor"},
		{"unknown backend", func(c *Config) { c.Events.Backend = "kafka" }, "events.backend"},
		{"nats without url", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.NATSURL = ""
		}, "nats_url"},
		{"page sizes", func(c *Config) { c.API.MaxPageSize = 1 }, "page sizes"},
		{"recommend limits", func(c *Config) { c.Recommend.DefaultLimit = 0 }, "recommend limits"},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = 0 }, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RateLimitDisabledSkipsWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitWindow = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when rate limiting is disabled", err)
	}
}

func TestLoadWithKoanf_RequiresSecret(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("LoadWithKoanf() without JWT_SECRET should fail")
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SIMULATION_SEED", "42")
	t.Setenv("SESSION_TIMEOUT", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("Simulation.Seed = %d, want 42", cfg.Simulation.Seed)
	}
	if cfg.Security.SessionTimeout != 2*time.Hour {
		t.Errorf("SessionTimeout = %v, want 2h", cfg.Security.SessionTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 7000
simulation:
  book_duration:
    min: 5
    max: 10
  event_chance: 0.5
security:
  jwt_secret: "` + testSecret + `"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want env value 7001 over file value", cfg.Server.Port)
	}
	if cfg.Simulation.BookDuration != (DurationRange{Min: 5, Max: 10}) {
		t.Errorf("BookDuration = %+v, want 5-10 from file", cfg.Simulation.BookDuration)
	}
	if cfg.Simulation.EventChance != 0.5 {
		t.Errorf("EventChance = %g, want 0.5", cfg.Simulation.EventChance)
	}
	if cfg.Simulation.MovieDuration != (DurationRange{Min: 20, Max: 60}) {
		t.Errorf("MovieDuration = %+v, want default 20-60", cfg.Simulation.MovieDuration)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":       "server.port",
		"jwt_secret":      "security.jwt_secret",
		"NATS_URL":        "events.nats_url",
		"PATH":            "",
		"SOMETHING_ELSE":  "",
		"SIMULATION_SEED": "simulation.seed",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
