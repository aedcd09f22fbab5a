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

// captureGlobal points the global logger at a buffer for the duration of the test.
func captureGlobal(t *testing.T, level string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	Init(Config{Level: level, Format: "json", Output: &buf})
	t.Cleanup(func() {
		Init(DefaultConfig())
	})
	return &buf
}

func TestInit_JSONOutput(t *testing.T) {
	buf := captureGlobal(t, "debug")

	Info().Str("component", "tracker").Msg("hello")

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"message":"hello"`, `"component":"tracker"`, `"time":`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	buf := captureGlobal(t, "warn")

	Info().Msg("dropped")
	Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	buf := captureGlobal(t, "info")

	l := WithComponent("reaper")
	l.Info().Msg("sweep")

	if !strings.Contains(buf.String(), `"component":"reaper"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}
