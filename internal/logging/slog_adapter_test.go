// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBufferedSlog(buf *bytes.Buffer) *slog.Logger {
	return slog.New(&SlogHandler{logger: zerolog.New(buf)})
}

func TestSlogHandler_Kinds(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newBufferedSlog(&buf)

	logger.Warn("service restarted",
		"service", "reaper",
		"attempt", 3,
		"backoff", 2*time.Second,
		"healthy", false,
		"err", errors.New("boom"),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"message":"service restarted"`,
		`"service":"reaper"`,
		`"attempt":3`,
		`"healthy":false`,
		`"err":"boom"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestSlogHandler_GroupsAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newBufferedSlog(&buf).With("tree", "mediarec").WithGroup("svc")

	logger.Info("stopped", "name", "http-server")

	out := buf.String()
	if !strings.Contains(out, `"tree":"mediarec"`) {
		t.Errorf("pre-bound attr missing: %s", out)
	}
	if !strings.Contains(out, `"svc.name":"http-server"`) {
		t.Errorf("grouped attr missing: %s", out)
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := &SlogHandler{logger: zerolog.New(&bytes.Buffer{}).Level(zerolog.WarnLevel)}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled for a warn-level logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled for a warn-level logger")
	}
}
