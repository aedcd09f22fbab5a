// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SessionExpirer evicts abandoned simulation sessions.
// Satisfied by *simulation.Tracker.
type SessionExpirer interface {
	Expire(ctx context.Context, now time.Time) int
}

// ReaperService periodically expires abandoned simulation sessions.
type ReaperService struct {
	expirer  SessionExpirer
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
	name     string
}

// NewReaperService creates a reaper that sweeps every interval. A
// non-positive interval defaults to one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReaperService(expirer SessionExpirer, interval time.Duration, logger zerolog.Logger) *ReaperService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReaperService{
		expirer:  expirer,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.With().Str("service", "simulation-reaper").Logger(),
		name:     "simulation-reaper",
	}
}

// Serve implements suture.Service.
func (s *ReaperService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("session reaper starting")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("session reaper shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReaperService) sweep(ctx context.Context) {
	start := time.Now()
	n := s.expirer.Expire(ctx, s.now())
	if n == 0 {
		return
	}
	s.logger.Info().
		Int("expired", n).
		Dur("duration", time.Since(start)).
		Msg("expired abandoned sessions")
}

// String returns the service name for logging.
func (s *ReaperService) String() string {
	return s.name
}
