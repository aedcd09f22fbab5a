// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// EventRouter is satisfied by the eventbus router, a thin wrapper over
// watermill's *message.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a fresh router. A watermill router cannot be run
// again after it stops, so every restart needs a new one.
type RouterFactory func() (EventRouter, error)

// EventRouterService runs the lifecycle event router under suture.
type EventRouterService struct {
	factory RouterFactory
	logger  zerolog.Logger
	name    string
}

// NewEventRouterService creates the router service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEventRouterService(factory RouterFactory, logger zerolog.Logger) *EventRouterService {
	return &EventRouterService{
		factory: factory,
		logger:  logger.With().Str("service", "event-router").Logger(),
		name:    "event-router",
	}
}

// Serve implements suture.Service. A router that stops while ctx is still
// live is reported as a failure so suture restarts it.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	defer func() {
		if cerr := router.Close(); cerr != nil {
			s.logger.Warn().Err(cerr).Msg("event router close failed")
		}
	}()

	s.logger.Info().Msg("event router starting")
	runErr := router.Run(ctx)

	if ctx.Err() != nil {
		s.logger.Info().Msg("event router shutting down")
		return ctx.Err()
	}
	if runErr == nil {
		runErr = errors.New("router stopped unexpectedly")
	}
	return fmt.Errorf("event router: %w", runErr)
}

func (s *EventRouterService) String() string {
	return s.name
}
