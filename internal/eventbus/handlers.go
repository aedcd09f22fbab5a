// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package eventbus

import (
	"context"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/simulation"
)

// UserCacheInvalidator drops cached recommendations for a user.
// Satisfied by *recommend.Cache.
type UserCacheInvalidator interface {
	InvalidateUser(userID int64) int
}

// UserSender delivers a message to one user's open connections.
// Satisfied by *websocket.Hub.
type UserSender interface {
	SendToUser(userID int64, messageType string, data interface{}) bool
}

// websocket.MessageTypeSimulation; duplicated to avoid importing the hub.
const simulationMessageType = "simulation"

// InvalidateRecommendations clears a user's cached recommendations when
// they complete a session, since the new rating changes their tag profile.
func InvalidateRecommendations(c UserCacheInvalidator) Handler {
	return Handler{
		Name: "recommend-invalidate",
		Handle: func(ctx context.Context, ev simulation.LifecycleEvent) error {
			if ev.Kind != simulation.EventCompleted {
				return nil
			}
			n := c.InvalidateUser(ev.UserID)
			logging.Ctx(ctx).Debug().
				Int64("user_id", ev.UserID).
				Int("entries", n).
				Msg("recommendation cache invalidated")
			return nil
		},
	}
}

// FanOutToUsers forwards every event to the websocket connections of the
// user who owns the session.
func FanOutToUsers(s UserSender) Handler {
	return Handler{
		Name: "websocket-fanout",
		Handle: func(_ context.Context, ev simulation.LifecycleEvent) error {
			s.SendToUser(ev.UserID, simulationMessageType, ev)
			return nil
		},
	}
}
