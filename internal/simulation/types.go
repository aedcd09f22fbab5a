// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/models"
)

// Catalog resolves content and applies rating feedback to popularity.
// LookupContent returns an error wrapping models.ErrNotFound for a missing item.
type Catalog interface {
	LookupContent(ctx context.Context, ct models.ContentType, id int64) (*models.ContentSummary, error)
	ApplyRating(ctx context.Context, ct models.ContentType, id int64, rating int) (float64, error)
}

// Ledger persists the interaction record each session finalizes.
type Ledger interface {
	CreateInteraction(ctx context.Context, it *models.Interaction) (int64, error)
	UpdateInteraction(ctx context.Context, id int64, upd models.InteractionUpdate) error
}

// Notifier receives lifecycle events. Notify must not block for long; the
// tracker calls it after the state change has been committed.
type Notifier interface {
	Notify(ctx context.Context, ev LifecycleEvent)
}

// EventKind names a lifecycle transition.
type EventKind string

const (
	EventStarted   EventKind = "started"
	EventProgress  EventKind = "progress_event"
	EventCompleted EventKind = "completed"
	EventCancelled EventKind = "cancelled"
	EventExpired   EventKind = "expired"
)

// LifecycleEvent is published on every session transition and on each
// flavor event drawn during progress.
type LifecycleEvent struct {
	Kind          EventKind          `json:"kind"`
	SessionKey    string             `json:"simulation_id"`
	UserID        int64              `json:"user_id"`
	ContentType   models.ContentType `json:"content_type"`
	ContentID     int64              `json:"content_id"`
	ContentTitle  string             `json:"content_title"`
	InteractionID int64              `json:"interaction_id"`
	Progress      int                `json:"progress"`
	Rating        int                `json:"rating,omitempty"`
	Event         string             `json:"event,omitempty"`
	Message       string             `json:"message,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// SessionKey builds the composite key "{user_id}_{content_type}_{content_id}".
func SessionKey(userID int64, ct models.ContentType, contentID int64) string {
	return fmt.Sprintf("%d_%s_%d", userID, ct, contentID)
}

// Session is one live consumption. Identity fields are fixed at creation;
// events, lastProgress and finalizing are guarded by mu.
type Session struct {
	Key             string
	UserID          int64
	ContentType     models.ContentType
	ContentID       int64
	ContentTitle    string
	StartedAt       time.Time
	PlannedDuration int
	LedgerID        int64

	mu           sync.Mutex
	events       []string
	lastProgress int
	finalizing   bool
}

// Events returns a copy of the flavor events emitted so far.
func (s *Session) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// LastProgress returns the highest progress reported so far.
func (s *Session) LastProgress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProgress
}

// claim marks the session as being finalized. Only one caller wins.
func (s *Session) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizing {
		return false
	}
	s.finalizing = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.finalizing = false
	s.mu.Unlock()
}

// StartResult is returned by Start.
type StartResult struct {
	SessionKey      string `json:"simulation_id"`
	InteractionID   int64  `json:"interaction_id"`
	PlannedDuration int    `json:"estimated_time"`
	ContentTitle    string `json:"content_title"`
	Message         string `json:"message"`
}

// ProgressReport is returned by Progress. Event is nil unless a flavor
// event fired on this call.
type ProgressReport struct {
	Progress       int     `json:"progress"`
	Completed      bool    `json:"completed"`
	Event          *string `json:"event"`
	ContentTitle   string  `json:"content_title"`
	ElapsedSeconds int     `json:"elapsed_time"`
}

// CompletionReport is returned by Complete.
type CompletionReport struct {
	Message    string `json:"message"`
	Rating     int    `json:"rating"`
	Duration   int    `json:"duration"`
	Experience int    `json:"experience_gained"`
}

// CancellationReport is returned by Cancel.
type CancellationReport struct {
	Message string `json:"message"`
}

// SessionSummary is one entry of ListActive.
type SessionSummary struct {
	SessionKey   string             `json:"simulation_id"`
	ContentTitle string             `json:"content_title"`
	ContentType  models.ContentType `json:"content_type"`
	Progress     int                `json:"progress"`
	StartTime    time.Time          `json:"start_time"`
}

// DurationRange bounds a planned duration in seconds, inclusive.
type DurationRange struct {
	Min, Max int
}

// Config tunes the tracker.
type Config struct {
	Durations      map[models.ContentType]DurationRange
	Events         map[models.ContentType][]string
	EventThreshold int
	EventChance    float64
	MaxEvents      int
	ExpiryFactor   float64
}

// DefaultConfig returns the stock duration ranges, event lists and gate.
func DefaultConfig() Config {
	return Config{
		Durations: map[models.ContentType]DurationRange{
			models.ContentBook:  {Min: 30, Max: 180},
			models.ContentMovie: {Min: 20, Max: 60},
			models.ContentGame:  {Min: 45, Max: 300},
		},
		Events:         defaultEvents(),
		EventThreshold: 20,
		EventChance:    0.3,
		MaxEvents:      3,
		ExpiryFactor:   10,
	}
}

// ConfigFrom builds a tracker Config from the application configuration.
// Flavor event lists always come from the defaults.
func ConfigFrom(cfg *config.SimulationConfig) Config {
	c := DefaultConfig()
	c.Durations[models.ContentBook] = DurationRange(cfg.BookDuration)
	c.Durations[models.ContentMovie] = DurationRange(cfg.MovieDuration)
	c.Durations[models.ContentGame] = DurationRange(cfg.GameDuration)
	c.EventThreshold = cfg.EventThreshold
	c.EventChance = cfg.EventChance
	c.MaxEvents = cfg.MaxEvents
	if cfg.ExpiryFactor > 0 {
		c.ExpiryFactor = cfg.ExpiryFactor
	}
	return c
}

func defaultEvents() map[models.ContentType][]string {
	return map[models.ContentType][]string{
		models.ContentBook: {
			"You are deep in the plot",
			"An unexpected twist!",
			"The main character makes an important decision",
			"You can't put it down",
			"An emotional scene makes you think",
		},
		models.ContentMovie: {
			"A thrilling action scene",
			"An unexpected plot twist",
			"Emotional dialogue between the characters",
			"Impressive visual effects",
			"A tense moment",
		},
		models.ContentGame: {
			"You explore a new location",
			"An epic boss battle",
			"You found a rare item",
			"Achievement unlocked",
			"A tricky puzzle solved",
			"New level completed",
		},
	}
}
