// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/recommend"
	"github.com/tomtom215/mediarec/internal/simulation"
	ws "github.com/tomtom215/mediarec/internal/websocket"
)

// BreakerReporter exposes the event bus circuit breaker to the health check.
type BreakerReporter interface {
	BreakerState() gobreaker.State
}

// Deps are the services the handlers call into.
type Deps struct {
	Config  *config.Config
	DB      *database.DB
	Tracker *simulation.Tracker
	Engine  *recommend.Engine
	Auth    *auth.Service
	Hub     *ws.Hub
	Version string
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files by area:
//   - handlers_health.go: service info and health
//   - handlers_auth.go: registration, login, profile
//   - handlers_content.go: catalog reads, search and admin writes
//   - handlers_simulation.go: session lifecycle and the event stream
//   - handlers_interactions.go: the caller's ledger
//   - handlers_recommend.go: recommendations, similar items, trending, feedback
//   - handlers_admin.go: user moderation and the audit trail
type Handler struct {
	config    *config.Config
	db        *database.DB
	tracker   *simulation.Tracker
	engine    *recommend.Engine
	auth      *auth.Service
	wsHub     *ws.Hub
	bus       BreakerReporter
	security  *logging.SecurityLogger
	version   string
	startTime time.Time
}

// NewHandler creates the API handler.
//
// Example:
//
//	handler := api.NewHandler(api.Deps{Config: cfg, DB: db, Tracker: tracker, Engine: engine, Auth: authSvc, Hub: hub})
//	router := api.NewRouter(handler, authMiddleware, authzMiddleware, nil)
//	srv := &http.Server{Handler: router.SetupChi()}
func NewHandler(d Deps) *Handler {
	version := d.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		config:    d.Config,
		db:        d.DB,
		tracker:   d.Tracker,
		engine:    d.Engine,
		auth:      d.Auth,
		wsHub:     d.Hub,
		security:  logging.NewSecurityLogger(),
		version:   version,
		startTime: time.Now(),
	}
}

// SetEventBus attaches the event bus once it is running. The health check
// reports "disabled" until then.
func (h *Handler) SetEventBus(b BreakerReporter) {
	h.bus = b
}

func (h *Handler) pageLimits() (defaultLimit, maxLimit int) {
	defaultLimit, maxLimit = 20, 100
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			defaultLimit = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxLimit = h.config.API.MaxPageSize
		}
	}
	return defaultLimit, maxLimit
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin on websocket handshakes.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
