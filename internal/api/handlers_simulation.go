// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/models"
	"github.com/tomtom215/mediarec/internal/simulation"
	ws "github.com/tomtom215/mediarec/internal/websocket"
)

const simulationNotFound = "Simulation not found"

// StartSimulationRequest is the body of POST /simulation/start.
type StartSimulationRequest struct {
	ContentType models.ContentType `json:"content_type" validate:"required,content_type"`
	ContentID   int64              `json:"content_id" validate:"required,min=1"`
}

// CompleteSimulationRequest is the body of POST /simulation/complete/{id}.
// The rating range is enforced by the tracker.
type CompleteSimulationRequest struct {
	Rating       int      `json:"rating"`
	PersonalTags []string `json:"personal_tags" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// ActiveSimulations is the body of GET /simulation/active.
type ActiveSimulations struct {
	ActiveSimulations []simulation.SessionSummary `json:"active_simulations"`
}

// ownedSession resolves the {id} session key and checks the caller owns it.
// Another user's session is reported as missing.
func (h *Handler) ownedSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "id")
	owner, ok := h.tracker.Owner(key)
	if !ok || owner != subject(r).UserID {
		NewResponseWriter(w, r).NotFound(simulationNotFound)
		return "", false
	}
	return key, true
}

// StartSimulation opens a consumption session on a catalog item.
//
// @Summary Start a simulation
// @Tags Simulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartSimulationRequest true "Item to consume"
// @Success 200 {object} APIResponse{data=simulation.StartResult}
// @Failure 404 {object} APIResponse "Content not found"
// @Failure 409 {object} APIResponse "Simulation already active"
// @Router /api/v1/simulation/start [post]
func (h *Handler) StartSimulation(w http.ResponseWriter, r *http.Request) {
	var req StartSimulationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ct := req.ContentType

	res, err := h.tracker.Start(r.Context(), subject(r).UserID, ct, req.ContentID)
	if err != nil {
		respondTrackerError(w, r, err, displayName(ct)+" not found")
		return
	}
	WriteSuccess(w, r, res)
}

// SimulationProgress reports time-derived progress and may fire an event.
//
// @Summary Poll simulation progress
// @Tags Simulation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Simulation id"
// @Success 200 {object} APIResponse{data=simulation.ProgressReport}
// @Failure 404 {object} APIResponse
// @Router /api/v1/simulation/progress/{id} [get]
func (h *Handler) SimulationProgress(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	rep, err := h.tracker.Progress(r.Context(), key)
	if err != nil {
		respondTrackerError(w, r, err, simulationNotFound)
		return
	}
	WriteSuccess(w, r, rep)
}

// CompleteSimulation finishes a session with a rating.
//
// @Summary Complete a simulation
// @Tags Simulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Simulation id"
// @Param request body CompleteSimulationRequest true "Rating 1-10 and personal tags"
// @Success 200 {object} APIResponse{data=simulation.CompletionReport}
// @Failure 400 {object} APIResponse "Rating out of range"
// @Failure 404 {object} APIResponse
// @Router /api/v1/simulation/complete/{id} [post]
func (h *Handler) CompleteSimulation(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	var req CompleteSimulationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rep, err := h.tracker.Complete(r.Context(), key, req.Rating, req.PersonalTags)
	if err != nil {
		respondTrackerError(w, r, err, simulationNotFound)
		return
	}
	WriteSuccess(w, r, rep)
}

// CancelSimulation drops a session.
//
// @Summary Cancel a simulation
// @Tags Simulation
// @Produce json
// @Security BearerAuth
// @Param id path string true "Simulation id"
// @Success 200 {object} APIResponse{data=simulation.CancellationReport}
// @Failure 404 {object} APIResponse
// @Router /api/v1/simulation/cancel/{id} [post]
func (h *Handler) CancelSimulation(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedSession(w, r)
	if !ok {
		return
	}
	rep, err := h.tracker.Cancel(r.Context(), key)
	if err != nil {
		respondTrackerError(w, r, err, simulationNotFound)
		return
	}
	WriteSuccess(w, r, rep)
}

// ActiveSimulations lists the caller's live sessions, oldest first.
//
// @Summary List active simulations
// @Tags Simulation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=ActiveSimulations}
// @Router /api/v1/simulation/active [get]
func (h *Handler) ActiveSimulations(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.tracker.ListActive(r.Context(), subject(r).UserID)
	if err != nil {
		respondTrackerError(w, r, err, simulationNotFound)
		return
	}
	if sessions == nil {
		sessions = []simulation.SessionSummary{}
	}
	WriteSuccess(w, r, ActiveSimulations{ActiveSimulations: sessions})
}

// SimulationEvents upgrades to a websocket that streams the caller's
// simulation lifecycle events.
//
// @Summary Stream simulation events
// @Tags Simulation
// @Security BearerAuth
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} APIResponse "WebSocket hub not available"
// @Router /api/v1/simulation/ws [get]
func (h *Handler) SimulationEvents(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.wsHub, conn, subject(r).UserID)
	h.wsHub.Register <- client
	client.Start()
}
