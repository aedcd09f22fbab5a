// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"net/http"
	"time"
)

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	ActiveSimulations int     `json:"active_simulations"`
	WebSocketClients  int     `json:"websocket_clients"`
	EventBus          string  `json:"event_bus"`
	Uptime            float64 `json:"uptime"`
}

// Root describes the service.
//
// @Summary Service information
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=ServiceInfo}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, ServiceInfo{
		Name:    "mediarec",
		Message: "Welcome to the Mediarec media recommendation API",
		Version: h.version,
		Docs:    "/swagger/index.html",
	})
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Reports database connectivity, live simulation sessions, websocket clients and the event bus breaker.
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=HealthStatus} "Healthy"
// @Failure 503 {object} APIResponse{data=HealthStatus} "Database unreachable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: dbConnected,
		EventBus:          "disabled",
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.tracker != nil {
		health.ActiveSimulations = h.tracker.ActiveCount()
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}
	if h.bus != nil {
		health.EventBus = h.bus.BreakerState().String()
	}

	rw := NewResponseWriter(w, r)
	if !dbConnected {
		health.Status = "degraded"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: health, Meta: rw.meta()})
		return
	}
	rw.Success(health)
}
