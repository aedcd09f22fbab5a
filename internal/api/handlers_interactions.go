// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/mediarec/internal/models"
)

const interactionsDefaultLimit = 20

// ListInteractions returns the caller's ledger, newest first.
//
// @Summary List interactions
// @Tags Interactions
// @Produce json
// @Security BearerAuth
// @Param content_type query string false "book, movie or game"
// @Param interaction_type query string false "started, completed, dropped or rated"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(20)
// @Success 200 {object} APIResponse{data=[]models.InteractionWithContent}
// @Failure 400 {object} APIResponse
// @Router /api/v1/interactions [get]
func (h *Handler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	_, maxLimit := h.pageLimits()
	skip, limit, err := pageParams(r, interactionsDefaultLimit, maxLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	ct, err := contentTypeParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	it := models.InteractionType(r.URL.Query().Get("interaction_type"))
	if it != "" && !it.Valid() {
		rw.BadRequest("interaction_type must be one of: started, completed, dropped, rated")
		return
	}

	items, err := h.db.ListInteractions(r.Context(), subject(r).UserID, models.InteractionFilter{
		ContentType:     ct,
		InteractionType: it,
		Skip:            skip,
		Limit:           limit,
	})
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(items, &PaginationMeta{
		Count:   len(items),
		Skip:    skip,
		Limit:   limit,
		HasMore: len(items) == limit,
	})
}

// InteractionStats summarizes the caller's ledger.
//
// @Summary Interaction statistics
// @Tags Interactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=models.InteractionStats}
// @Router /api/v1/interactions/stats [get]
func (h *Handler) InteractionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.InteractionStats(r.Context(), subject(r).UserID, time.Now().UTC())
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}
	WriteSuccess(w, r, stats)
}

// Library groups the caller's ledger into reading, completed, dropped and
// planned.
//
// @Summary User library
// @Tags Interactions
// @Produce json
// @Security BearerAuth
// @Param status query string false "all, reading, completed, dropped or planned" default(all)
// @Param content_type query string false "book, movie or game"
// @Success 200 {object} APIResponse{data=models.Library}
// @Failure 400 {object} APIResponse
// @Router /api/v1/interactions/library [get]
func (h *Handler) Library(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status, ok := models.ParseLibraryStatus(r.URL.Query().Get("status"))
	if !ok {
		rw.BadRequest("status must be one of: all, reading, completed, dropped, planned")
		return
	}
	ct, err := contentTypeParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	lib, err := h.db.Library(r.Context(), subject(r).UserID, status, ct)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(lib)
}

// DeleteInteraction removes one of the caller's ledger rows.
//
// @Summary Delete an interaction
// @Tags Interactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Interaction id"
// @Success 200 {object} APIResponse{data=MessageResponse}
// @Failure 404 {object} APIResponse
// @Router /api/v1/interactions/{id} [delete]
func (h *Handler) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		NewResponseWriter(w, r).NotFound("Interaction not found")
		return
	}
	if err := h.db.DeleteInteraction(r.Context(), subject(r).UserID, id); err != nil {
		respondDBError(w, r, err, "Interaction not found")
		return
	}
	WriteSuccess(w, r, MessageResponse{Message: "Interaction deleted successfully"})
}
