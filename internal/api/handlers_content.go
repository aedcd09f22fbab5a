// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/models"
)

const (
	contentDefaultLimit = 10
	searchDefaultLimit  = 20
	searchMinQuery      = 2
)

// displayName is the capitalized type name used in messages ("Book").
func displayName(ct models.ContentType) string {
	s := string(ct)
	if s == "" {
		return "Content"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// kindParam resolves the {kind} path segment to a content type.
func kindParam(w http.ResponseWriter, r *http.Request) (models.ContentType, bool) {
	ct, ok := models.ParseContentType(chi.URLParam(r, "kind"))
	if !ok {
		NewResponseWriter(w, r).NotFound("Unknown content type")
		return "", false
	}
	return ct, true
}

// ListContent returns one page of a catalog type.
//
// @Summary List catalog items
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param kind path string true "books, movies or games"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(10)
// @Param genre query string false "Genre substring"
// @Param year query int false "Release year"
// @Param search query string false "Title or creator substring"
// @Success 200 {object} APIResponse{data=[]models.Content}
// @Failure 400 {object} APIResponse
// @Router /api/v1/content/{kind} [get]
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	ct, ok := kindParam(w, r)
	if !ok {
		return
	}
	rw := NewResponseWriter(w, r)

	_, maxLimit := h.pageLimits()
	skip, limit, err := pageParams(r, contentDefaultLimit, maxLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	filter := models.ContentFilter{
		Genre:  strings.TrimSpace(r.URL.Query().Get("genre")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Skip:   skip,
		Limit:  limit,
	}
	if r.URL.Query().Get("year") != "" {
		year, err := getIntParam(r, "year", 0)
		if err != nil {
			rw.BadRequest(err.Error())
			return
		}
		filter.Year = &year
	}

	items, err := h.db.ListContent(r.Context(), ct, filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	total, err := h.db.CountContent(r.Context(), ct, filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(items, pagination(total, len(items), skip, limit))
}

// GetContent returns one catalog item.
//
// @Summary Get a catalog item
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param kind path string true "books, movies or games"
// @Param id path int true "Item id"
// @Success 200 {object} APIResponse{data=models.Content}
// @Failure 404 {object} APIResponse
// @Router /api/v1/content/{kind}/{id} [get]
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	ct, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		NewResponseWriter(w, r).NotFound(displayName(ct) + " not found")
		return
	}

	item, err := h.db.GetContent(r.Context(), ct, id)
	if err != nil {
		respondDBError(w, r, err, displayName(ct)+" not found")
		return
	}
	WriteSuccess(w, r, item)
}

// SearchContent searches titles, creators and descriptions. Results are
// grouped per type.
//
// @Summary Search the catalog
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param query query string true "At least 2 characters"
// @Param content_type query string false "book, movie or game"
// @Param limit query int false "Maximum results (1-100)" default(20)
// @Success 200 {object} APIResponse{data=SearchResults}
// @Failure 400 {object} APIResponse
// @Router /api/v1/content/search [get]
func (h *Handler) SearchContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if utf8.RuneCountInString(query) < searchMinQuery {
		rw.BadRequest("query must be at least 2 characters")
		return
	}
	ct, err := contentTypeParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	_, maxLimit := h.pageLimits()
	limit, err := getIntParam(r, "limit", searchDefaultLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if limit < 1 || limit > maxLimit {
		rw.BadRequest(fmt.Sprintf("limit must be between 1 and %d", maxLimit))
		return
	}

	items, err := h.db.SearchContent(r.Context(), query, ct, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	results := SearchResults{
		Books:  []models.Content{},
		Movies: []models.Content{},
		Games:  []models.Content{},
	}
	for _, item := range items {
		switch item.Type {
		case models.ContentBook:
			results.Books = append(results.Books, item)
		case models.ContentMovie:
			results.Movies = append(results.Movies, item)
		case models.ContentGame:
			results.Games = append(results.Games, item)
		}
	}
	rw.Success(results)
}

// CreateContent adds a catalog item. Admin only.
//
// @Summary Create a catalog item
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "books, movies or games"
// @Param request body models.ContentInput true "Item"
// @Success 201 {object} APIResponse{data=models.Content}
// @Failure 403 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /api/v1/content/{kind} [post]
func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	ct, ok := kindParam(w, r)
	if !ok {
		return
	}
	var in models.ContentInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	item, err := h.db.CreateContent(r.Context(), ct, &in)
	if err != nil {
		respondDBError(w, r, err, displayName(ct)+" not found")
		return
	}
	h.recordAdminAction(r, models.ActionContentCreate, ct.Table(), item.ID, nil, item)
	NewResponseWriter(w, r).Created(item)
}

// UpdateContent replaces a catalog item. Admin only.
//
// @Summary Update a catalog item
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "books, movies or games"
// @Param id path int true "Item id"
// @Param request body models.ContentInput true "Item"
// @Success 200 {object} APIResponse{data=models.Content}
// @Failure 404 {object} APIResponse
// @Router /api/v1/content/{kind}/{id} [put]
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	ct, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		NewResponseWriter(w, r).NotFound(displayName(ct) + " not found")
		return
	}
	var in models.ContentInput
	if !decodeAndValidate(w, r, &in) {
		return
	}

	before, after, err := h.db.UpdateContent(r.Context(), ct, id, &in)
	if err != nil {
		respondDBError(w, r, err, displayName(ct)+" not found")
		return
	}
	h.recordAdminAction(r, models.ActionContentUpdate, ct.Table(), id, before, after)
	WriteSuccess(w, r, after)
}

// DeleteContent removes a catalog item. Admin only.
//
// @Summary Delete a catalog item
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param kind path string true "books, movies or games"
// @Param id path int true "Item id"
// @Success 200 {object} APIResponse{data=MessageResponse}
// @Failure 404 {object} APIResponse
// @Router /api/v1/content/{kind}/{id} [delete]
func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	ct, ok := kindParam(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		NewResponseWriter(w, r).NotFound(displayName(ct) + " not found")
		return
	}

	before, err := h.db.DeleteContent(r.Context(), ct, id)
	if err != nil {
		respondDBError(w, r, err, displayName(ct)+" not found")
		return
	}
	h.recordAdminAction(r, models.ActionContentDelete, ct.Table(), id, before, nil)
	WriteSuccess(w, r, MessageResponse{Message: displayName(ct) + " deleted successfully"})
}

// recordAdminAction writes the audit row. The change itself has already
// succeeded, so a failure is logged and not reported to the client.
func (h *Handler) recordAdminAction(r *http.Request, actionType, targetTable string, targetID int64, oldValues, newValues any) {
	adminID := subject(r).UserID
	if _, err := h.db.RecordAdminAction(r.Context(), adminID, actionType, targetTable, targetID, oldValues, newValues); err != nil {
		logging.CtxError(r.Context()).Err(err).
			Str("action_type", actionType).
			Int64("target_id", targetID).
			Msg("Failed to record admin action")
	}
}
