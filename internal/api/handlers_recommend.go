// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mediarec/internal/models"
	"github.com/tomtom215/mediarec/internal/recommend"
)

// FeedbackRequest is the body of POST /recommendations/feedback.
type FeedbackRequest struct {
	ContentType models.ContentType `json:"content_type" validate:"required,content_type"`
	ContentID   int64              `json:"content_id" validate:"required,min=1"`
	Helpful     bool               `json:"helpful"`
}

// Recommendations ranks unrated catalog items for the caller.
//
// @Summary Personal recommendations
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param content_type query string false "book, movie or game"
// @Param limit query int false "Maximum results"
// @Success 200 {object} APIResponse{data=recommend.Result}
// @Failure 400 {object} APIResponse
// @Router /api/v1/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ct, err := contentTypeParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	res, err := h.engine.Recommend(r.Context(), recommend.Request{
		UserID:      subject(r).UserID,
		ContentType: ct,
		Limit:       limit,
	})
	if err != nil {
		respondDBError(w, r, err, "User not found")
		return
	}
	rw.Success(res)
}

// SimilarContent ranks items of the same type by tag overlap.
//
// @Summary Similar items
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param type path string true "book, movie or game"
// @Param id path int true "Source item id"
// @Param limit query int false "Maximum results (1-20)" default(5)
// @Success 200 {object} APIResponse{data=recommend.SimilarResult}
// @Failure 404 {object} APIResponse
// @Router /api/v1/recommendations/similar/{type}/{id} [get]
func (h *Handler) SimilarContent(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ct, ok := models.ParseContentType(chi.URLParam(r, "type"))
	if !ok {
		rw.BadRequest("content type must be one of: book, movie, game")
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		rw.NotFound(displayName(ct) + " not found")
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	res, err := h.engine.Similar(r.Context(), ct, id, limit)
	if err != nil {
		respondDBError(w, r, err, displayName(ct)+" not found")
		return
	}
	rw.Success(res)
}

// Trending ranks items by interactions started within a period.
//
// @Summary Trending items
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param content_type query string false "book, movie or game"
// @Param period query string false "day, week, month or year" default(week)
// @Param limit query int false "Maximum results"
// @Success 200 {object} APIResponse{data=recommend.TrendingResult}
// @Failure 400 {object} APIResponse
// @Router /api/v1/recommendations/trending [get]
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ct, err := contentTypeParam(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	period, err := recommend.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	res, err := h.engine.Trending(r.Context(), ct, period, limit)
	if err != nil {
		respondDBError(w, r, err, "Content not found")
		return
	}
	rw.Success(res)
}

// RecommendationFeedback records whether a recommendation helped.
//
// @Summary Recommendation feedback
// @Tags Recommendations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FeedbackRequest true "Feedback"
// @Success 200 {object} APIResponse{data=recommend.FeedbackResult}
// @Failure 422 {object} APIResponse
// @Router /api/v1/recommendations/feedback [post]
func (h *Handler) RecommendationFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.engine.Feedback(r.Context(), subject(r).UserID, req.ContentType, req.ContentID, req.Helpful)
	if err != nil {
		respondDBError(w, r, err, displayName(req.ContentType)+" not found")
		return
	}
	WriteSuccess(w, r, res)
}
