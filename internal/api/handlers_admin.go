// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomtom215/mediarec/internal/models"
)

const userNotFound = "User not found"

type activeState struct {
	IsActive bool `json:"is_active"`
}

// ListUsers returns one page of accounts.
//
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(20)
// @Success 200 {object} APIResponse{data=[]models.User}
// @Failure 403 {object} APIResponse
// @Router /api/v1/admin/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	defaultLimit, maxLimit := h.pageLimits()
	skip, limit, err := pageParams(r, defaultLimit, maxLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	users, total, err := h.db.ListUsers(r.Context(), skip, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(users, pagination(total, len(users), skip, limit))
}

// BlockUser deactivates an account. Admins cannot block themselves.
//
// @Summary Block a user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {object} APIResponse{data=MessageResponse}
// @Failure 400 {object} APIResponse "Cannot block yourself"
// @Failure 404 {object} APIResponse
// @Router /api/v1/admin/users/{id}/block [post]
func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

// UnblockUser reactivates an account.
//
// @Summary Unblock a user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Success 200 {object} APIResponse{data=MessageResponse}
// @Failure 404 {object} APIResponse
// @Router /api/v1/admin/users/{id}/unblock [post]
func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	rw := NewResponseWriter(w, r)
	id, err := parseID(r, "id")
	if err != nil {
		rw.NotFound(userNotFound)
		return
	}
	adminID := subject(r).UserID
	if !active && id == adminID {
		rw.BadRequest("Cannot block yourself")
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondDBError(w, r, err, userNotFound)
		return
	}
	previous, err := h.db.SetUserActive(r.Context(), id, active)
	if err != nil {
		respondDBError(w, r, err, userNotFound)
		return
	}

	action, verb := models.ActionUserUnblock, "unblocked"
	if !active {
		action, verb = models.ActionUserBlock, "blocked"
	}
	h.recordAdminAction(r, action, "users", id, activeState{IsActive: previous}, activeState{IsActive: active})
	h.security.LogAccountStatus(adminID, id, active)

	rw.Success(MessageResponse{Message: fmt.Sprintf("User %s has been %s", user.Username, verb)})
}

// UpdateUserPreferences replaces another user's preferences.
//
// @Summary Edit user preferences
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User id"
// @Param request body models.Preferences true "Popularity and newness, 0..100"
// @Success 200 {object} APIResponse{data=PreferencesResponse}
// @Failure 404 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /api/v1/admin/users/{id}/preferences [put]
func (h *Handler) UpdateUserPreferences(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		NewResponseWriter(w, r).NotFound(userNotFound)
		return
	}
	var prefs models.Preferences
	if !decodeAndValidate(w, r, &prefs) {
		return
	}

	old, err := h.db.UpdatePreferences(r.Context(), id, prefs)
	if err != nil {
		respondDBError(w, r, err, userNotFound)
		return
	}
	if h.engine != nil {
		h.engine.InvalidateUser(id)
	}
	h.recordAdminAction(r, models.ActionPreferencesEdit, "users", id, old, prefs)
	WriteSuccess(w, r, PreferencesResponse{Message: "User preferences updated successfully", Preferences: prefs})
}

// ListAdminActions returns the audit trail, newest first.
//
// @Summary Admin audit trail
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param admin_user_id query int false "Only actions by this admin"
// @Param action_type query string false "e.g. user_block, content_create"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size (1-100)" default(20)
// @Success 200 {object} APIResponse{data=[]models.AdminAction}
// @Failure 403 {object} APIResponse
// @Router /api/v1/admin/actions [get]
func (h *Handler) ListAdminActions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	defaultLimit, maxLimit := h.pageLimits()
	skip, limit, err := pageParams(r, defaultLimit, maxLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	filter := models.AdminActionFilter{
		ActionType: r.URL.Query().Get("action_type"),
		Skip:       skip,
		Limit:      limit,
	}
	if raw := r.URL.Query().Get("admin_user_id"); raw != "" {
		adminID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			rw.BadRequest("admin_user_id must be an integer")
			return
		}
		filter.AdminUserID = adminID
	}

	actions, err := h.db.ListAdminActions(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(actions, &PaginationMeta{
		Count:   len(actions),
		Skip:    skip,
		Limit:   limit,
		HasMore: len(actions) == limit,
	})
}
