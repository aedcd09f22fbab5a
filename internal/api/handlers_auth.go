// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"mime"
	"net/http"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/models"
)

// PreferencesResponse is the body of a successful preferences update.
type PreferencesResponse struct {
	Message     string             `json:"message"`
	Preferences models.Preferences `json:"preferences"`
}

// Register creates an account with the user role.
//
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Account details"
// @Success 201 {object} APIResponse{data=models.User}
// @Failure 400 {object} APIResponse "Username or email already registered"
// @Failure 422 {object} APIResponse "Validation failed"
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), &req, clientIP(r))
	if err != nil {
		respondAuthError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(user)
}

// Login exchanges credentials for a bearer token. Both a JSON body and an
// OAuth2 password form are accepted.
//
// @Summary Authenticate user
// @Tags Auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} APIResponse{data=models.TokenResponse}
// @Failure 401 {object} APIResponse "Invalid credentials or disabled account"
// @Failure 422 {object} APIResponse "Validation failed"
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if isFormRequest(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			NewResponseWriter(w, r).BadRequest("Invalid form body")
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if !validateRequest(w, r, &req) {
			return
		}
	} else if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), &req, clientIP(r))
	if err != nil {
		respondAuthError(w, r, err)
		return
	}
	WriteSuccess(w, r, token)
}

func isFormRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

// Me returns the caller's account.
//
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=models.User}
// @Failure 401 {object} APIResponse
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.db.GetUserByID(r.Context(), subject(r).UserID)
	if err != nil {
		respondDBError(w, r, err, "User not found")
		return
	}
	WriteSuccess(w, r, user)
}

// UpdatePreferences replaces the caller's recommendation preferences.
//
// @Summary Update preferences
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Preferences true "Popularity and newness, 0..100"
// @Success 200 {object} APIResponse{data=PreferencesResponse}
// @Failure 422 {object} APIResponse "Validation failed"
// @Router /api/v1/auth/preferences [put]
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if !decodeAndValidate(w, r, &prefs) {
		return
	}

	userID := subject(r).UserID
	if _, err := h.db.UpdatePreferences(r.Context(), userID, prefs); err != nil {
		respondDBError(w, r, err, "User not found")
		return
	}
	if h.engine != nil {
		h.engine.InvalidateUser(userID)
	}
	WriteSuccess(w, r, PreferencesResponse{Message: "Preferences updated successfully", Preferences: prefs})
}

// Logout revokes the caller's token.
//
// @Summary Log out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=MessageResponse}
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), subject(r), clientIP(r)); err != nil {
		logging.CtxError(r.Context()).Err(err).Msg("Failed to revoke token")
		NewResponseWriter(w, r).InternalError("Logout failed")
		return
	}
	WriteSuccess(w, r, MessageResponse{Message: "Successfully logged out"})
}
