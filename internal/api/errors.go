// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/recommend"
	"github.com/tomtom215/mediarec/internal/simulation"
)

var (
	errInvalidJSON = errors.New("invalid JSON body")
	errBodyTooBig  = errors.New("request body too large")
)

// respondTrackerError maps simulation tracker errors. notFound is the
// message for ErrNotFound, which means a missing session or catalog item
// depending on the operation.
func respondTrackerError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, simulation.ErrNotFound):
		rw.NotFound(notFound)
	case errors.Is(err, simulation.ErrAlreadyActive):
		rw.Conflict("Simulation already active for this content")
	case errors.Is(err, simulation.ErrInvalidInput):
		rw.BadRequest(err.Error())
	case errors.Is(err, simulation.ErrClosed):
		rw.ServiceUnavailable("Simulation tracker is shutting down")
	case errors.Is(err, simulation.ErrStorage):
		rw.DatabaseError(err)
	default:
		logging.CtxError(r.Context()).Err(err).Msg("Simulation tracker error")
		rw.InternalError("Simulation failed")
	}
}

// respondDBError maps database and recommendation errors.
func respondDBError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound(notFound)
	case errors.Is(err, database.ErrConflict):
		rw.Conflict(err.Error())
	case errors.Is(err, recommend.ErrInvalidInput):
		rw.BadRequest(err.Error())
	default:
		rw.DatabaseError(err)
	}
}

// respondAuthError maps auth service errors on the register and login routes.
func respondAuthError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, database.ErrConflict):
		rw.Error(http.StatusBadRequest, ErrCodeConflict, "Username or email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		rw.Unauthorized("Incorrect username or password")
	case errors.Is(err, auth.ErrAccountDisabled):
		rw.Unauthorized("User account is disabled")
	default:
		logging.CtxError(r.Context()).Err(err).Msg("Authentication error")
		rw.InternalError("Authentication failed")
	}
}

// respondBodyError reports a request body that could not be decoded.
func respondBodyError(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w, r)
	if errors.Is(err, errBodyTooBig) {
		rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		return
	}
	rw.BadRequest("Invalid JSON body")
}
