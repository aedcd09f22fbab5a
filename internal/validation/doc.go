// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package validation validates request structs with go-playground/validator.
//
// One validator instance is shared by the process. It reports fields by
// their JSON names and adds a content_type tag accepting book, movie or game.
//
//	var req models.RegisterRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//		apiErr := verr.ToAPIError()
//		api.RespondError(w, r, http.StatusUnprocessableEntity, apiErr.Code, apiErr.Message, apiErr.Details)
//		return
//	}
//
// A single failed field produces its own message. Several failed fields are
// joined with "; " and listed under details.fields.
package validation
