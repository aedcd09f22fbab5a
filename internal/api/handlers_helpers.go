// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/models"
	"github.com/tomtom215/mediarec/internal/validation"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// decodeJSON reads a JSON object from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooBig
		}
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	return nil
}

// decodeAndValidate decodes the body into v and validates it, writing the
// error response itself. It reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := decodeJSON(w, r, v); err != nil {
		respondBodyError(w, r, err)
		return false
	}
	return validateRequest(w, r, v)
}

// validateRequest validates a struct using go-playground/validator and
// writes a 422 VALIDATION_ERROR when it fails.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return true
	}
	apiErr := validationErr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
	return false
}

// getIntParam extracts an integer query parameter with a default value.
// A malformed value is reported as an error rather than defaulted.
func getIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return intValue, nil
}

// pageParams reads skip and limit. limit must lie in 1..maxLimit.
func pageParams(r *http.Request, defaultLimit, maxLimit int) (skip, limit int, err error) {
	if skip, err = getIntParam(r, "skip", 0); err != nil {
		return 0, 0, err
	}
	if skip < 0 {
		return 0, 0, errors.New("skip must be greater than or equal to 0")
	}
	if limit, err = getIntParam(r, "limit", defaultLimit); err != nil {
		return 0, 0, err
	}
	if limit < 1 || limit > maxLimit {
		return 0, 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return skip, limit, nil
}

// parseID reads a positive int64 path parameter.
func parseID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return id, nil
}

// contentTypeParam parses an optional content_type query parameter.
func contentTypeParam(r *http.Request) (models.ContentType, error) {
	raw := r.URL.Query().Get("content_type")
	if raw == "" {
		return "", nil
	}
	ct, ok := models.ParseContentType(raw)
	if !ok {
		return "", errors.New("content_type must be one of: book, movie, game")
	}
	return ct, nil
}

// pagination builds page metadata for a list response.
func pagination(total int64, count, skip, limit int) *PaginationMeta {
	return &PaginationMeta{
		Total:   total,
		Count:   count,
		Skip:    skip,
		Limit:   limit,
		HasMore: int64(skip+count) < total,
	}
}

// subject returns the authenticated caller. Routes that call it sit behind
// auth.Middleware, so a nil subject is a wiring error.
func subject(r *http.Request) *auth.AuthSubject {
	return auth.SubjectFromContext(r.Context())
}

// clientIP is the remote address after chi's RealIP rewrite, without port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
