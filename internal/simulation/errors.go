// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package simulation

import "errors"

// Sentinel errors returned by the Tracker. Callers test them with errors.Is;
// storage failures wrap both ErrStorage and the underlying cause.
var (
	ErrNotFound      = errors.New("simulation not found")
	ErrAlreadyActive = errors.New("simulation already active")
	ErrInvalidInput  = errors.New("invalid simulation input")
	ErrStorage       = errors.New("simulation storage error")
	ErrClosed        = errors.New("simulation tracker is shut down")
)

// resultLabel maps an operation outcome to the metrics result label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyActive):
		return "conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "storage_error"
	}
}
