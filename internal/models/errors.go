// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package models

import "errors"

// Shared sentinels so packages that only see these models (the tracker, the
// recommender) can test storage outcomes without importing the database.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
