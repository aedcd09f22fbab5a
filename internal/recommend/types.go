// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/mediarec/internal/models"
)

var (
	// ErrNotFound is returned when the source item of a similarity query
	// does not exist.
	ErrNotFound = models.ErrNotFound

	// ErrInvalidInput covers unknown content types, periods and limits.
	ErrInvalidInput = errors.New("invalid input")
)

// Request selects what Recommend ranks. An empty ContentType means all
// types; a zero Limit means the configured default.
type Request struct {
	UserID      int64
	ContentType models.ContentType
	Limit       int
}

// Recommendation is one ranked catalog item.
type Recommendation struct {
	Type       models.ContentType `json:"type"`
	Content    models.Content     `json:"content"`
	MatchScore float64            `json:"match_score"`
	Reason     string             `json:"recommendation_reason"`
}

// Result is the body of GET /recommendations.
type Result struct {
	Recommendations []Recommendation   `json:"recommendations"`
	UserPreferences models.Preferences `json:"user_preferences"`
}

// SimilarItem is a catalog item ranked by tag overlap with a source item.
type SimilarItem struct {
	Content    models.Content `json:"content"`
	Similarity float64        `json:"similarity"`
}

// SimilarResult is the body of GET /recommendations/similar/{type}/{id}.
type SimilarResult struct {
	Original models.Content `json:"original"`
	Similar  []SimilarItem  `json:"similar"`
}

// Period is a trending window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts the four window names. Empty means week.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodWeek, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return Period(s), nil
	}
	return "", fmt.Errorf("%w: period must be one of day, week, month, year", ErrInvalidInput)
}

// Duration is the look-back span of the window.
func (p Period) Duration() time.Duration {
	switch p {
	case PeriodDay:
		return 24 * time.Hour
	case PeriodMonth:
		return 30 * 24 * time.Hour
	case PeriodYear:
		return 365 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// TrendingResult is the body of GET /recommendations/trending.
type TrendingResult struct {
	Trending []models.TrendingItem `json:"trending"`
	Period   Period                `json:"period"`
}

// FeedbackMessage is returned for every accepted feedback post.
const FeedbackMessage = "Thanks for your feedback!"

// FeedbackResult echoes an accepted feedback post.
type FeedbackResult struct {
	Message     string             `json:"message"`
	ContentType models.ContentType `json:"content_type"`
	ContentID   int64              `json:"content_id"`
	Helpful     bool               `json:"helpful"`
}
