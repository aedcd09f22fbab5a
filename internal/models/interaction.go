// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
interaction.go - Interaction Ledger Models

An Interaction row is created with type "started" when a simulation session
begins and is updated in place to "completed" or "dropped" when it ends.
The ledger is the only durable trace of a session.
*/

package models

import "time"

// InteractionType is the lifecycle state recorded in the ledger.
type InteractionType string

const (
	InteractionStarted   InteractionType = "started"
	InteractionCompleted InteractionType = "completed"
	InteractionDropped   InteractionType = "dropped"
	// InteractionRated is accepted by list filters but never written by the tracker.
	InteractionRated InteractionType = "rated"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionStarted, InteractionCompleted, InteractionDropped, InteractionRated:
		return true
	}
	return false
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 10
)

// Interaction is one row of user_interactions.
type Interaction struct {
	ID                 int64           `json:"interaction_id"`
	UserID             int64           `json:"user_id"`
	ContentType        ContentType     `json:"content_type"`
	ContentID          int64           `json:"content_id"`
	Type               InteractionType `json:"interaction_type"`
	Rating             *int            `json:"rating"`
	ProgressPercent    int             `json:"progress_percent"`
	StartDate          time.Time       `json:"start_date"`
	CompletionDate     *time.Time      `json:"completion_date"`
	SimulationDuration *int            `json:"simulation_duration"`
	TagsExtracted      []string        `json:"tags_extracted"`
}

// InteractionUpdate is a partial update. Nil fields are left untouched.
// AddTags is unioned into tags_extracted.
type InteractionUpdate struct {
	Type               *InteractionType
	Rating             *int
	ProgressPercent    *int
	CompletionDate     *time.Time
	SimulationDuration *int
	AddTags            []string
}

// Empty reports whether the update would change nothing.
func (u *InteractionUpdate) Empty() bool {
	return u.Type == nil && u.Rating == nil && u.ProgressPercent == nil &&
		u.CompletionDate == nil && u.SimulationDuration == nil && len(u.AddTags) == 0
}

// InteractionFilter narrows a user's interaction history.
type InteractionFilter struct {
	ContentType     ContentType
	InteractionType InteractionType
	Skip            int
	Limit           int
}

// InteractionWithContent is a history row joined with the item title.
type InteractionWithContent struct {
	Interaction
	ContentTitle string `json:"content_title"`
}

// InteractionStats summarizes a user's ledger.
type InteractionStats struct {
	TotalInteractions int64            `json:"total_interactions"`
	Completed         int64            `json:"completed"`
	Dropped           int64            `json:"dropped"`
	AverageRating     float64          `json:"average_rating"`
	TotalTimeSpent    int64            `json:"total_time_spent"`
	ByContentType     map[string]int64 `json:"by_content_type"`
	RecentActivity    int64            `json:"recent_activity"`
}

// LibraryStatus selects a library bucket.
type LibraryStatus string

const (
	LibraryAll       LibraryStatus = "all"
	LibraryReading   LibraryStatus = "reading"
	LibraryCompleted LibraryStatus = "completed"
	LibraryDropped   LibraryStatus = "dropped"
	LibraryPlanned   LibraryStatus = "planned"
)

// ParseLibraryStatus defaults an empty value to LibraryAll.
func ParseLibraryStatus(s string) (LibraryStatus, bool) {
	switch LibraryStatus(s) {
	case "", LibraryAll:
		return LibraryAll, true
	case LibraryReading, LibraryCompleted, LibraryDropped, LibraryPlanned:
		return LibraryStatus(s), true
	}
	return "", false
}

// LibraryItem is one entry of the grouped library view.
type LibraryItem struct {
	InteractionID  int64           `json:"interaction_id"`
	ContentType    ContentType     `json:"content_type"`
	ContentID      int64           `json:"content_id"`
	Title          string          `json:"title"`
	Creator        string          `json:"creator"`
	Status         InteractionType `json:"status"`
	Rating         *int            `json:"rating"`
	Progress       int             `json:"progress"`
	StartDate      time.Time       `json:"start_date"`
	CompletionDate *time.Time      `json:"completion_date"`
}

// Library groups a user's items by ledger state. Reading holds started rows.
// Planned is kept for clients but stays empty: nothing writes a planned row.
type Library struct {
	Reading   []LibraryItem `json:"reading"`
	Completed []LibraryItem `json:"completed"`
	Dropped   []LibraryItem `json:"dropped"`
	Planned   []LibraryItem `json:"planned"`
}

// TrendingItem is a catalog item ranked by recent interaction count.
type TrendingItem struct {
	Content      Content `json:"content"`
	Interactions int64   `json:"interactions"`
}
