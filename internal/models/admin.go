// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Admin action types written to admin_actions.
const (
	ActionContentCreate   = "content_create"
	ActionContentUpdate   = "content_update"
	ActionContentDelete   = "content_delete"
	ActionUserBlock       = "user_block"
	ActionUserUnblock     = "user_unblock"
	ActionPreferencesEdit = "preferences_update"
)

// AdminAction is one audit row.
type AdminAction struct {
	ID          int64           `json:"action_id"`
	AdminUserID int64           `json:"admin_user_id"`
	ActionType  string          `json:"action_type"`
	TargetTable string          `json:"target_table"`
	TargetID    int64           `json:"target_id"`
	OldValues   json.RawMessage `json:"old_values,omitempty"`
	NewValues   json.RawMessage `json:"new_values,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

// AdminActionFilter narrows the audit listing.
type AdminActionFilter struct {
	AdminUserID int64
	ActionType  string
	Skip        int
	Limit       int
}

// RecommendationFeedback records whether a recommendation helped.
type RecommendationFeedback struct {
	UserID      int64       `json:"user_id"`
	ContentType ContentType `json:"content_type" validate:"required,oneof=book movie game"`
	ContentID   int64       `json:"content_id" validate:"required,min=1"`
	Helpful     bool        `json:"helpful"`
	CreatedAt   time.Time   `json:"created_at"`
}
