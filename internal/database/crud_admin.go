// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/models"
)

// RecordAdminAction appends an audit row. oldValues and newValues are
// encoded as JSON; nil is stored as NULL.
func (db *DB) RecordAdminAction(ctx context.Context, adminID int64, actionType, targetTable string, targetID int64, oldValues, newValues any) (int64, error) {
	encode := func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
	oldJSON, err := encode(oldValues)
	if err != nil {
		return 0, fmt.Errorf("failed to encode old values: %w", err)
	}
	newJSON, err := encode(newValues)
	if err != nil {
		return 0, fmt.Errorf("failed to encode new values: %w", err)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO admin_actions (admin_user_id, action_type, target_table, target_id, old_values, new_values, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING action_id`,
		adminID, actionType, targetTable, targetID, oldJSON, newJSON, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record admin action: %w", err)
	}
	return id, nil
}

// ListAdminActions returns audit rows, newest first.
func (db *DB) ListAdminActions(ctx context.Context, f models.AdminActionFilter) ([]models.AdminAction, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if f.AdminUserID != 0 {
		conds = append(conds, "admin_user_id = ?")
		args = append(args, f.AdminUserID)
	}
	if f.ActionType != "" {
		conds = append(conds, "action_type = ?")
		args = append(args, f.ActionType)
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, f.Skip)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT action_id, admin_user_id, action_type, target_table, target_id, old_values, new_values, timestamp
		 FROM admin_actions`+where+` ORDER BY timestamp DESC, action_id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := []models.AdminAction{}
	for rows.Next() {
		var (
			a        models.AdminAction
			oldV, newV sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.AdminUserID, &a.ActionType, &a.TargetTable, &a.TargetID, &oldV, &newV, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan admin action: %w", err)
		}
		if oldV.Valid {
			a.OldValues = json.RawMessage(oldV.String)
		}
		if newV.Valid {
			a.NewValues = json.RawMessage(newV.String)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveFeedback records a recommendation thumbs up or down.
func (db *DB) SaveFeedback(ctx context.Context, fb *models.RecommendationFeedback) error {
	if err := checkType(fb.ContentType); err != nil {
		return err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	createdAt := fb.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO recommendation_feedback (user_id, content_type, content_id, helpful, created_at) VALUES (?, ?, ?, ?, ?)`,
		fb.UserID, string(fb.ContentType), fb.ContentID, fb.Helpful, createdAt); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// CountFeedback returns how many feedback rows a user has written.
func (db *DB) CountFeedback(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendation_feedback WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return n, nil
}
