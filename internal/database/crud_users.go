// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/models"
)

var defaultRoles = []models.Role{
	{
		ID:   models.RoleAdminID,
		Name: models.RoleAdmin,
		Permissions: map[string][]string{
			"content":   {"create", "read", "update", "delete"},
			"users":     {"read", "update", "block"},
			"analytics": {"read"},
		},
	},
	{
		ID:   models.RoleUserID,
		Name: models.RoleUser,
		Permissions: map[string][]string{
			"content":      {"read"},
			"interactions": {"create", "read", "update", "delete"},
			"profile":      {"read", "update"},
		},
	},
}

func (db *DB) ensureRoles(ctx context.Context) error {
	for _, r := range defaultRoles {
		perms, err := json.Marshal(r.Permissions)
		if err != nil {
			return fmt.Errorf("failed to encode permissions for %s: %w", r.Name, err)
		}
		if _, err := db.conn.ExecContext(ctx,
			`INSERT INTO roles (role_id, role_name, permissions) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			r.ID, r.Name, string(perms)); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
		}
	}
	return nil
}

// ListRoles returns all roles ordered by id.
func (db *DB) ListRoles(ctx context.Context) ([]models.Role, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT role_id, role_name, permissions FROM roles ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var roles []models.Role
	for rows.Next() {
		var (
			r     models.Role
			perms string
		)
		if err := rows.Scan(&r.ID, &r.Name, &perms); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		if err := json.Unmarshal([]byte(perms), &r.Permissions); err != nil {
			return nil, fmt.Errorf("malformed permissions for role %s: %w", r.Name, err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

const userSelect = `SELECT u.user_id, u.username, u.email, u.password_hash, u.role_id,
	COALESCE(r.role_name, 'user'), u.created_at, u.preferences, u.is_active
	FROM users u LEFT JOIN roles r ON r.role_id = u.role_id`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u     models.User
		prefs string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID,
		&u.RoleName, &u.CreatedAt, &prefs, &u.IsActive); err != nil {
		return nil, err
	}
	u.Preferences = decodePreferences(prefs)
	return &u, nil
}

func decodePreferences(raw string) models.Preferences {
	p := models.DefaultPreferences()
	if raw == "" {
		return p
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.DefaultPreferences()
	}
	return p
}

// CreateUser inserts an account. A taken username or email returns ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var taken string
	err := db.conn.QueryRowContext(ctx,
		`SELECT CASE WHEN username = ? THEN 'username' ELSE 'email' END FROM users WHERE username = ? OR email = ? LIMIT 1`,
		u.Username, u.Username, u.Email).Scan(&taken)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s already registered", ErrConflict, taken)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	prefs, err := json.Marshal(u.Preferences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	roleID := u.RoleID
	if roleID == 0 {
		roleID = models.RoleUserID
	}
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, role_id, created_at, preferences, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, true) RETURNING user_id`,
		u.Username, u.Email, u.PasswordHash, roleID, createdAt, string(prefs)).Scan(&id)
	if isUniqueConstraintError(err) {
		return nil, fmt.Errorf("%w: username or email already registered", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return db.GetUserByID(ctx, id)
}

// GetUserByID returns one account or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	u, err := scanUser(db.conn.QueryRowContext(ctx, userSelect+" WHERE u.user_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername returns one account or ErrNotFound.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	u, err := scanUser(db.conn.QueryRowContext(ctx, userSelect+" WHERE u.username = ?", username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return u, nil
}

// ListUsers returns a page of accounts ordered by id, and the total count.
func (db *DB) ListUsers(ctx context.Context, skip, limit int) ([]models.User, int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, userSelect+" ORDER BY u.user_id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// SetUserActive blocks or unblocks an account and returns the previous flag.
func (db *DB) SetUserActive(ctx context.Context, id int64, active bool) (bool, error) {
	u, err := db.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE user_id = ?`, active, id); err != nil {
		return u.IsActive, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return u.IsActive, nil
}

// UpdatePreferences stores new preferences and returns the previous ones.
func (db *DB) UpdatePreferences(ctx context.Context, id int64, prefs models.Preferences) (models.Preferences, error) {
	u, err := db.GetUserByID(ctx, id)
	if err != nil {
		return models.Preferences{}, err
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return u.Preferences, fmt.Errorf("failed to encode preferences: %w", err)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `UPDATE users SET preferences = ? WHERE user_id = ?`, string(data), id); err != nil {
		return u.Preferences, fmt.Errorf("failed to update preferences of user %d: %w", id, err)
	}
	return u.Preferences, nil
}

// GetPreferences returns a user's preferences, or the defaults when the
// user does not exist.
func (db *DB) GetPreferences(ctx context.Context, userID int64) (models.Preferences, error) {
	u, err := db.GetUserByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, err
	}
	return u.Preferences, nil
}
