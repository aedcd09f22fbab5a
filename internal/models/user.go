// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package models

import "time"

// Role names. They must match the subjects in internal/authz/policy.csv.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Role ids as seeded into the roles table.
const (
	RoleAdminID int64 = 1
	RoleUserID  int64 = 2
)

// ValidRoles contains all valid role names.
var ValidRoles = []string{RoleAdmin, RoleUser}

// Role is a row of the roles table. Permissions is informational; access
// decisions are made by the casbin policy.
type Role struct {
	ID          int64               `json:"role_id"`
	Name        string              `json:"role_name"`
	Permissions map[string][]string `json:"permissions"`
}

// Preferences steer the recommendation windows. Both values are 0..100.
type Preferences struct {
	Popularity int `json:"popularity" validate:"min=0,max=100"`
	Newness    int `json:"newness" validate:"min=0,max=100"`
}

// DefaultPreferences is applied to new accounts and to users whose stored
// preferences are missing.
func DefaultPreferences() Preferences {
	return Preferences{Popularity: 50, Newness: 50}
}

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           int64       `json:"user_id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	RoleID       int64       `json:"role_id"`
	RoleName     string      `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	Preferences  Preferences `json:"preferences"`
	IsActive     bool        `json:"is_active"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.RoleName == RoleAdmin
}

// RegisterRequest is the body of POST /auth/register. The role is always
// "user"; a client-supplied role_id is ignored.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserIdentity `json:"user"`
}

// UserIdentity is the short user description embedded in token responses.
type UserIdentity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
