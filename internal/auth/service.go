// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/models"
)

// UserStore is the account storage used by the identity gate.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Service registers users, issues tokens and validates them.
type Service struct {
	users      UserStore
	jwt        *JWTManager
	revoked    RevocationList
	bcryptCost int
	security   *logging.SecurityLogger

	dummyOnce sync.Once
	dummy     string
}

// NewService wires the identity gate. revoked may be nil, which disables
// logout.
func NewService(users UserStore, jwt *JWTManager, revoked RevocationList, bcryptCost int) *Service {
	return &Service{
		users:      users,
		jwt:        jwt,
		revoked:    revoked,
		bcryptCost: bcryptCost,
		security:   logging.NewSecurityLogger(),
	}
}

// Register creates an account with the user role and default preferences.
// A taken username or email returns models.ErrConflict.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest, ip string) (*models.User, error) {
	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u, err := s.users.CreateUser(ctx, &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		RoleID:       models.RoleUserID,
		Preferences:  models.DefaultPreferences(),
	})
	if err != nil {
		return nil, err
	}
	s.security.LogRegistration(u.ID, u.Username, u.Email, ip)
	return u, nil
}

// Login checks credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest, ip string) (*models.TokenResponse, error) {
	u, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, models.ErrNotFound) {
		CheckPassword(s.dummyHash(), req.Password)
		s.loginFailed(req.Username, ip, "unknown_user", "bad_credentials")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		s.loginFailed(req.Username, ip, "bad_password", "bad_credentials")
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		s.loginFailed(req.Username, ip, "disabled", "disabled")
		return nil, ErrAccountDisabled
	}

	token, _, err := s.jwt.GenerateToken(u.ID, u.Username, u.RoleName)
	if err != nil {
		LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	LoginAttempts.WithLabelValues("success").Inc()
	s.security.LogLoginSuccess(u.ID, u.Username, ip)

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwt.Timeout().Seconds()),
		User:        models.UserIdentity{UserID: u.ID, Username: u.Username, Role: u.RoleName},
	}, nil
}

func (s *Service) loginFailed(username, ip, reason, outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
	s.security.LogLoginFailure(username, ip, reason)
}

// Authenticate validates a raw token and checks the account is still
// active. The returned subject carries the role stored in the database.
func (s *Service) Authenticate(ctx context.Context, token string) (*AuthSubject, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}

	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}

	subject := subjectFromClaims(claims, userID)
	subject.Username = u.Username
	subject.Role = u.RoleName
	return subject, nil
}

// Logout revokes the subject's token until it would have expired.
func (s *Service) Logout(ctx context.Context, subject *AuthSubject, ip string) error {
	if subject == nil || subject.TokenID == "" {
		return ErrNoCredentials
	}
	if s.revoked == nil {
		return nil
	}
	err := s.revoked.Revoke(ctx, RevokedToken{
		JTI:       subject.TokenID,
		UserID:    subject.UserID,
		ExpiresAt: subject.ExpiresAt,
	})
	if err != nil {
		return err
	}
	s.security.LogTokenRevoked(subject.UserID, subject.TokenID, ip)
	return nil
}

// dummyHash is compared against on unknown usernames so the response takes
// as long as a wrong password.
func (s *Service) dummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummy, _ = HashPassword("mediarec-dummy-password", s.bcryptCost)
	})
	return s.dummy
}
