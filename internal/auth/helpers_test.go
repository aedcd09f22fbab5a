// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/models"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func testJWTManager(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, SessionTimeout: timeout})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
	getErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[int64]*models.User{}}
}

func (m *memoryUsers) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, fmt.Errorf("%w: already registered", models.ErrConflict)
		}
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	cp.IsActive = true
	cp.RoleName = models.RoleUser
	if cp.RoleID == models.RoleAdminID {
		cp.RoleName = models.RoleAdmin
	}
	m.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memoryUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.byID {
		if strings.EqualFold(u.Username, username) {
			out := *u
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memoryUsers) setActive(id int64, active bool) {
	m.mu.Lock()
	m.byID[id].IsActive = active
	m.mu.Unlock()
}

func (m *memoryUsers) remove(id int64) {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
}

func testRevocations(t *testing.T) *BadgerRevocationList {
	t.Helper()
	l, err := OpenRevocationList("")
	if err != nil {
		t.Fatalf("OpenRevocationList() error = %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// testService uses bcrypt.MinCost to keep hashing fast.
func testService(t *testing.T) (*Service, *memoryUsers) {
	t.Helper()
	users := newMemoryUsers()
	return NewService(users, testJWTManager(t, time.Hour), testRevocations(t), bcrypt.MinCost), users
}

func registerAndLogin(t *testing.T, svc *Service, username string) (*models.User, *models.TokenResponse) {
	t.Helper()
	ctx := context.Background()
	u, err := svc.Register(ctx, &models.RegisterRequest{
		Username: username, Email: username + "@example.com", Password: "secret1",
	}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	tok, err := svc.Login(ctx, &models.LoginRequest{Username: username, Password: "secret1"}, "127.0.0.1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return u, tok
}
