// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/authz"
	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/models"
	"github.com/tomtom215/mediarec/internal/recommend"
	"github.com/tomtom215/mediarec/internal/simulation"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

// testDBSemaphore serializes DuckDB setup across the package's tests.
var testDBSemaphore = make(chan struct{}, 1)

type testServer struct {
	t       *testing.T
	handler http.Handler
	db      *database.DB
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

// newTestServer wires the full router over a seeded in-memory database.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Seed(context.Background(), auth.Hasher(bcrypt.MinCost)); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
		},
		API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	revoked, err := auth.OpenRevocationList("")
	if err != nil {
		t.Fatalf("OpenRevocationList() error = %v", err)
	}
	t.Cleanup(func() { _ = revoked.Close() })

	authSvc := auth.NewService(db, jwtManager, revoked, bcrypt.MinCost)
	authn := auth.NewMiddleware(authSvc, 10000, time.Minute, WriteError)
	t.Cleanup(authn.Close)

	enforcer, err := authz.NewEnforcer(&config.CasbinConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Close)

	engine, err := recommend.NewEngine(db, recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	tracker := simulation.NewTracker(db, db, simulation.DefaultConfig(), simulation.WithRand(simulation.NewRand(1)))

	handler := NewHandler(Deps{
		Config:  cfg,
		DB:      db,
		Tracker: tracker,
		Engine:  engine,
		Auth:    authSvc,
		Version: "test",
	})
	router := NewRouter(handler, authn, authz.NewMiddleware(enforcer, WriteError), nil)

	return &testServer{t: t, handler: router.SetupChi(), db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			s.t.Fatalf("decode %s %s response: %v (body %q)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec, env := s.do(http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: username, Password: password})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}
	var tok models.TokenResponse
	decodeData(s.t, env, &tok)
	if tok.AccessToken == "" {
		s.t.Fatalf("login %s: empty access token", username)
	}
	return tok.AccessToken
}

func (s *testServer) registerAndLogin(username string) string {
	s.t.Helper()
	rec, _ := s.do(http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status = %d, body = %s", username, rec.Code, rec.Body.String())
	}
	return s.login(username, "secret123")
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func wantErrorCode(t *testing.T, env envelope, code string) {
	t.Helper()
	if env.Success {
		t.Fatal("success = true, want false")
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(http.MethodGet, "/", "", nil)
	wantStatus(t, rec, http.StatusOK)
	var info ServiceInfo
	decodeData(t, env, &info)
	if info.Version != "test" || info.Docs == "" {
		t.Errorf("service info = %+v", info)
	}

	rec, env = s.do(http.MethodGet, "/health", "", nil)
	wantStatus(t, rec, http.StatusOK)
	var health HealthStatus
	decodeData(t, env, &health)
	if health.Status != "healthy" || !health.DatabaseConnected {
		t.Errorf("health = %+v, want healthy with database", health)
	}
	if health.EventBus != "disabled" {
		t.Errorf("EventBus = %q, want disabled", health.EventBus)
	}
	if env.Meta == nil || env.Meta.RequestID == "" {
		t.Error("meta.request_id missing")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	rec, env := s.do(http.MethodGet, "/api/v1/nope", "", nil)
	wantStatus(t, rec, http.StatusNotFound)
	wantErrorCode(t, env, ErrCodeNotFound)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	token := s.registerAndLogin("reader")

	rec, env := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var me models.User
	decodeData(t, env, &me)
	if me.Username != "reader" || me.RoleName != models.RoleUser {
		t.Errorf("me = %+v, want reader with user role", me)
	}

	t.Run("duplicate username", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
			Username: "reader", Email: "other@example.com", Password: "secret123",
		})
		wantStatus(t, rec, http.StatusBadRequest)
		wantErrorCode(t, env, ErrCodeConflict)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: "reader", Password: "wrong-password"})
		wantStatus(t, rec, http.StatusUnauthorized)
		wantErrorCode(t, env, ErrCodeUnauthorized)
	})

	t.Run("short password", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
			Username: "shorty", Email: "shorty@example.com", Password: "123",
		})
		wantStatus(t, rec, http.StatusUnprocessableEntity)
		wantErrorCode(t, env, ErrCodeValidationFailed)
	})

	t.Run("form login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("username=reader&password=secret123"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		wantStatus(t, rec, http.StatusOK)
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")

	rec, _ := s.do(http.MethodPost, "/api/v1/auth/logout", token, nil)
	wantStatus(t, rec, http.StatusOK)

	rec, env := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	wantStatus(t, rec, http.StatusUnauthorized)
	wantErrorCode(t, env, ErrCodeUnauthorized)
}

func TestAuthenticationRequired(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/content/books", "/api/v1/admin/users"} {
		rec, env := s.do(http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
			continue
		}
		wantErrorCode(t, env, ErrCodeUnauthorized)
	}

	rec, _ := s.do(http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	wantStatus(t, rec, http.StatusUnauthorized)
}

func TestListContent(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")

	rec, env := s.do(http.MethodGet, "/api/v1/content/books?limit=2", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var books []models.Content
	decodeData(t, env, &books)
	if len(books) != 2 {
		t.Fatalf("len(books) = %d, want 2", len(books))
	}
	p := env.Meta.Pagination
	if p == nil || p.Total != 5 || !p.HasMore {
		t.Errorf("pagination = %+v, want total 5 with more", p)
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"singular kind", "/api/v1/content/book", http.StatusOK},
		{"unknown kind", "/api/v1/content/music", http.StatusNotFound},
		{"limit too large", "/api/v1/content/movies?limit=1000", http.StatusBadRequest},
		{"negative skip", "/api/v1/content/games?skip=-1", http.StatusBadRequest},
		{"bad year", "/api/v1/content/books?year=soon", http.StatusBadRequest},
		{"missing item", "/api/v1/content/books/99999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(http.MethodGet, tt.path, token, nil)
			wantStatus(t, rec, tt.want)
		})
	}
}

func TestSearchContent(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")

	rec, env := s.do(http.MethodGet, "/api/v1/content/search?query=dune", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var res SearchResults
	decodeData(t, env, &res)
	if len(res.Books) != 1 || res.Books[0].Title != "Dune" {
		t.Errorf("books = %+v, want Dune", res.Books)
	}

	rec, env = s.do(http.MethodGet, "/api/v1/content/search?query=d", token, nil)
	wantStatus(t, rec, http.StatusBadRequest)
	wantErrorCode(t, env, ErrCodeBadRequest)
}

func TestContentWritesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	input := models.ContentInput{Title: "Solaris", Creator: "Stanislaw Lem", Genre: "Science fiction", Year: 1961, PopularityScore: 8.1}

	userToken := s.login("testuser", "test123")
	rec, env := s.do(http.MethodPost, "/api/v1/content/books", userToken, input)
	wantStatus(t, rec, http.StatusForbidden)
	wantErrorCode(t, env, ErrCodeForbidden)

	adminToken := s.login("admin", "admin123")
	rec, env = s.do(http.MethodPost, "/api/v1/content/books", adminToken, input)
	wantStatus(t, rec, http.StatusCreated)
	var created models.Content
	decodeData(t, env, &created)
	if created.Title != "Solaris" || created.ID == 0 {
		t.Fatalf("created = %+v", created)
	}

	rec, _ = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/content/books/%d", created.ID), adminToken, nil)
	wantStatus(t, rec, http.StatusOK)

	actions, err := s.db.ListAdminActions(context.Background(), models.AdminActionFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListAdminActions() error = %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(actions))
	}
	if actions[0].ActionType != models.ActionContentDelete {
		t.Errorf("newest action = %s, want %s", actions[0].ActionType, models.ActionContentDelete)
	}

	t.Run("invalid input", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, "/api/v1/content/books", adminToken, models.ContentInput{PopularityScore: 11})
		wantStatus(t, rec, http.StatusUnprocessableEntity)
		wantErrorCode(t, env, ErrCodeValidationFailed)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/content/books", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		wantStatus(t, rec, http.StatusBadRequest)
	})
}

func firstBookID(t *testing.T, s *testServer, token string) int64 {
	t.Helper()
	rec, env := s.do(http.MethodGet, "/api/v1/content/books?limit=1", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var books []models.Content
	decodeData(t, env, &books)
	if len(books) == 0 {
		t.Fatal("no seeded books")
	}
	return books[0].ID
}

func TestSimulationLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")
	bookID := firstBookID(t, s, token)
	start := StartSimulationRequest{ContentType: models.ContentBook, ContentID: bookID}

	rec, env := s.do(http.MethodPost, "/api/v1/simulation/start", token, start)
	wantStatus(t, rec, http.StatusOK)
	var started simulation.StartResult
	decodeData(t, env, &started)
	if started.SessionKey == "" || started.InteractionID == 0 {
		t.Fatalf("start result = %+v", started)
	}

	rec, env = s.do(http.MethodPost, "/api/v1/simulation/start", token, start)
	wantStatus(t, rec, http.StatusConflict)
	wantErrorCode(t, env, ErrCodeConflict)

	rec, env = s.do(http.MethodGet, "/api/v1/simulation/active", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var active ActiveSimulations
	decodeData(t, env, &active)
	if len(active.ActiveSimulations) != 1 || active.ActiveSimulations[0].SessionKey != started.SessionKey {
		t.Errorf("active = %+v, want the started session", active)
	}

	t.Run("other user cannot see session", func(t *testing.T) {
		other := s.registerAndLogin("intruder")
		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/simulation/progress/" + started.SessionKey},
			{http.MethodPost, "/api/v1/simulation/cancel/" + started.SessionKey},
		} {
			rec, env := s.do(tc.method, tc.path, other, nil)
			wantStatus(t, rec, http.StatusNotFound)
			wantErrorCode(t, env, ErrCodeNotFound)
		}
	})

	rec, _ = s.do(http.MethodGet, "/api/v1/simulation/progress/"+started.SessionKey, token, nil)
	wantStatus(t, rec, http.StatusOK)

	rec, _ = s.do(http.MethodPost, "/api/v1/simulation/complete/"+started.SessionKey, token, CompleteSimulationRequest{Rating: 11})
	wantStatus(t, rec, http.StatusBadRequest)

	rec, _ = s.do(http.MethodPost, "/api/v1/simulation/cancel/"+started.SessionKey, token, nil)
	wantStatus(t, rec, http.StatusOK)

	rec, _ = s.do(http.MethodGet, "/api/v1/simulation/progress/"+started.SessionKey, token, nil)
	wantStatus(t, rec, http.StatusNotFound)

	rec, env = s.do(http.MethodGet, "/api/v1/interactions?interaction_type=dropped", token, nil)
	wantStatus(t, rec, http.StatusOK)
	var dropped []models.InteractionWithContent
	decodeData(t, env, &dropped)
	if len(dropped) != 1 {
		t.Errorf("len(dropped) = %d, want 1", len(dropped))
	}
}

func TestStartSimulation_Validation(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")

	tests := []struct {
		name string
		body StartSimulationRequest
		want int
	}{
		{"unknown type", StartSimulationRequest{ContentType: "music", ContentID: 1}, http.StatusUnprocessableEntity},
		{"missing id", StartSimulationRequest{ContentType: models.ContentBook}, http.StatusUnprocessableEntity},
		{"missing item", StartSimulationRequest{ContentType: models.ContentMovie, ContentID: 99999}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(http.MethodPost, "/api/v1/simulation/start", token, tt.body)
			wantStatus(t, rec, tt.want)
		})
	}
}

func TestSimulationEvents_NoHub(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")
	rec, env := s.do(http.MethodGet, "/api/v1/simulation/ws", token, nil)
	wantStatus(t, rec, http.StatusServiceUnavailable)
	wantErrorCode(t, env, ErrCodeServiceUnavailable)
}

func TestRecommendations(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")

	rec, env := s.do(http.MethodGet, "/api/v1/recommendations?content_type=book&limit=3", token, nil)
	wantStatus(t, rec, http.StatusOK)
	if !env.Success {
		t.Error("success = false")
	}

	rec, _ = s.do(http.MethodGet, "/api/v1/recommendations?content_type=music", token, nil)
	wantStatus(t, rec, http.StatusBadRequest)

	rec, _ = s.do(http.MethodGet, "/api/v1/recommendations/trending?period=decade", token, nil)
	wantStatus(t, rec, http.StatusBadRequest)

	rec, _ = s.do(http.MethodGet, "/api/v1/recommendations/similar/book/99999", token, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestUpdatePreferences(t *testing.T) {
	s := newTestServer(t)
	token := s.login("testuser", "test123")

	rec, env := s.do(http.MethodPut, "/api/v1/auth/preferences", token, models.Preferences{Popularity: 10, Newness: 90})
	wantStatus(t, rec, http.StatusOK)
	var res PreferencesResponse
	decodeData(t, env, &res)
	if res.Preferences.Newness != 90 {
		t.Errorf("preferences = %+v", res.Preferences)
	}

	rec, env = s.do(http.MethodPut, "/api/v1/auth/preferences", token, models.Preferences{Popularity: 101})
	wantStatus(t, rec, http.StatusUnprocessableEntity)
	wantErrorCode(t, env, ErrCodeValidationFailed)
}

func TestAdminUsers(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login("admin", "admin123")
	userToken := s.registerAndLogin("victim")

	rec, env := s.do(http.MethodGet, "/api/v1/admin/users", userToken, nil)
	wantStatus(t, rec, http.StatusForbidden)
	wantErrorCode(t, env, ErrCodeForbidden)

	rec, env = s.do(http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	wantStatus(t, rec, http.StatusOK)
	var users []models.User
	decodeData(t, env, &users)
	var admin, victim models.User
	for _, u := range users {
		switch u.Username {
		case "admin":
			admin = u
		case "victim":
			victim = u
		}
	}
	if admin.ID == 0 || victim.ID == 0 {
		t.Fatalf("users = %+v, want admin and victim", users)
	}

	t.Run("cannot block self", func(t *testing.T) {
		rec, env := s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/block", admin.ID), adminToken, nil)
		wantStatus(t, rec, http.StatusBadRequest)
		wantErrorCode(t, env, ErrCodeBadRequest)
	})

	t.Run("block then unblock", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/block", victim.ID), adminToken, nil)
		wantStatus(t, rec, http.StatusOK)

		rec, _ = s.do(http.MethodGet, "/api/v1/auth/me", userToken, nil)
		wantStatus(t, rec, http.StatusUnauthorized)

		rec, env := s.do(http.MethodPost, "/api/v1/auth/login", "", models.LoginRequest{Username: "victim", Password: "secret123"})
		wantStatus(t, rec, http.StatusUnauthorized)
		if env.Error == nil || env.Error.Message != "User account is disabled" {
			t.Errorf("error = %+v, want disabled account", env.Error)
		}

		rec, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/users/%d/unblock", victim.ID), adminToken, nil)
		wantStatus(t, rec, http.StatusOK)
		rec, _ = s.do(http.MethodGet, "/api/v1/auth/me", userToken, nil)
		wantStatus(t, rec, http.StatusOK)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, _ := s.do(http.MethodPost, "/api/v1/admin/users/99999/block", adminToken, nil)
		wantStatus(t, rec, http.StatusNotFound)
	})

	t.Run("audit trail", func(t *testing.T) {
		rec, env := s.do(http.MethodGet, "/api/v1/admin/actions?action_type="+models.ActionUserBlock, adminToken, nil)
		wantStatus(t, rec, http.StatusOK)
		var actions []models.AdminAction
		decodeData(t, env, &actions)
		if len(actions) != 1 || actions[0].TargetID != victim.ID {
			t.Errorf("actions = %+v, want one block of %d", actions, victim.ID)
		}
	})
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/content/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("Access-Control-Allow-Origin missing on preflight")
	}
}
