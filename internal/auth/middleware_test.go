// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func okHandler(t *testing.T, saw **AuthSubject) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*saw = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		cookie  string
		want    string
		wantErr error
	}{
		{"bearer", "Bearer abc", "", "abc", nil},
		{"lowercase scheme", "bearer abc", "", "abc", nil},
		{"cookie", "", "xyz", "xyz", nil},
		{"header wins", "Bearer abc", "xyz", "abc", nil},
		{"missing", "", "", "", ErrNoCredentials},
		{"basic scheme", "Basic abc", "", "", ErrInvalidToken},
		{"no token", "Bearer ", "", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			got, err := ExtractToken(r)
			if !errors.Is(err, tt.wantErr) || got != tt.want {
				t.Errorf("ExtractToken() = %q, %v; want %q, %v", got, err, tt.want, tt.wantErr)
			}
		})
	}
}

func TestMiddleware_Authenticate(t *testing.T) {
	svc, users := testService(t)
	u, tok := registerAndLogin(t, svc, "jack")
	mw := NewMiddleware(svc, 0, 0, nil)
	t.Cleanup(mw.Close)

	var saw *AuthSubject
	h := mw.Authenticate(okHandler(t, &saw))

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if saw == nil || saw.UserID != u.ID {
		t.Fatalf("subject in context = %+v", saw)
	}

	r = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok.AccessToken})
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Errorf("cookie auth status = %d", w.Code)
	}

	users.setActive(u.ID, false)
	r = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("disabled status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["code"] != "UNAUTHORIZED" || body["message"] != "User account is disabled" {
		t.Errorf("body = %v", body)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Error("missing WWW-Authenticate header")
	}
}

func TestMiddleware_RejectsMissingAndBadTokens(t *testing.T) {
	svc, _ := testService(t)
	var calls []int
	mw := NewMiddleware(svc, 0, 0, func(w http.ResponseWriter, _ *http.Request, status int, _, _ string) {
		calls = append(calls, status)
		w.WriteHeader(status)
	})

	var saw *AuthSubject
	h := mw.Authenticate(okHandler(t, &saw))
	for _, header := range []string{"", "Bearer garbage", "Token abc"} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%q: status = %d", header, w.Code)
		}
	}
	if len(calls) != 3 || saw != nil {
		t.Errorf("error writer calls = %v, handler saw %+v", calls, saw)
	}
}

func TestMiddleware_RateLimitsPerSubject(t *testing.T) {
	svc, _ := testService(t)
	_, first := registerAndLogin(t, svc, "kim")
	_, second := registerAndLogin(t, svc, "lee")
	mw := NewMiddleware(svc, 2, time.Minute, nil)
	t.Cleanup(mw.Close)

	var saw *AuthSubject
	h := mw.Authenticate(okHandler(t, &saw))
	do := func(token string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	if do(first.AccessToken) != http.StatusNoContent || do(first.AccessToken) != http.StatusNoContent {
		t.Fatal("requests within the burst were rejected")
	}
	if code := do(first.AccessToken); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := do(second.AccessToken); code != http.StatusNoContent {
		t.Errorf("other subject status = %d, want 204", code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	t.Cleanup(rl.Stop)

	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("burst of one not enforced")
	}
	rl.Allow("b")
	rl.cleanup(time.Now().Add(time.Second))
	if rl.Len() != 0 {
		t.Errorf("Len() = %d after cleanup", rl.Len())
	}
	if rl.retryAfter() != time.Minute {
		t.Errorf("retryAfter() = %v", rl.retryAfter())
	}
	rl.Stop()
}
