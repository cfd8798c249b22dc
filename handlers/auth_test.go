// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"testing"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/testutil"
)

func tokenCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	env := setupEnv(t)
	testutil.CreateTestUser(t, env.store, "Existing", "taken@example.com")

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid registration",
			body:           models.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "secret123"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "duplicate email",
			body:           models.RegisterRequest{Name: "Bob", Email: "taken@example.com", Password: "secret123"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "User already exists",
		},
		{
			name:           "short password",
			body:           models.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing name",
			body:           models.RegisterRequest{Email: "dan@example.com", Password: "secret123"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           nil,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/auth/register", tt.body, nil)
			w := serve(env.auth.Register, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusCreated {
				msg := decodeError(t, w)
				if tt.expectedError != "" && msg != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, msg)
				}
				return
			}

			cookie := tokenCookie(w.Result())
			var resp models.AuthResponse
			testutil.AssertJSON(t, w, &resp)

			if !resp.Success || resp.Token == "" {
				t.Fatalf("Expected success with token, got %+v", resp)
			}
			if resp.User.Email != "alice@example.com" || resp.User.ID == "" {
				t.Errorf("Unexpected user summary: %+v", resp.User)
			}
			if cookie == nil || cookie.Value != resp.Token || !cookie.HttpOnly {
				t.Errorf("Expected HttpOnly token cookie matching the token, got %+v", cookie)
			}
			if _, err := auth.ParseToken(resp.Token, []byte(env.cfg.JWTSecret)); err != nil {
				t.Errorf("Issued token does not verify: %v", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	env := setupEnv(t)
	user := testutil.CreateTestUser(t, env.store, "Alice", "alice@example.com")

	tests := []struct {
		name           string
		body           models.LoginRequest
		expectedStatus int
		expectedError  string
	}{
		{"valid credentials", models.LoginRequest{Email: "alice@example.com", Password: testutil.TestPassword}, http.StatusOK, ""},
		{"wrong password", models.LoginRequest{Email: "alice@example.com", Password: "nope"}, http.StatusUnauthorized, "Invalid credentials"},
		{"unknown email", models.LoginRequest{Email: "ghost@example.com", Password: testutil.TestPassword}, http.StatusUnauthorized, "Invalid credentials"},
		{"missing password", models.LoginRequest{Email: "alice@example.com"}, http.StatusBadRequest, "Please provide an email and password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/auth/login", tt.body, nil)
			w := serve(env.auth.Login, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedError != "" {
				if msg := decodeError(t, w); msg != tt.expectedError {
					t.Errorf("Expected error '%s', got '%s'", tt.expectedError, msg)
				}
				return
			}

			var resp models.AuthResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.User.ID != user.ID {
				t.Errorf("Expected user %s, got %s", user.ID, resp.User.ID)
			}
		})
	}
}

func TestMe(t *testing.T) {
	env := setupEnv(t)
	user := testutil.CreateTestUser(t, env.store, "Alice", "alice@example.com")
	me := env.authn.Require(env.auth.Me)

	t.Run("with bearer token", func(t *testing.T) {
		w := serve(me, testutil.MakeRequest("GET", "/api/auth/me", nil, env.headers(t, user)))
		testutil.AssertStatus(t, w, http.StatusOK)

		got := decodeData[models.User](t, w)
		if got.ID != user.ID || got.Name != "Alice" {
			t.Errorf("Unexpected user: %+v", got)
		}
	})

	t.Run("with cookie", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/auth/me", nil, nil)
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: testutil.TokenFor(t, env.cfg, user.ID)})
		w := serve(me, req)
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("password hash never serialized", func(t *testing.T) {
		w := serve(me, testutil.MakeRequest("GET", "/api/auth/me", nil, env.headers(t, user)))
		if body := w.Body.String(); len(body) == 0 || containsAny(body, "password", user.PasswordHash) {
			t.Errorf("Response leaks credentials: %s", body)
		}
	})

	t.Run("without token", func(t *testing.T) {
		w := serve(me, testutil.MakeRequest("GET", "/api/auth/me", nil, nil))
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestLogout(t *testing.T) {
	env := setupEnv(t)
	user := testutil.CreateTestUser(t, env.store, "Alice", "alice@example.com")

	w := serve(env.authn.Require(env.auth.Logout),
		testutil.MakeRequest("GET", "/api/auth/logout", nil, env.headers(t, user)))
	testutil.AssertStatus(t, w, http.StatusOK)

	cookie := tokenCookie(w.Result())
	if cookie == nil {
		t.Fatal("Expected token cookie to be overwritten")
	}
	if cookie.Value != "none" || !cookie.HttpOnly {
		t.Errorf("Unexpected logout cookie: %+v", cookie)
	}

	if body := w.Body.String(); !containsAny(body, `"data":{}`) {
		t.Errorf("Expected empty data object, got %s", body)
	}
}
