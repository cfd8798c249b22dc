// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/cliparse"
	"github.com/danielhkuo/quickly-quiz/db"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

// TestPassword is the password of every user made by CreateTestUser.
const TestPassword = "password123"

func init() {
	// Full-cost bcrypt makes handler tests crawl.
	auth.PasswordCost = bcrypt.MinCost
}

// SetupTestStore returns a migrated in-memory SQLite store, closed at
// test cleanup.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db.NewStore(conn)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          5000,
		DatabaseURL:   ":memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		JWTSecret:     "test-jwt-secret",
		JWTExpire:     time.Hour,
		CORSOrigin:    "http://localhost:5173",
		PollTTL:       72 * time.Hour,
		SweepInterval: time.Hour,
	}
}

// CreateTestUser stores a user with TestPassword.
func CreateTestUser(t *testing.T, st store.Store, name, email string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := st.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// TokenFor issues a session token for userID under cfg.
func TokenFor(t *testing.T, cfg cliparse.Config, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(cfg.JWTSecret), cfg.JWTExpire)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// BearerHeader returns request headers authenticating as token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// CreateTestPoll stores an active poll with options A, B and C, B correct,
// expiring expiresIn from now. A negative expiresIn makes it expired.
func CreateTestPoll(t *testing.T, st store.Store, ownerID string, expiresIn time.Duration) *models.Poll {
	t.Helper()

	code, err := auth.GenerateShareCode(models.ShareCodeLength)
	if err != nil {
		t.Fatalf("Failed to generate share code: %v", err)
	}

	now := time.Now().UTC()
	poll := &models.Poll{
		Question:           "Which letter is second?",
		Options:            []models.Option{{Text: "A"}, {Text: "B"}, {Text: "C"}},
		CorrectOptionIndex: 1,
		ExplanationNote:    "B follows A.",
		Tags:               []string{"alphabet"},
		OwnerID:            ownerID,
		CreatedAt:          now,
		ExpiresAt:          now.Add(expiresIn),
		ShareCode:          code,
		IsActive:           true,
	}
	if err := st.Polls().Create(context.Background(), poll); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
