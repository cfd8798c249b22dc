// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/quickly-quiz/cliparse"
	"github.com/danielhkuo/quickly-quiz/db"
	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
	"github.com/danielhkuo/quickly-quiz/testutil"
)

// testEnv wires real services over an in-memory store.
type testEnv struct {
	store   *db.Store
	cfg     cliparse.Config
	authn   *middleware.Authenticator
	auth    *AuthHandler
	polls   *PollHandler
	voting  *VotingHandler
	results *ResultsHandler
	dash    *DashboardHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	st := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()

	users := services.NewUserService(st.Users(), cfg.JWTSecret, cfg.JWTExpire)
	polls := services.NewPollService(st, cfg.PollTTL, nil)
	votes := services.NewVoteService(st, nil)

	return &testEnv{
		store:   st,
		cfg:     cfg,
		authn:   middleware.NewAuthenticator(users),
		auth:    NewAuthHandler(users, cfg),
		polls:   NewPollHandler(polls),
		voting:  NewVotingHandler(votes),
		results: NewResultsHandler(polls),
		dash:    NewDashboardHandler(polls),
	}
}

// headers returns the Authorization header for user.
func (e *testEnv) headers(t *testing.T, user *models.User) map[string]string {
	t.Helper()
	return testutil.BearerHeader(testutil.TokenFor(t, e.cfg, user.ID))
}

// serve runs req through h and returns the recorder.
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

// withPath sets the {id} wildcard as the mux would.
func withPath(req *http.Request, id string) *http.Request {
	req.SetPathValue("id", id)
	return req
}

// envelope mirrors models.DataResponse with a typed payload.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !env.Success {
		t.Fatal("Expected success to be true")
	}
	return env.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Success {
		t.Error("Expected success to be false")
	}
	return resp.Error
}

func intPtr(n int) *int { return &n }
