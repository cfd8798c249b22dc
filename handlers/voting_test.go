// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/testutil"
)

func (e *testEnv) vote(t *testing.T, user *models.User, pollID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/api/votes/"+pollID+"/vote", body, e.headers(t, user))
	return serve(e.authn.Require(e.voting.SubmitVote), withPath(req, pollID))
}

func (e *testEnv) optionCounts(t *testing.T, pollID string) []int {
	t.Helper()
	poll, err := e.store.Polls().Get(context.Background(), pollID)
	if err != nil {
		t.Fatalf("Failed to load poll: %v", err)
	}
	counts := make([]int, len(poll.Options))
	for i, o := range poll.Options {
		counts[i] = o.VoteCount
	}
	return counts
}

func equalCounts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSubmitVote_Scenario(t *testing.T) {
	env := setupEnv(t)
	owner := testutil.CreateTestUser(t, env.store, "Owner", "owner@example.com")
	alice := testutil.CreateTestUser(t, env.store, "Alice", "alice@example.com")
	bob := testutil.CreateTestUser(t, env.store, "Bob", "bob@example.com")
	poll := testutil.CreateTestPoll(t, env.store, owner.ID, time.Hour)

	// Alice picks the correct answer
	w := env.vote(t, alice, poll.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(1)})
	testutil.AssertStatus(t, w, http.StatusCreated)

	result := decodeData[models.VoteResult](t, w)
	if !result.IsCorrect || result.CorrectOptionIndex != 1 {
		t.Errorf("Expected correct vote revealing index 1, got %+v", result)
	}
	if result.Vote.UserID != alice.ID || result.Vote.PollID != poll.ID || result.Vote.SelectedOptionIndex != 1 {
		t.Errorf("Unexpected vote record: %+v", result.Vote)
	}
	if got := env.optionCounts(t, poll.ID); !equalCounts(got, []int{0, 1, 0}) {
		t.Errorf("Expected counts [0 1 0], got %v", got)
	}

	// Bob picks a wrong answer
	w = env.vote(t, bob, poll.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(0)})
	testutil.AssertStatus(t, w, http.StatusCreated)

	result = decodeData[models.VoteResult](t, w)
	if result.IsCorrect || result.CorrectOptionIndex != 1 {
		t.Errorf("Expected incorrect vote revealing index 1, got %+v", result)
	}
	if got := env.optionCounts(t, poll.ID); !equalCounts(got, []int{1, 1, 0}) {
		t.Errorf("Expected counts [1 1 0], got %v", got)
	}

	// Alice tries again
	w = env.vote(t, alice, poll.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(2)})
	testutil.AssertStatus(t, w, http.StatusConflict)
	if msg := decodeError(t, w); msg != "You have already voted on this poll" {
		t.Errorf("Unexpected error '%s'", msg)
	}
	if got := env.optionCounts(t, poll.ID); !equalCounts(got, []int{1, 1, 0}) {
		t.Errorf("Expected counts unchanged at [1 1 0], got %v", got)
	}
}

func TestSubmitVote_Rejections(t *testing.T) {
	env := setupEnv(t)
	owner := testutil.CreateTestUser(t, env.store, "Owner", "owner@example.com")
	voter := testutil.CreateTestUser(t, env.store, "Voter", "voter@example.com")

	open := testutil.CreateTestPoll(t, env.store, owner.ID, time.Hour)
	expired := testutil.CreateTestPoll(t, env.store, owner.ID, -time.Minute)
	inactive := testutil.CreateTestPoll(t, env.store, owner.ID, time.Hour)
	if err := env.store.Polls().SetInactive(context.Background(), inactive.ID); err != nil {
		t.Fatalf("Failed to deactivate poll: %v", err)
	}

	tests := []struct {
		name           string
		pollID         string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{"missing poll", "00000000-0000-0000-0000-000000000000", models.SubmitVoteRequest{SelectedOptionIndex: intPtr(0)}, http.StatusNotFound, "Poll not found"},
		{"expired poll", expired.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(1)}, http.StatusBadRequest, "Poll has expired"},
		{"inactive poll", inactive.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(1)}, http.StatusBadRequest, "Poll has expired"},
		{"negative index", open.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(-1)}, http.StatusBadRequest, "Invalid option index"},
		{"index past end", open.ID, models.SubmitVoteRequest{SelectedOptionIndex: intPtr(3)}, http.StatusBadRequest, "Invalid option index"},
		{"missing index", open.ID, map[string]string{}, http.StatusBadRequest, "selectedOptionIndex is required"},
		{"invalid JSON", open.ID, nil, http.StatusBadRequest, "Invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.vote(t, voter, tt.pollID, tt.body)
			testutil.AssertStatus(t, w, tt.expectedStatus)
			if msg := decodeError(t, w); msg != tt.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tt.expectedError, msg)
			}
		})
	}

	// no rejected attempt left a trace
	votes, err := env.store.Votes().ListByUser(context.Background(), voter.ID)
	if err != nil {
		t.Fatalf("Failed to list votes: %v", err)
	}
	if len(votes) != 0 {
		t.Errorf("Expected no votes, got %d", len(votes))
	}
	for _, p := range []*models.Poll{open, expired, inactive} {
		if got := env.optionCounts(t, p.ID); !equalCounts(got, []int{0, 0, 0}) {
			t.Errorf("Poll %s counters moved: %v", p.ID, got)
		}
	}
}

func TestSubmitVote_RequiresAuth(t *testing.T) {
	env := setupEnv(t)
	owner := testutil.CreateTestUser(t, env.store, "Owner", "owner@example.com")
	poll := testutil.CreateTestPoll(t, env.store, owner.ID, time.Hour)

	req := testutil.MakeRequest("POST", "/api/votes/"+poll.ID+"/vote",
		models.SubmitVoteRequest{SelectedOptionIndex: intPtr(1)}, nil)
	w := serve(env.authn.Require(env.voting.SubmitVote), withPath(req, poll.ID))

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
	if got := env.optionCounts(t, poll.ID); !equalCounts(got, []int{0, 0, 0}) {
		t.Errorf("Expected no counter change, got %v", got)
	}
}
