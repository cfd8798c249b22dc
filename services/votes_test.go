// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/metrics"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
	"github.com/danielhkuo/quickly-quiz/testutil"
)

func identity(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Name: u.Name}
}

func counts(t *testing.T, st store.Store, pollID string) []int {
	t.Helper()
	poll, err := st.Polls().Get(context.Background(), pollID)
	require.NoError(t, err)
	out := make([]int, len(poll.Options))
	for i, o := range poll.Options {
		out[i] = o.VoteCount
	}
	return out
}

func TestSubmit_Scenario(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewVoteService(st, nil)
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, st, "Owner", "owner@example.com")
	alice := testutil.CreateTestUser(t, st, "Alice", "alice@example.com")
	bob := testutil.CreateTestUser(t, st, "Bob", "bob@example.com")
	poll := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)

	// correct answer
	res, err := svc.Submit(ctx, poll.ID, identity(alice), 1)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.True(t, res.Vote.IsCorrect)
	assert.Equal(t, 1, res.CorrectOptionIndex)
	assert.Equal(t, alice.ID, res.Vote.UserID)
	assert.Equal(t, []int{0, 1, 0}, counts(t, st, poll.ID))

	// wrong answer
	res, err = svc.Submit(ctx, poll.ID, identity(bob), 0)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.CorrectOptionIndex)
	assert.Equal(t, []int{1, 1, 0}, counts(t, st, poll.ID))

	// second attempt
	_, err = svc.Submit(ctx, poll.ID, identity(alice), 2)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, []int{1, 1, 0}, counts(t, st, poll.ID))

	got, err := st.Polls().Get(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalVotes)
}

func TestSubmit_Rejections(t *testing.T) {
	st := testutil.SetupTestStore(t)
	reg := prometheus.NewRegistry()
	svc := NewVoteService(st, metrics.New(reg))
	ctx := context.Background()

	owner := testutil.CreateTestUser(t, st, "Owner", "owner@example.com")
	voter := testutil.CreateTestUser(t, st, "Voter", "voter@example.com")

	open := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)
	expired := testutil.CreateTestPoll(t, st, owner.ID, -time.Minute)
	inactive := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)
	require.NoError(t, st.Polls().SetInactive(ctx, inactive.ID))

	tests := []struct {
		name     string
		pollID   string
		selected int
		wantErr  error
	}{
		{"missing poll", "does-not-exist", 0, ErrNotFound},
		{"expired poll", expired.ID, 1, ErrPollInactive},
		{"inactive poll", inactive.ID, 1, ErrPollInactive},
		{"negative index", open.ID, -1, ErrInvalidOption},
		{"index too large", open.ID, 3, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.pollID, identity(voter), tt.selected)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// none of the rejected submissions persisted anything
	votes, err := st.Votes().ListByUser(ctx, voter.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
	for _, p := range []*models.Poll{open, expired, inactive} {
		assert.Equal(t, []int{0, 0, 0}, counts(t, st, p.ID))
	}
}

func TestSubmit_ExpiryUsesClock(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewVoteService(st, nil)

	owner := testutil.CreateTestUser(t, st, "Owner", "owner@example.com")
	voter := testutil.CreateTestUser(t, st, "Voter", "voter@example.com")
	poll := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := svc.Submit(context.Background(), poll.ID, identity(voter), 0)
	assert.ErrorIs(t, err, ErrPollInactive)
}

type failingPolls struct {
	store.Polls
	err error
}

func (f failingPolls) IncrementVote(context.Context, string, int) error { return f.err }

type failingStore struct {
	store.Store
	polls store.Polls
}

func (f failingStore) Polls() store.Polls { return f.polls }

func TestSubmit_IncrementFailureKeepsVote(t *testing.T) {
	st := testutil.SetupTestStore(t)
	owner := testutil.CreateTestUser(t, st, "Owner", "owner@example.com")
	voter := testutil.CreateTestUser(t, st, "Voter", "voter@example.com")
	poll := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)

	boom := errors.New("write conflict")
	broken := failingStore{Store: st, polls: failingPolls{Polls: st.Polls(), err: boom}}
	svc := NewVoteService(broken, metrics.New(prometheus.NewRegistry()))

	_, err := svc.Submit(context.Background(), poll.ID, identity(voter), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// the vote stands and blocks a retry; the counter under-reports
	_, err = st.Votes().Find(context.Background(), voter.ID, poll.ID)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, counts(t, st, poll.ID))

	_, err = NewVoteService(st, nil).Submit(context.Background(), poll.ID, identity(voter), 1)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestSubmit_ConcurrentVoters(t *testing.T) {
	st := testutil.SetupTestStore(t)
	reg := prometheus.NewRegistry()
	svc := NewVoteService(st, metrics.New(reg))

	owner := testutil.CreateTestUser(t, st, "Owner", "owner@example.com")
	poll := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)

	const voters = 20
	users := make([]*models.User, voters)
	for i := range users {
		users[i] = testutil.CreateTestUser(t, st, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i, u := range users {
		wg.Add(1)
		go func(u *models.User, option int) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), poll.ID, identity(u), option)
			errs <- err
		}(u, i%3)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	c := counts(t, st, poll.ID)
	assert.Equal(t, voters, c[0]+c[1]+c[2])
	assert.Equal(t, []int{7, 7, 6}, c)

	got, err := st.Polls().Get(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.TotalVotes)

	// one series each for correct and incorrect votes
	assert.Equal(t, 2, promtest.CollectAndCount(reg, "quickpoll_votes_total"))
}

func TestSubmit_ConcurrentSameUser(t *testing.T) {
	st := testutil.SetupTestStore(t)
	svc := NewVoteService(st, nil)

	owner := testutil.CreateTestUser(t, st, "Owner", "owner@example.com")
	voter := testutil.CreateTestUser(t, st, "Voter", "voter@example.com")
	poll := testutil.CreateTestPoll(t, st, owner.ID, time.Hour)

	const attempts = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), poll.ID, identity(voter), 0)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrAlreadyVoted):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Equal(t, []int{1, 0, 0}, counts(t, st, poll.ID))
}
