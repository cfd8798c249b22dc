// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/metrics"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

type VoteService struct {
	store   store.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewVoteService(st store.Store, m *metrics.Metrics) *VoteService {
	return &VoteService{store: st, metrics: m, now: time.Now}
}

// Submit records voter's choice on the poll with the given ID.
func (s *VoteService) Submit(ctx context.Context, pollID string, voter auth.Identity, selected int) (*models.VoteResult, error) {
	poll, err := s.store.Polls().Get(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		s.metrics.VoteRejected("not_found")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	if !poll.Open(s.now()) {
		s.metrics.VoteRejected("inactive")
		return nil, ErrPollInactive
	}

	if selected < 0 || selected >= len(poll.Options) {
		s.metrics.VoteRejected("invalid_option")
		return nil, ErrInvalidOption
	}

	_, err = s.store.Votes().Find(ctx, voter.UserID, poll.ID)
	if err == nil {
		s.metrics.VoteRejected("duplicate")
		return nil, ErrAlreadyVoted
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}

	vote := &models.Vote{
		UserID:              voter.UserID,
		PollID:              poll.ID,
		SelectedOptionIndex: selected,
		IsCorrect:           selected == poll.CorrectOptionIndex,
		VotedAt:             s.now().UTC(),
	}
	// A concurrent submission can pass the check above; the unique
	// constraint decides.
	if err := s.store.Votes().Create(ctx, vote); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			s.metrics.VoteRejected("duplicate")
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to store vote: %w", err)
	}

	if err := s.store.Polls().IncrementVote(ctx, poll.ID, selected); err != nil {
		s.metrics.IncrementFailed()
		slog.ErrorContext(ctx, "vote stored but counter not incremented",
			"poll_id", poll.ID, "vote_id", vote.ID, "option", selected, "error", err)
		return nil, fmt.Errorf("failed to increment option counter: %w", err)
	}

	s.metrics.VoteRecorded(vote.IsCorrect)
	return &models.VoteResult{
		Vote:               *vote,
		IsCorrect:          vote.IsCorrect,
		CorrectOptionIndex: poll.CorrectOptionIndex,
	}, nil
}
