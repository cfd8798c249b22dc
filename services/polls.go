// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/metrics"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

// Listing limits
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxExpiresHours  = 720
	DefaultSort      = "-createdAt"

	shareCodeAttempts = 5
)

var sortKeys = map[string]store.Sort{
	"createdAt":          {Field: store.SortCreatedAt},
	"-createdAt":         {Field: store.SortCreatedAt, Desc: true},
	"expiresAt":          {Field: store.SortExpiresAt},
	"-expiresAt":         {Field: store.SortExpiresAt, Desc: true},
	"totalVotes":         {Field: store.SortTotalVotes},
	"-totalVotes":        {Field: store.SortTotalVotes, Desc: true},
	"options.voteCount":  {Field: store.SortTotalVotes},
	"-options.voteCount": {Field: store.SortTotalVotes, Desc: true},
}

// ParseSort maps a sort query value to a store sort. Empty means newest first.
func ParseSort(s string) (store.Sort, error) {
	if s == "" {
		s = DefaultSort
	}
	order, ok := sortKeys[s]
	if !ok {
		return store.Sort{}, invalid("Invalid sort field %q", s)
	}
	return order, nil
}

// ListParams are the raw listing inputs. Zero Page and Limit mean defaults.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Tag    string
	Sort   string
}

type PollService struct {
	store   store.Store
	ttl     time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPollService creates a service whose new polls expire after ttl unless
// the request overrides it.
func NewPollService(st store.Store, ttl time.Duration, m *metrics.Metrics) *PollService {
	if ttl <= 0 {
		ttl = models.DefaultPollTTL
	}
	return &PollService{store: st, ttl: ttl, metrics: m, now: time.Now}
}

func (s *PollService) Create(ctx context.Context, owner auth.Identity, req models.CreatePollRequest) (*models.PollView, error) {
	poll, err := s.buildPoll(owner.UserID, req)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		code, err := auth.GenerateShareCode(models.ShareCodeLength)
		if err != nil {
			return nil, err
		}
		poll.ShareCode = code

		err = s.store.Polls().Create(ctx, poll)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) || attempt == shareCodeAttempts {
			return nil, fmt.Errorf("failed to create poll: %w", err)
		}
	}

	s.metrics.PollCreated()
	view := s.view(*poll, &models.UserSummary{ID: owner.UserID, Name: owner.Name}, s.now())
	return &view, nil
}

func (s *PollService) buildPoll(ownerID string, req models.CreatePollRequest) (*models.Poll, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, invalid("Please add a question")
	}
	if len([]rune(question)) > models.MaxQuestionLength {
		return nil, invalid("Question can not be more than %d characters", models.MaxQuestionLength)
	}

	if len(req.Options) < models.MinOptions || len(req.Options) > models.MaxOptions {
		return nil, invalid("Poll must have between %d and %d options", models.MinOptions, models.MaxOptions)
	}
	options := make([]models.Option, len(req.Options))
	for i, text := range req.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, invalid("Option %d can not be empty", i+1)
		}
		options[i] = models.Option{Text: text}
	}

	if req.CorrectOptionIndex == nil {
		return nil, invalid("Please specify the correct option")
	}
	correct := *req.CorrectOptionIndex
	if correct < 0 || correct >= len(options) {
		return nil, invalid("Correct option index is out of bounds")
	}

	explanation := strings.TrimSpace(req.ExplanationNote)
	if len([]rune(explanation)) > models.MaxExplanationChars {
		return nil, invalid("Explanation can not be more than %d characters", models.MaxExplanationChars)
	}

	ttl := s.ttl
	if req.ExpiresInHours != 0 {
		if req.ExpiresInHours < 1 || req.ExpiresInHours > MaxExpiresHours {
			return nil, invalid("expiresInHours must be between 1 and %d", MaxExpiresHours)
		}
		ttl = time.Duration(req.ExpiresInHours) * time.Hour
	}

	now := s.now().UTC()
	return &models.Poll{
		Question:           question,
		Options:            options,
		CorrectOptionIndex: correct,
		ExplanationNote:    explanation,
		Tags:               cleanTags(req.Tags),
		OwnerID:            ownerID,
		CreatedAt:          now,
		ExpiresAt:          now.Add(ttl),
		IsActive:           true,
	}, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Lookup finds a poll by ID or share code and reports whether viewer voted
// on it. viewer is nil for anonymous requests. An expired poll is marked
// inactive as a side effect, see ReconcileExpiry.
func (s *PollService) Lookup(ctx context.Context, idOrCode string, viewer *auth.Identity) (*models.PollDetail, error) {
	poll, err := s.find(ctx, idOrCode)
	if err != nil {
		return nil, err
	}

	if err := s.ReconcileExpiry(ctx, poll); err != nil {
		return nil, err
	}

	views, err := s.decorate(ctx, []models.Poll{*poll})
	if err != nil {
		return nil, err
	}
	if err := s.markVoted(ctx, views, viewer); err != nil {
		return nil, err
	}

	return &models.PollDetail{
		Poll:     views[0],
		UserVote: views[0].UserVote,
		HasVoted: views[0].HasVoted,
	}, nil
}

// ReconcileExpiry marks poll inactive, in memory and in the store, if it is
// past expiry. It is a no-op otherwise and safe to repeat.
func (s *PollService) ReconcileExpiry(ctx context.Context, poll *models.Poll) error {
	if !poll.IsActive || !poll.Expired(s.now()) {
		return nil
	}

	err := s.store.Polls().SetInactive(ctx, poll.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to deactivate poll: %w", err)
	}
	poll.IsActive = false
	return nil
}

// find resolves share codes by length; internal IDs are never 8 characters.
func (s *PollService) find(ctx context.Context, idOrCode string) (*models.Poll, error) {
	var poll *models.Poll
	var err error
	if len(idOrCode) == models.ShareCodeLength {
		poll, err = s.store.Polls().GetByShareCode(ctx, idOrCode)
	} else {
		poll, err = s.store.Polls().Get(ctx, idOrCode)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}
	return poll, nil
}

// List returns one page of active, unexpired polls. For a signed-in viewer
// each poll also reports whether they voted on it.
func (s *PollService) List(ctx context.Context, p ListParams, viewer *auth.Identity) (*models.PollPage, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page < 1 {
		return nil, invalid("page must be at least 1")
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return nil, invalid("limit must be between 1 and %d", MaxPageLimit)
	}
	if p.Page > math.MaxInt/p.Limit {
		return nil, invalid("page is out of range")
	}

	order, err := ParseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	polls, total, err := s.store.Polls().List(ctx, store.PollFilter{
		ActiveAt: s.now(),
		Search:   strings.TrimSpace(p.Search),
		Tag:      strings.TrimSpace(p.Tag),
		Sort:     order,
		Offset:   (p.Page - 1) * p.Limit,
		Limit:    p.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	views, err := s.decorate(ctx, polls)
	if err != nil {
		return nil, err
	}
	if err := s.markVoted(ctx, views, viewer); err != nil {
		return nil, err
	}

	return &models.PollPage{
		Polls: views,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}, nil
}

// Delete removes a poll and its votes. Only the owner may delete.
func (s *PollService) Delete(ctx context.Context, id string, who auth.Identity) error {
	poll, err := s.store.Polls().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load poll: %w", err)
	}

	if poll.OwnerID != who.UserID {
		return ErrNotOwner
	}

	if _, err := s.store.Votes().DeleteByPolls(ctx, []string{poll.ID}); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if err := s.store.Polls().Delete(ctx, poll.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete poll: %w", err)
	}

	s.metrics.PollsDeleted("owner", 1)
	return nil
}

// Results computes the tally for a poll found by ID or share code.
func (s *PollService) Results(ctx context.Context, idOrCode string) (*models.PollResults, error) {
	poll, err := s.find(ctx, idOrCode)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, o := range poll.Options {
		total += o.VoteCount
	}

	options := make([]models.OptionResult, len(poll.Options))
	for i, o := range poll.Options {
		options[i] = models.OptionResult{
			Index:     i,
			Text:      o.Text,
			VoteCount: o.VoteCount,
			Percent:   percent(o.VoteCount, total),
			IsCorrect: i == poll.CorrectOptionIndex,
		}
	}
	rankOptions(options)

	correctRate := 0.0
	if poll.CorrectOptionIndex < len(poll.Options) {
		correctRate = percent(poll.Options[poll.CorrectOptionIndex].VoteCount, total)
	}

	return &models.PollResults{
		PollID:             poll.ID,
		Question:           poll.Question,
		TotalVotes:         total,
		CorrectOptionIndex: poll.CorrectOptionIndex,
		CorrectRate:        correctRate,
		ExplanationNote:    poll.ExplanationNote,
		Options:            options,
		IsExpired:          poll.Expired(s.now()),
	}, nil
}

// rankOptions assigns competition ranks (1, 2, 2, 4) by descending votes.
func rankOptions(options []models.OptionResult) {
	order := make([]int, len(options))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return options[order[a]].VoteCount > options[order[b]].VoteCount
	})

	for pos, idx := range order {
		if pos > 0 && options[idx].VoteCount == options[order[pos-1]].VoteCount {
			options[idx].Rank = options[order[pos-1]].Rank
			continue
		}
		options[idx].Rank = pos + 1
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)*1000/float64(total)) / 10
}

// Created returns every poll owned by who, newest first.
func (s *PollService) Created(ctx context.Context, who auth.Identity) ([]models.PollView, error) {
	polls, _, err := s.store.Polls().List(ctx, store.PollFilter{
		OwnerID: who.UserID,
		Sort:    store.Sort{Field: store.SortCreatedAt, Desc: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return s.decorate(ctx, polls)
}

// Voted returns who's vote history, newest first, with accuracy totals.
// Votes whose poll has since been deleted carry a nil poll.
func (s *PollService) Voted(ctx context.Context, who auth.Identity) (*models.VoteHistory, error) {
	votes, err := s.store.Votes().ListByUser(ctx, who.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}

	var polls []models.Poll
	pollIndex := make(map[string]int)
	for _, v := range votes {
		if _, ok := pollIndex[v.PollID]; ok {
			continue
		}
		poll, err := s.store.Polls().Get(ctx, v.PollID)
		if errors.Is(err, store.ErrNotFound) {
			pollIndex[v.PollID] = -1
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load poll: %w", err)
		}
		pollIndex[v.PollID] = len(polls)
		polls = append(polls, *poll)
	}
	views, err := s.decorate(ctx, polls)
	if err != nil {
		return nil, err
	}

	history := &models.VoteHistory{Votes: make([]models.VotedPoll, len(votes)), Total: len(votes)}
	for i, v := range votes {
		history.Votes[i] = models.VotedPoll{Vote: v}
		if idx := pollIndex[v.PollID]; idx >= 0 {
			history.Votes[i].Poll = &views[idx]
		}
		if v.IsCorrect {
			history.Correct++
		}
	}
	history.Accuracy = percent(history.Correct, history.Total)
	return history, nil
}

// decorate attaches creator summaries and expiry state. A deleted creator
// leaves CreatedBy nil.
func (s *PollService) decorate(ctx context.Context, polls []models.Poll) ([]models.PollView, error) {
	now := s.now()
	creators := make(map[string]*models.UserSummary)

	views := make([]models.PollView, len(polls))
	for i, p := range polls {
		creator, ok := creators[p.OwnerID]
		if !ok {
			u, err := s.store.Users().GetByID(ctx, p.OwnerID)
			switch {
			case err == nil:
				creator = &models.UserSummary{ID: u.ID, Name: u.Name}
			case !errors.Is(err, store.ErrNotFound):
				return nil, fmt.Errorf("failed to load creator: %w", err)
			}
			creators[p.OwnerID] = creator
		}
		views[i] = s.view(p, creator, now)
	}
	return views, nil
}

func (s *PollService) view(p models.Poll, creator *models.UserSummary, now time.Time) models.PollView {
	expired := p.Expired(now)
	remaining := "expired"
	if !expired {
		remaining = humanize.RelTime(now, p.ExpiresAt, "left", "ago")
	}

	return models.PollView{
		Poll:          p,
		CreatedBy:     creator,
		IsExpired:     expired,
		TimeRemaining: remaining,
	}
}

// markVoted fills HasVoted and UserVote from one batched vote query.
// Guests leave every view untouched.
func (s *PollService) markVoted(ctx context.Context, views []models.PollView, viewer *auth.Identity) error {
	if viewer == nil || len(views) == 0 {
		return nil
	}

	ids := make([]string, len(views))
	for i := range views {
		ids[i] = views[i].ID
	}

	votes, err := s.store.Votes().ListForPolls(ctx, viewer.UserID, ids)
	if err != nil {
		return fmt.Errorf("failed to load votes: %w", err)
	}

	byPoll := make(map[string]*models.Vote, len(votes))
	for i := range votes {
		byPoll[votes[i].PollID] = &votes[i]
	}
	for i := range views {
		if v, ok := byPoll[views[i].ID]; ok {
			views[i].HasVoted = true
			views[i].UserVote = v
		}
	}
	return nil
}
