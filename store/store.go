// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/danielhkuo/quickly-quiz/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// SortField names a sortable poll attribute.
type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortExpiresAt  SortField = "expiresAt"
	SortTotalVotes SortField = "totalVotes"
)

type Sort struct {
	Field SortField
	Desc  bool
}

// PollFilter selects polls for listing. Zero values disable a criterion.
type PollFilter struct {
	// ActiveAt restricts results to active polls expiring after it.
	ActiveAt time.Time
	// Search is a case-insensitive substring over question and tags.
	Search  string
	Tag     string
	OwnerID string
	Sort    Sort
	Offset  int
	Limit   int
}

type Users interface {
	// Create assigns an ID when empty. Returns ErrDuplicate for a taken email.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type Polls interface {
	// Create assigns an ID when empty. Returns ErrDuplicate for a taken share code.
	Create(ctx context.Context, poll *models.Poll) error
	Get(ctx context.Context, id string) (*models.Poll, error)
	GetByShareCode(ctx context.Context, code string) (*models.Poll, error)
	// List returns one page of matching polls and the total match count.
	List(ctx context.Context, filter PollFilter) ([]models.Poll, int, error)
	SetInactive(ctx context.Context, id string) error
	// IncrementVote adds one to the option counter and the poll total.
	IncrementVote(ctx context.Context, id string, optionIndex int) error
	Delete(ctx context.Context, id string) error
	// ListExpired returns IDs of polls still flagged active whose expiry is before now.
	ListExpired(ctx context.Context, now time.Time) ([]string, error)
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

type Votes interface {
	// Create returns ErrDuplicate if the user already voted on the poll.
	Create(ctx context.Context, vote *models.Vote) error
	Find(ctx context.Context, userID, pollID string) (*models.Vote, error)
	// ListByUser returns the user's votes, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.Vote, error)
	// ListForPolls returns the user's votes on any of pollIDs, in no order.
	ListForPolls(ctx context.Context, userID string, pollIDs []string) ([]models.Vote, error)
	DeleteByPolls(ctx context.Context, pollIDs []string) (int64, error)
}

// Store is the document store behind the API: users, polls and votes.
type Store interface {
	Users() Users
	Polls() Polls
	Votes() Votes
	Close(ctx context.Context) error
}
