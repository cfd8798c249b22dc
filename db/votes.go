// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

type voteRepo struct {
	db *sql.DB
}

func (r *voteRepo) Create(ctx context.Context, vote *models.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	if vote.VotedAt.IsZero() {
		vote.VotedAt = time.Now().UTC()
	}

	// UNIQUE (user_id, poll_id) rejects a second vote
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vote (id, user_id, poll_id, selected_option_index, is_correct, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, vote.ID, vote.UserID, vote.PollID, vote.SelectedOptionIndex, vote.IsCorrect, vote.VotedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}

func (r *voteRepo) Find(ctx context.Context, userID, pollID string) (*models.Vote, error) {
	var v models.Vote
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, poll_id, selected_option_index, is_correct, voted_at
		FROM vote
		WHERE user_id = $1 AND poll_id = $2
	`, userID, pollID).Scan(&v.ID, &v.UserID, &v.PollID, &v.SelectedOptionIndex, &v.IsCorrect, &v.VotedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vote: %w", err)
	}

	return &v, nil
}

func (r *voteRepo) ListByUser(ctx context.Context, userID string) ([]models.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, poll_id, selected_option_index, is_correct, voted_at
		FROM vote
		WHERE user_id = $1
		ORDER BY voted_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.UserID, &v.PollID, &v.SelectedOptionIndex, &v.IsCorrect, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *voteRepo) ListForPolls(ctx context.Context, userID string, pollIDs []string) ([]models.Vote, error) {
	votes := []models.Vote{}
	if len(pollIDs) == 0 {
		return votes, nil
	}

	args := []any{userID}
	in := placeholders(&args, pollIDs)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, poll_id, selected_option_index, is_correct, voted_at
		FROM vote
		WHERE user_id = $1 AND poll_id IN (`+in+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.ID, &v.UserID, &v.PollID, &v.SelectedOptionIndex, &v.IsCorrect, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (r *voteRepo) DeleteByPolls(ctx context.Context, pollIDs []string) (int64, error) {
	if len(pollIDs) == 0 {
		return 0, nil
	}

	var args []any
	in := placeholders(&args, pollIDs)

	res, err := r.db.ExecContext(ctx, `DELETE FROM vote WHERE poll_id IN (`+in+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return res.RowsAffected()
}
