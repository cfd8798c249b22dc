// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

const pollColumns = `p.id, p.question, p.correct_option_index, p.explanation_note, p.created_by,
	p.created_at, p.expires_at, p.share_code, p.is_active, p.total_votes`

type pollRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*models.Poll, error) {
	var p models.Poll
	err := row.Scan(
		&p.ID, &p.Question, &p.CorrectOptionIndex, &p.ExplanationNote, &p.OwnerID,
		&p.CreatedAt, &p.ExpiresAt, &p.ShareCode, &p.IsActive, &p.TotalVotes,
	)
	if err != nil {
		return nil, err
	}
	p.Options = []models.Option{}
	p.Tags = []string{}
	return &p, nil
}

func (r *pollRepo) Create(ctx context.Context, poll *models.Poll) error {
	if poll.ID == "" {
		poll.ID = uuid.NewString()
	}

	return WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll (id, question, correct_option_index, explanation_note, created_by,
			                  created_at, expires_at, share_code, is_active, total_votes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, poll.ID, poll.Question, poll.CorrectOptionIndex, poll.ExplanationNote, poll.OwnerID,
			poll.CreatedAt.UTC(), poll.ExpiresAt.UTC(), poll.ShareCode, poll.IsActive, poll.TotalVotes)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicate
			}
			return fmt.Errorf("failed to insert poll: %w", err)
		}

		for i, opt := range poll.Options {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO poll_option (poll_id, position, text, vote_count)
				VALUES ($1, $2, $3, $4)
			`, poll.ID, i, opt.Text, opt.VoteCount)
			if err != nil {
				return fmt.Errorf("failed to insert option: %w", err)
			}
		}

		for i, tag := range poll.Tags {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO poll_tag (poll_id, position, tag)
				VALUES ($1, $2, $3)
				ON CONFLICT DO NOTHING
			`, poll.ID, i, tag)
			if err != nil {
				return fmt.Errorf("failed to insert tag: %w", err)
			}
		}

		return nil
	})
}

func (r *pollRepo) Get(ctx context.Context, id string) (*models.Poll, error) {
	return r.getOne(ctx, "p.id", id)
}

func (r *pollRepo) GetByShareCode(ctx context.Context, code string) (*models.Poll, error) {
	return r.getOne(ctx, "p.share_code", code)
}

func (r *pollRepo) getOne(ctx context.Context, column, value string) (*models.Poll, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pollColumns+` FROM poll p WHERE `+column+` = $1`, value)
	poll, err := scanPoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}

	if err := r.loadChildren(ctx, []*models.Poll{poll}); err != nil {
		return nil, err
	}
	return poll, nil
}

func (r *pollRepo) List(ctx context.Context, f store.PollFilter) ([]models.Poll, int, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if !f.ActiveAt.IsZero() {
		where = append(where, "p.is_active = "+arg(true)+" AND p.expires_at > "+arg(f.ActiveAt.UTC()))
	}
	if f.OwnerID != "" {
		where = append(where, "p.created_by = "+arg(f.OwnerID))
	}
	if f.Search != "" {
		pattern := arg("%" + escapeLike(strings.ToLower(f.Search)) + "%")
		where = append(where, `(LOWER(p.question) LIKE `+pattern+` ESCAPE '\'
			OR EXISTS (SELECT 1 FROM poll_tag t WHERE t.poll_id = p.id AND LOWER(t.tag) LIKE `+pattern+` ESCAPE '\'))`)
	}
	if f.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM poll_tag t WHERE t.poll_id = p.id AND t.tag = "+arg(f.Tag)+")")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM poll p`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count polls: %w", err)
	}

	query := `SELECT ` + pollColumns + ` FROM poll p` + clause + ` ORDER BY ` + orderBy(f.Sort)
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query polls: %w", err)
	}

	var polls []*models.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	// Close before loading children; SQLite runs on a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate polls: %w", err)
	}

	if err := r.loadChildren(ctx, polls); err != nil {
		return nil, 0, err
	}

	result := make([]models.Poll, len(polls))
	for i, p := range polls {
		result[i] = *p
	}
	return result, total, nil
}

// loadChildren fills in options and tags for the given polls.
func (r *pollRepo) loadChildren(ctx context.Context, polls []*models.Poll) error {
	if len(polls) == 0 {
		return nil
	}

	byID := make(map[string]*models.Poll, len(polls))
	ids := make([]string, len(polls))
	for i, p := range polls {
		byID[p.ID] = p
		ids[i] = p.ID
	}

	var args []any
	in := placeholders(&args, ids)

	rows, err := r.db.QueryContext(ctx, `
		SELECT poll_id, text, vote_count
		FROM poll_option
		WHERE poll_id IN (`+in+`)
		ORDER BY poll_id, position
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to query options: %w", err)
	}
	for rows.Next() {
		var pollID string
		var opt models.Option
		if err := rows.Scan(&pollID, &opt.Text, &opt.VoteCount); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan option: %w", err)
		}
		if p, ok := byID[pollID]; ok {
			p.Options = append(p.Options, opt)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate options: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT poll_id, tag
		FROM poll_tag
		WHERE poll_id IN (`+in+`)
		ORDER BY poll_id, position
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to query tags: %w", err)
	}
	for rows.Next() {
		var pollID, tag string
		if err := rows.Scan(&pollID, &tag); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if p, ok := byID[pollID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}
	rows.Close()
	return rows.Err()
}

func (r *pollRepo) SetInactive(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE poll SET is_active = $1 WHERE id = $2`, false, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate poll: %w", err)
	}
	return expectRows(res)
}

func (r *pollRepo) IncrementVote(ctx context.Context, id string, optionIndex int) error {
	return WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE poll_option
			SET vote_count = vote_count + 1
			WHERE poll_id = $1 AND position = $2
		`, id, optionIndex)
		if err != nil {
			return fmt.Errorf("failed to increment option: %w", err)
		}
		if err := expectRows(res); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE poll SET total_votes = total_votes + 1 WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to increment poll total: %w", err)
		}
		return nil
	})
}

func (r *pollRepo) Delete(ctx context.Context, id string) error {
	n, err := r.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *pollRepo) ListExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM poll WHERE is_active = $1 AND expires_at < $2
	`, true, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query expired polls: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan poll id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pollRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := WithTx(ctx, r.db, func(ctx context.Context, tx DBTX) error {
		var args []any
		in := placeholders(&args, ids)

		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_option WHERE poll_id IN (`+in+`)`, args...); err != nil {
			return fmt.Errorf("failed to delete options: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_tag WHERE poll_id IN (`+in+`)`, args...); err != nil {
			return fmt.Errorf("failed to delete tags: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM poll WHERE id IN (`+in+`)`, args...)
		if err != nil {
			return fmt.Errorf("failed to delete polls: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

func orderBy(s store.Sort) string {
	col := "p.created_at"
	switch s.Field {
	case store.SortExpiresAt:
		col = "p.expires_at"
	case store.SortTotalVotes:
		col = "p.total_votes"
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return col + " " + dir + ", p.id " + dir
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
