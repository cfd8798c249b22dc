// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

type voteRepo struct {
	coll *mongo.Collection
}

func (r *voteRepo) Create(ctx context.Context, vote *models.Vote) error {
	oid, err := assignID(vote.ID)
	if err != nil {
		return err
	}
	userID, err := primitive.ObjectIDFromHex(vote.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", vote.UserID, err)
	}
	pollID, err := primitive.ObjectIDFromHex(vote.PollID)
	if err != nil {
		return fmt.Errorf("invalid poll id %q: %w", vote.PollID, err)
	}
	if vote.VotedAt.IsZero() {
		vote.VotedAt = time.Now().UTC()
	}

	doc := voteDoc{
		ID:                  oid,
		UserID:              userID,
		PollID:              pollID,
		SelectedOptionIndex: vote.SelectedOptionIndex,
		IsCorrect:           vote.IsCorrect,
		VotedAt:             vote.VotedAt.UTC(),
	}
	// unique (userId, pollId) index rejects a second vote
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	vote.ID = oid.Hex()
	return nil
}

func (r *voteRepo) Find(ctx context.Context, userID, pollID string) (*models.Vote, error) {
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := objectID(pollID)
	if err != nil {
		return nil, err
	}

	var doc voteDoc
	err = r.coll.FindOne(ctx, bson.M{"userId": uid, "pollId": pid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vote: %w", err)
	}
	v := doc.model()
	return &v, nil
}

func (r *voteRepo) ListByUser(ctx context.Context, userID string) ([]models.Vote, error) {
	uid, err := objectID(userID)
	if err != nil {
		return []models.Vote{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"userId": uid},
		options.Find().SetSort(bson.D{{Key: "votedAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}

	var docs []voteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}

	votes := make([]models.Vote, len(docs))
	for i := range docs {
		votes[i] = docs[i].model()
	}
	return votes, nil
}

func (r *voteRepo) ListForPolls(ctx context.Context, userID string, pollIDs []string) ([]models.Vote, error) {
	uid, err := objectID(userID)
	oids := objectIDs(pollIDs)
	if err != nil || len(oids) == 0 {
		return []models.Vote{}, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"userId": uid, "pollId": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}

	var docs []voteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}

	votes := make([]models.Vote, len(docs))
	for i := range docs {
		votes[i] = docs[i].model()
	}
	return votes, nil
}

func (r *voteRepo) DeleteByPolls(ctx context.Context, pollIDs []string) (int64, error) {
	oids := objectIDs(pollIDs)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"pollId": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return res.DeletedCount, nil
}
