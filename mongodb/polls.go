// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

type pollRepo struct {
	coll *mongo.Collection
}

func (r *pollRepo) Create(ctx context.Context, poll *models.Poll) error {
	oid, err := assignID(poll.ID)
	if err != nil {
		return err
	}
	owner, err := primitive.ObjectIDFromHex(poll.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", poll.OwnerID, err)
	}

	if _, err := r.coll.InsertOne(ctx, toPollDoc(poll, oid, owner)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	poll.ID = oid.Hex()
	return nil
}

func (r *pollRepo) Get(ctx context.Context, id string) (*models.Poll, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *pollRepo) GetByShareCode(ctx context.Context, code string) (*models.Poll, error) {
	return r.findOne(ctx, bson.M{"shareId": code})
}

func (r *pollRepo) findOne(ctx context.Context, filter bson.M) (*models.Poll, error) {
	var doc pollDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	poll := doc.model()
	return &poll, nil
}

func (r *pollRepo) List(ctx context.Context, f store.PollFilter) ([]models.Poll, int, error) {
	filter := bson.M{}
	if !f.ActiveAt.IsZero() {
		filter["isActive"] = true
		filter["expiresAt"] = bson.M{"$gt": f.ActiveAt.UTC()}
	}
	if f.OwnerID != "" {
		owner, err := primitive.ObjectIDFromHex(f.OwnerID)
		if err != nil {
			return []models.Poll{}, 0, nil
		}
		filter["createdBy"] = owner
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"question": re},
			bson.M{"tags": re},
		}
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count polls: %w", err)
	}

	opts := options.Find().SetSort(sortSpec(f.Sort))
	if f.Limit > 0 {
		opts.SetSkip(int64(f.Offset)).SetLimit(int64(f.Limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query polls: %w", err)
	}

	var docs []pollDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode polls: %w", err)
	}

	polls := make([]models.Poll, len(docs))
	for i := range docs {
		polls[i] = docs[i].model()
	}
	return polls, int(total), nil
}

func sortSpec(s store.Sort) bson.D {
	field := "createdAt"
	switch s.Field {
	case store.SortExpiresAt:
		field = "expiresAt"
	case store.SortTotalVotes:
		field = "totalVotes"
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}

func (r *pollRepo) SetInactive(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"isActive": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate poll: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *pollRepo) IncrementVote(ctx context.Context, id string, optionIndex int) error {
	if optionIndex < 0 {
		return store.ErrNotFound
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	option := fmt.Sprintf("options.%d", optionIndex)
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, option: bson.M{"$exists": true}},
		bson.M{"$inc": bson.M{option + ".voteCount": 1, "totalVotes": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment vote: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
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
	cur, err := r.coll.Find(ctx,
		bson.M{"isActive": true, "expiresAt": bson.M{"$lt": now.UTC()}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired polls: %w", err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode expired polls: %w", err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID.Hex()
	}
	return ids, nil
}

func (r *pollRepo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete polls: %w", err)
	}
	return res.DeletedCount, nil
}
