// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

const (
	usersCollection = "users"
	pollsCollection = "polls"
	votesCollection = "votes"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	users  *userRepo
	polls  *pollRepo
	votes  *voteRepo
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the primary is reachable and ensures
// indexes on dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connection failed: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	s := NewStore(client, client.Database(dbName))
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.Info("mongo connected", "database", dbName)
	return s, nil
}

func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client: client,
		db:     db,
		users:  &userRepo{coll: db.Collection(usersCollection)},
		polls:  &pollRepo{coll: db.Collection(pollsCollection)},
		votes:  &voteRepo{coll: db.Collection(votesCollection)},
	}
}

// EnsureIndexes creates the indexes the repositories rely on. Existing
// indexes with the same keys are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		pollsCollection: {
			{Keys: bson.D{{Key: "shareId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		votesCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "pollId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "pollId", Value: 1}}},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Users() store.Users { return s.users }
func (s *Store) Polls() store.Polls { return s.polls }
func (s *Store) Votes() store.Votes { return s.votes }

// Database exposes the underlying database, mainly for tests.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Documents

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

type optionDoc struct {
	Text      string `bson:"text"`
	VoteCount int    `bson:"voteCount"`
}

type pollDoc struct {
	ID                 primitive.ObjectID `bson:"_id"`
	Question           string             `bson:"question"`
	Options            []optionDoc        `bson:"options"`
	CorrectOptionIndex int                `bson:"correctOptionIndex"`
	ExplanationNote    string             `bson:"explanationNote"`
	Tags               []string           `bson:"tags"`
	CreatedBy          primitive.ObjectID `bson:"createdBy"`
	CreatedAt          time.Time          `bson:"createdAt"`
	ExpiresAt          time.Time          `bson:"expiresAt"`
	ShareID            string             `bson:"shareId"`
	IsActive           bool               `bson:"isActive"`
	TotalVotes         int                `bson:"totalVotes"`
}

type voteDoc struct {
	ID                  primitive.ObjectID `bson:"_id"`
	UserID              primitive.ObjectID `bson:"userId"`
	PollID              primitive.ObjectID `bson:"pollId"`
	SelectedOptionIndex int                `bson:"selectedOptionIndex"`
	IsCorrect           bool               `bson:"isCorrect"`
	VotedAt             time.Time          `bson:"votedAt"`
}

// objectID parses a hex ID. Malformed IDs cannot match any document, so
// they map to ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return oid, nil
}

// assignID returns the ObjectID for id, generating one when id is empty.
func assignID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NewObjectID(), nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return oid, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}

func toUserDoc(u *models.User, oid primitive.ObjectID) userDoc {
	return userDoc{
		ID:           oid,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func toPollDoc(p *models.Poll, oid, owner primitive.ObjectID) pollDoc {
	opts := make([]optionDoc, len(p.Options))
	for i, o := range p.Options {
		opts[i] = optionDoc{Text: o.Text, VoteCount: o.VoteCount}
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return pollDoc{
		ID:                 oid,
		Question:           p.Question,
		Options:            opts,
		CorrectOptionIndex: p.CorrectOptionIndex,
		ExplanationNote:    p.ExplanationNote,
		Tags:               tags,
		CreatedBy:          owner,
		CreatedAt:          p.CreatedAt.UTC(),
		ExpiresAt:          p.ExpiresAt.UTC(),
		ShareID:            p.ShareCode,
		IsActive:           p.IsActive,
		TotalVotes:         p.TotalVotes,
	}
}

func (d *pollDoc) model() models.Poll {
	opts := make([]models.Option, len(d.Options))
	for i, o := range d.Options {
		opts[i] = models.Option{Text: o.Text, VoteCount: o.VoteCount}
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	owner := ""
	if !d.CreatedBy.IsZero() {
		owner = d.CreatedBy.Hex()
	}
	return models.Poll{
		ID:                 d.ID.Hex(),
		Question:           d.Question,
		Options:            opts,
		CorrectOptionIndex: d.CorrectOptionIndex,
		ExplanationNote:    d.ExplanationNote,
		Tags:               tags,
		OwnerID:            owner,
		CreatedAt:          d.CreatedAt.UTC(),
		ExpiresAt:          d.ExpiresAt.UTC(),
		ShareCode:          d.ShareID,
		IsActive:           d.IsActive,
		TotalVotes:         d.TotalVotes,
	}
}

func (d *voteDoc) model() models.Vote {
	return models.Vote{
		ID:                  d.ID.Hex(),
		UserID:              d.UserID.Hex(),
		PollID:              d.PollID.Hex(),
		SelectedOptionIndex: d.SelectedOptionIndex,
		IsCorrect:           d.IsCorrect,
		VotedAt:             d.VotedAt.UTC(),
	}
}
