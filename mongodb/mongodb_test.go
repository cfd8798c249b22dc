// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = objectID("abcd1234")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAssignID(t *testing.T) {
	generated, err := assignID("")
	require.NoError(t, err)
	assert.False(t, generated.IsZero())

	_, err = assignID("not-hex")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestObjectIDsSkipsInvalid(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	got := objectIDs([]string{a.Hex(), "bogus", b.Hex()})
	assert.Equal(t, []primitive.ObjectID{a, b}, got)
}

func TestPollDocRoundTrip(t *testing.T) {
	oid, owner := primitive.NewObjectID(), primitive.NewObjectID()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &models.Poll{
		Question:           "Largest planet?",
		Options:            []models.Option{{Text: "Mars"}, {Text: "Jupiter", VoteCount: 3}},
		CorrectOptionIndex: 1,
		ExplanationNote:    "Jupiter is a gas giant.",
		OwnerID:            owner.Hex(),
		CreatedAt:          now,
		ExpiresAt:          now.Add(time.Hour),
		ShareCode:          "Ab3dEf9h",
		IsActive:           true,
		TotalVotes:         3,
	}

	doc := toPollDoc(p, oid, owner)
	assert.Equal(t, []string{}, doc.Tags, "nil tags stored as empty array")

	got := doc.model()
	assert.Equal(t, oid.Hex(), got.ID)
	assert.Equal(t, owner.Hex(), got.OwnerID)
	assert.Equal(t, p.Options, got.Options)
	assert.Equal(t, p.ShareCode, got.ShareCode)
	assert.Equal(t, p.ExpiresAt, got.ExpiresAt)
	assert.Equal(t, 3, got.TotalVotes)
}

func TestSortSpec(t *testing.T) {
	tests := []struct {
		sort store.Sort
		want bson.D
	}{
		{store.Sort{}, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}},
		{store.Sort{Field: store.SortCreatedAt, Desc: true}, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{store.Sort{Field: store.SortExpiresAt}, bson.D{{Key: "expiresAt", Value: 1}, {Key: "_id", Value: 1}}},
		{store.Sort{Field: store.SortTotalVotes, Desc: true}, bson.D{{Key: "totalVotes", Value: -1}, {Key: "_id", Value: -1}}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s desc=%v", tt.sort.Field, tt.sort.Desc), func(t *testing.T) {
			assert.Equal(t, tt.want, sortSpec(tt.sort))
		})
	}
}

// Integration tests need a running server, e.g.
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./mongodb/
func setupStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbName := fmt.Sprintf("quickpoll_test_%d", time.Now().UnixNano())
	s, err := Connect(ctx, uri, dbName)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Database().Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestIntegration_PollLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	owner := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "h"}
	require.NoError(t, s.Users().Create(ctx, owner))
	assert.ErrorIs(t, s.Users().Create(ctx, &models.User{Email: "alice@example.com"}), store.ErrDuplicate)

	now := time.Now().UTC()
	p := &models.Poll{
		Question:  "Capital of France?",
		Options:   []models.Option{{Text: "Paris"}, {Text: "Rome"}},
		Tags:      []string{"geography"},
		OwnerID:   owner.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
		ShareCode: "Paris001",
		IsActive:  true,
	}
	require.NoError(t, s.Polls().Create(ctx, p))

	dup := *p
	dup.ID = ""
	assert.ErrorIs(t, s.Polls().Create(ctx, &dup), store.ErrDuplicate)

	byCode, err := s.Polls().GetByShareCode(ctx, "Paris001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)

	require.NoError(t, s.Polls().IncrementVote(ctx, p.ID, 0))
	assert.ErrorIs(t, s.Polls().IncrementVote(ctx, p.ID, 5), store.ErrNotFound)

	got, err := s.Polls().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Options[0].VoteCount)
	assert.Equal(t, 1, got.TotalVotes)

	polls, total, err := s.Polls().List(ctx, store.PollFilter{ActiveAt: time.Now(), Search: "FRAN"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, polls, 1)

	voter := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, s.Users().Create(ctx, voter))
	require.NoError(t, s.Votes().Create(ctx, &models.Vote{UserID: voter.ID, PollID: p.ID}))
	assert.ErrorIs(t, s.Votes().Create(ctx, &models.Vote{UserID: voter.ID, PollID: p.ID}), store.ErrDuplicate)

	votes, err := s.Votes().ListByUser(ctx, voter.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)

	votes, err = s.Votes().ListForPolls(ctx, voter.ID, []string{p.ID, "not-an-object-id"})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, p.ID, votes[0].PollID)

	votes, err = s.Votes().ListForPolls(ctx, owner.ID, []string{p.ID})
	require.NoError(t, err)
	assert.Empty(t, votes)

	n, err :=s.Votes().DeleteByPolls(ctx, []string{p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Polls().Delete(ctx, p.ID))
	assert.ErrorIs(t, s.Polls().Delete(ctx, p.ID), store.ErrNotFound)
}

func TestIntegration_ListExpired(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	owner := &models.User{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, s.Users().Create(ctx, owner))

	now := time.Now().UTC()
	for i, offset := range []time.Duration{time.Hour, -time.Hour} {
		require.NoError(t, s.Polls().Create(ctx, &models.Poll{
			Question:  "Q",
			Options:   []models.Option{{Text: "a"}, {Text: "b"}},
			OwnerID:   owner.ID,
			CreatedAt: now,
			ExpiresAt: now.Add(offset),
			ShareCode: fmt.Sprintf("code000%d", i),
			IsActive:  true,
		}))
	}

	ids, err := s.Polls().ListExpired(ctx, now)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
