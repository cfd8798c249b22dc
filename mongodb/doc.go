// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package mongodb implements store.Store on MongoDB.

Polls are stored as single documents with options and tags embedded, the
same shape the API returns. IDs are ObjectIDs, exposed as hex strings.

# Collections

  - users: unique index on email
  - polls: unique index on shareId, plus expiresAt, createdAt and tags
  - votes: unique compound index on (userId, pollId)

Connect creates the indexes, so a fresh database is ready to serve.

# Counters

IncrementVote uses a single $inc on options.N.voteCount and totalVotes,
which MongoDB applies atomically per document.
*/
package mongodb
