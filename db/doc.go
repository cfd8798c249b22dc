// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db implements store.Store on PostgreSQL (lib/pq) and SQLite
(modernc.org/sqlite).

# Connecting

	conn, err := db.Open(ctx, db.TypePostgres, "postgres://...")
	if err := db.Migrate(ctx, conn, db.TypePostgres); err != nil {
		log.Fatal(err)
	}
	st := db.NewStore(conn)

Migrations are embedded SQL files applied with goose. Migrate is safe to
call on every start.

# Tables

  - users: accounts, unique email
  - poll: poll document header, unique share_code
  - poll_option: embedded options keyed by (poll_id, position)
  - poll_tag: tags keyed by (poll_id, tag)
  - vote: one row per (user_id, poll_id), enforced by UNIQUE

# Relationships

	users 1──* poll
	poll  1──* poll_option
	poll  1──* poll_tag
	poll  1┄┄* vote   (no foreign key, removed explicitly)

Deleting a poll removes its options and tags in one transaction. Votes are
deleted by the caller first.

# Counters

IncrementVote updates the option counter and the poll's total_votes with
in-place arithmetic, so concurrent votes never lose increments here.
*/
package db
