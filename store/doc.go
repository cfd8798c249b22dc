// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store declares the persistence contracts shared by the SQL and
MongoDB backends.

Implementations live in package db (PostgreSQL, SQLite) and package mongodb.
Both map driver errors onto the sentinels here:

	if errors.Is(err, store.ErrNotFound) { ... }
	if errors.Is(err, store.ErrDuplicate) { ... }

ErrDuplicate is the only concurrency guard in the system: a second vote for
the same (user, poll) pair fails on the backend's unique constraint.
*/
package store
