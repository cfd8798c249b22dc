// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package services holds the application logic between HTTP handlers and the
store.

# Vote Submission

VoteService.Submit checks, in order: the poll exists, it is active and not
expired, the option index is in range, and the user has not voted. It then
stores the vote and increments the option counter. The store's unique
(user, poll) constraint is the final guard against concurrent duplicates.

The two writes are not atomic. If the increment fails after the vote is
stored, the vote stands, the failure is logged and counted, and the caller
gets an error. Counters may under-report in that case.

# Polls

PollService covers create, lookup, listing, owner delete, results and the
per-user dashboards. Lookup accepts an ID or an 8-character share code and
calls ReconcileExpiry, which marks an expired poll inactive. That is the
only read path that writes.

# Users

UserService registers and authenticates accounts and issues JWTs.

# Errors

Every failure a client can cause is one of the package's sentinel errors,
or a *ValidationError that matches ErrValidation. Anything else is an
internal error.
*/
package services
