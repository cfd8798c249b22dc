// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Quick Poll API.

# Handler Types

Each handler is a struct over one or more services:

  - AuthHandler: registration, login, current user, logout
  - PollHandler: listing, creation, lookup and deletion of polls
  - VotingHandler: vote submission
  - ResultsHandler: per-option tallies and correct-answer rate
  - DashboardHandler: the caller's created polls and vote history

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(pollService)

# Authentication

Handlers never parse tokens. Routes are wrapped by middleware.Authenticator,
and handlers read the caller from the request context. Routes wrapped with
Require always have one; Optional routes see nil for guests.

# Responses

Successful responses use the envelopes in package models:

	{"success": true, "data": ...}
	{"success": true, "count": 10, "total": 42, "page": 1, "pages": 5, "data": [...]}

Service errors go through writeServiceError, the only place that maps
errors to status codes:

	validation, bad option, expired poll, taken email -> 400
	bad credentials, not the owner                   -> 401
	missing poll or user                             -> 404
	second vote on a poll                            -> 409
	anything else                                    -> 500 "Server Error"

# Voting Flow

	GET  /api/polls/{idOrShareCode} -> GetPoll (hasVoted for signed-in callers)
	POST /api/votes/{id}/vote       -> SubmitVote (201 with isCorrect and correctOptionIndex)
*/
package handlers
