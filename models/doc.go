// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest: name, email, password
  - LoginRequest: email, password
  - CreatePollRequest: question, options, correctOptionIndex, tags, explanationNote
  - SubmitVoteRequest: selectedOptionIndex

Index fields are pointers so a missing value can be told apart from zero.

# Domain Types

  - User: account with bcrypt password hash (never serialized)
  - Poll: question, 2-6 embedded Options, correct index, share code, expiry
  - Option: text and vote counter, owned by its Poll
  - Vote: one per (user, poll), with correctness computed at submission

# Envelopes

Every JSON response carries a success flag:

	{"success": true, "data": ...}
	{"success": true, "count": 10, "total": 42, "data": [...]}
	{"success": false, "error": "Poll not found"}

# Constants

	MinOptions = 2, MaxOptions = 6
	ShareCodeLength = 8
	DefaultPollTTL = 72h
*/
package models
