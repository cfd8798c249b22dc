// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Quick Poll API server.

Quick Poll is a quiz-style polling service: each poll has one correct
option, voters get one vote per poll, and the answer is revealed as soon as
they vote.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=quickpoll.db JWT_SECRET=change-me go run .

Or with flags:

	go run . -p 5000 -t postgres -d "postgres://..." -jwt-secret change-me

A .env file in the working directory is read first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path, PostgreSQL DSN or MongoDB URI
  - JWT_SECRET (-jwt-secret): Token signing secret

Optional settings:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite, postgres or mongo (default: sqlite)
  - MONGO_DATABASE: Database name for mongo (default: quickpoll)
  - JWT_EXPIRE: Token lifetime, e.g. 30d or 12h (default: 30d)
  - CORS_ORIGIN (-cors-origin): Frontend origin (default: http://localhost:5173)
  - POLL_TTL: Default poll lifetime (default: 72h)
  - SWEEP_INTERVAL: Expired poll cleanup cadence (default: 1h)
  - DEBUG (-debug): Debug logging

# Architecture

  - handlers: HTTP request handlers (auth, polls, voting, results, dashboard)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, CORS, auth, metrics, JSON helpers
  - services: Vote submission, poll and user operations
  - store: Storage contracts, implemented by db (SQL) and mongodb
  - sweeper: Background removal of expired polls
  - metrics: Prometheus collectors
  - auth: Passwords, tokens and share codes
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
