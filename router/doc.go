// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Quick Poll API.

# Route Registration

NewRouter wires services and handlers over a store and returns the
fully wrapped handler (recovery, metrics, security headers, CORS):

	handler := router.NewRouter(st, cfg, m, reg)

# Endpoints

Health:

	GET /health
	GET /api
	GET /metrics

Accounts:

	POST /api/auth/register - Create account, returns token
	POST /api/auth/login    - Returns token
	GET  /api/auth/me       - Current user (auth)
	GET  /api/auth/logout   - Clear token cookie (auth)

Polls:

	GET    /api/polls                     - Active polls (page, limit, search, tag, sort)
	POST   /api/polls                     - Create poll (auth)
	GET    /api/polls/{idOrShareCode}     - Poll plus caller's vote
	DELETE /api/polls/{id}                - Delete poll and its votes (owner)
	GET    /api/polls/{idOrShareCode}/results
	GET    /api/polls/me/created          - Caller's polls (auth)
	GET    /api/polls/me/voted            - Caller's vote history (auth)

Voting:

	POST /api/votes/{id}/vote - Submit a vote (auth)

Other GET paths answer 404 with a JSON error body.
*/
package router
