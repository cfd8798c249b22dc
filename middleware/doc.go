// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/polls", middleware.WithLogging(handler))

Logs method, path, client IP, status and duration_ms once the handler returns.

# Server-wide Wrappers

	handler := middleware.Recover(
		middleware.Instrument(m)(
			middleware.SecureHeaders(
				middleware.CORS(cfg.CORSOrigin)(mux))))

Recover turns panics into a 500 JSON error. Instrument records Prometheus
request metrics labelled by the matched route pattern. CORS admits the single
configured frontend origin with credentials.

# Authentication

An Authenticator resolves the Bearer header or the "token" cookie:

	authn := middleware.NewAuthenticator(userService)
	mux.HandleFunc("POST /api/polls", authn.Require(h.CreatePoll))
	mux.HandleFunc("GET /api/polls", authn.Optional(h.ListPolls))

Require answers 401 without a valid token. Optional serves guests too;
handlers read the caller with IdentityFrom or Viewer, which is nil for guests.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

ErrorResponse writes {"success":false,"error":"message"}.
*/
package middleware
