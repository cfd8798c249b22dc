// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/services"
)

// writeServiceError maps a service error to its HTTP status and client
// message. Unknown errors are logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, services.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option index")
	case errors.Is(err, services.ErrPollInactive):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Poll has expired")
	case errors.Is(err, services.ErrEmailTaken):
		middleware.ErrorResponse(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrNotOwner):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Not authorized to delete this poll")
	case errors.Is(err, services.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, services.ErrUserNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted on this poll")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Server Error")
	}
}

// caller returns the authenticated identity, answering 401 when the route
// was not wrapped by Authenticator.Require.
func caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Not authorized to access this route")
	}
	return id, ok
}
