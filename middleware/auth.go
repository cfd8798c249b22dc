// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/quickly-quiz/auth"
)

// TokenCookie is the cookie carrying the session token for browser clients.
const TokenCookie = "token"

// Identifier resolves a session token to the user it was issued for.
type Identifier interface {
	Identify(ctx context.Context, token string) (auth.Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by Authenticator, if any.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Viewer is IdentityFrom as an optional value: nil for guests.
func Viewer(ctx context.Context) *auth.Identity {
	if id, ok := IdentityFrom(ctx); ok {
		return &id
	}
	return nil
}

// TokenFromRequest returns the bearer token, falling back to the token
// cookie. Empty when neither is present.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "none" {
		return c.Value
	}
	return ""
}

type Authenticator struct {
	users Identifier
}

func NewAuthenticator(users Identifier) *Authenticator {
	return &Authenticator{users: users}
}

// Require rejects requests without a valid token with 401.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		id, err := a.users.Identify(r.Context(), token)
		if err != nil {
			slog.Debug("rejected token", "path", r.URL.Path, "error", err)
			ErrorResponse(w, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}

		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}

// Optional attaches the caller when a valid token is present and otherwise
// serves the request as a guest.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			next(w, r)
			return
		}

		id, err := a.users.Identify(r.Context(), token)
		if err != nil {
			next(w, r)
			return
		}
		next(w, r.WithContext(WithIdentity(r.Context(), id)))
	}
}
