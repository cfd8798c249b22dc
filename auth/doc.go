// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides credential, token and identifier utilities.

# Passwords

Passwords are hashed with bcrypt:

	hash, err := auth.HashPassword("secret")
	err = auth.CheckPassword(hash, "secret") // nil or ErrInvalidCredentials

# Session Tokens

Sessions are HS256 JWTs carrying the user ID:

	token, err := auth.GenerateToken(userID, secret, 720*time.Hour)
	userID, err := auth.ParseToken(token, secret)

Any parse failure, including expiry and a foreign signing method, is
reported as ErrInvalidToken.

# Share Codes

Share codes are short random base62 strings used in public poll URLs:

	code, err := auth.GenerateShareCode(8)

They are not derived from the poll ID. The store's unique index catches the
rare collision and the caller draws again.
*/
package auth
