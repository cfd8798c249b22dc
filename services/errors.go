// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("poll not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrPollInactive       = errors.New("poll has expired")
	ErrInvalidOption      = errors.New("invalid option index")
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyVoted       = errors.New("you have already voted on this poll")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotOwner           = errors.New("not authorized to delete this poll")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
