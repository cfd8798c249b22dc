// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-quiz/auth"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/store"
)

const (
	MinPasswordLength = 6
	maxNameLength     = 50
)

type UserService struct {
	users    store.Users
	secret   []byte
	tokenTTL time.Duration
}

func NewUserService(users store.Users, secret string, tokenTTL time.Duration) *UserService {
	return &UserService{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Register creates an account and returns it with a session token.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	switch {
	case name == "":
		return nil, "", invalid("Please add a name")
	case len([]rune(name)) > maxNameLength:
		return nil, "", invalid("Name can not be more than %d characters", maxNameLength)
	case email == "":
		return nil, "", invalid("Please add an email")
	case !validEmail(email):
		return nil, "", invalid("Please add a valid email")
	case len(req.Password) < MinPasswordLength:
		return nil, "", invalid("Password must be at least %d characters", MinPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", invalid("Please provide an email and password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, s.secret, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// Identify resolves a session token to the caller's identity.
func (s *UserService) Identify(ctx context.Context, token string) (auth.Identity, error) {
	userID, err := auth.ParseToken(token, s.secret)
	if err != nil {
		return auth.Identity{}, ErrInvalidCredentials
	}
	user, err := s.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return auth.Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{UserID: user.ID, Name: user.Name}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.Index(email, "@"):], ".")
}
