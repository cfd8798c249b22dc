// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/quickly-quiz/cliparse"
	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
)

type AuthHandler struct {
	users *services.UserService
	cfg   cliparse.Config
}

func NewAuthHandler(users *services.UserService, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, token, err := h.users.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	h.sendToken(w, http.StatusCreated, user, token)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, token, err := h.users.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.sendToken(w, http.StatusOK, user, token)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), who.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Success: true, Data: user})
}

// Logout handles GET /api/auth/logout. Tokens are stateless, so logging out
// only overwrites the browser cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Success: true, Data: struct{}{}})
}

func (h *AuthHandler) sendToken(w http.ResponseWriter, status int, user *models.User, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWTExpire),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.JSONResponse(w, status, models.AuthResponse{
		Success: true,
		Token:   token,
		User:    user.Summary(),
	})
}
