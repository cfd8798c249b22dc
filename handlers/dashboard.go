// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
)

// DashboardHandler serves the signed-in user's own polls and vote history.
type DashboardHandler struct {
	polls *services.PollService
}

func NewDashboardHandler(polls *services.PollService) *DashboardHandler {
	return &DashboardHandler{polls: polls}
}

// GetMyPolls handles GET /api/polls/me/created
func (h *DashboardHandler) GetMyPolls(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}

	polls, err := h.polls.Created(r.Context(), who)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListResponse{
		Success: true,
		Count:   len(polls),
		Total:   len(polls),
		Data:    polls,
	})
}

// GetMyVotes handles GET /api/polls/me/voted
func (h *DashboardHandler) GetMyVotes(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}

	history, err := h.polls.Voted(r.Context(), who)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Success: true, Data: history})
}
