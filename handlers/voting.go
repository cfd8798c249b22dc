// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
)

type VotingHandler struct {
	votes *services.VoteService
}

func NewVotingHandler(votes *services.VoteService) *VotingHandler {
	return &VotingHandler{votes: votes}
}

// SubmitVote handles POST /api/votes/{id}/vote
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.SelectedOptionIndex == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "selectedOptionIndex is required")
		return
	}

	pollID := r.PathValue("id")
	result, err := h.votes.Submit(r.Context(), pollID, who, *req.SelectedOptionIndex)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("vote submitted", "poll_id", pollID, "user_id", who.UserID, "correct", result.IsCorrect)
	middleware.JSONResponse(w, http.StatusCreated, models.DataResponse{Success: true, Data: result})
}
