// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
)

type ResultsHandler struct {
	polls *services.PollService
}

func NewResultsHandler(polls *services.PollService) *ResultsHandler {
	return &ResultsHandler{polls: polls}
}

// GetResults handles GET /api/polls/{id}/results
// Tallies are public and available while the poll is still open.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.polls.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Success: true, Data: results})
}
