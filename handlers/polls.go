// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/quickly-quiz/middleware"
	"github.com/danielhkuo/quickly-quiz/models"
	"github.com/danielhkuo/quickly-quiz/services"
)

type PollHandler struct {
	polls *services.PollService
}

func NewPollHandler(polls *services.PollService) *PollHandler {
	return &PollHandler{polls: polls}
}

// ListPolls handles GET /api/polls?page&limit&search&tag&sort
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, ok := queryInt(w, q.Get("page"), "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	result, err := h.polls.List(r.Context(), services.ListParams{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
		Sort:   q.Get("sort"),
	}, middleware.Viewer(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListResponse{
		Success: true,
		Count:   len(result.Polls),
		Total:   result.Total,
		Page:    result.Page,
		Pages:   (result.Total + result.Limit - 1) / result.Limit,
		Data:    result.Polls,
	})
}

// queryInt parses an optional integer query parameter. Empty means zero.
func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

// CreatePoll handles POST /api/polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.polls.Create(r.Context(), who, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "share_id", poll.ShareCode, "owner", who.UserID)
	middleware.JSONResponse(w, http.StatusCreated, models.DataResponse{Success: true, Data: poll})
}

// GetPoll handles GET /api/polls/{id}, where id is a poll ID or share code.
// Guests get the poll alone; signed-in callers also see their own vote.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	detail, err := h.polls.Lookup(r.Context(), r.PathValue("id"), middleware.Viewer(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Success: true, Data: detail})
}

// DeletePoll handles DELETE /api/polls/{id}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	who, ok := caller(w, r)
	if !ok {
		return
	}

	pollID := r.PathValue("id")
	if err := h.polls.Delete(r.Context(), pollID, who); err != nil {
		writeServiceError(w, r, err)
		return
	}

	slog.Info("poll deleted", "poll_id", pollID, "owner", who.UserID)
	middleware.JSONResponse(w, http.StatusOK, models.DataResponse{Success: true, Data: struct{}{}})
}
