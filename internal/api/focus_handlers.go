package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
	"github.com/focusflowapp/focusflow-server/internal/http/response"
	"github.com/focusflowapp/focusflow-server/internal/service"
)

// handleStartSession begins a new focus session.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.StartSessionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	session, err := s.focusService.Start(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.CreatedMessage(w, session, "Focus session started successfully!", s.logger)
}

// handlePauseSession pauses an active session.
func (s *Server) handlePauseSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.focusService.Pause(ctx, getUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, session, "Session paused", s.logger)
}

// handleResumeSession resumes a paused session.
func (s *Server) handleResumeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.focusService.Resume(ctx, getUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, session, "Session resumed successfully", s.logger)
}

// handleEndSession completes a session and returns the rewards summary.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.EndSessionRequest
	if r.ContentLength != 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	result, err := s.focusService.End(ctx, userID, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	message := "Session completed! You earned " + strconv.Itoa(result.Rewards.TotalXPEarned) + " Flow XP!"
	response.SuccessMessage(w, result, message, s.logger)
}

// handleCancelSession abandons a session without rewards.
func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.focusService.Cancel(ctx, getUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.SuccessMessage(w, session, "Session cancelled", s.logger)
}

// handleAnalyzeSession generates (or returns stored) coaching analysis.
func (s *Server) handleAnalyzeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	analysis, err := s.focusService.AnalyzeWithTimeout(ctx, getUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, analysis, s.logger)
}

// handleListSessions returns a page of session history.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := service.ListSessionsRequest{
		Status: r.URL.Query().Get("status"),
		SortBy: r.URL.Query().Get("sortBy"),
	}

	var err error
	if req.Page, err = queryInt(r, "page", 0); err != nil {
		response.BadRequest(w, "Page must be a positive integer", s.logger)
		return
	}
	if req.Limit, err = queryInt(r, "limit", 0); err != nil {
		response.BadRequest(w, "Limit must be a positive integer", s.logger)
		return
	}

	page, err := s.focusService.List(ctx, getUserID(ctx), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, page, s.logger)
}

// handleSessionStats aggregates completed sessions over a period.
func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	period, err := queryInt(r, "period", 30)
	if err != nil || period < 1 {
		response.BadRequest(w, "Period must be a positive integer", s.logger)
		return
	}

	stats, err := s.focusService.Stats(ctx, getUserID(ctx), period)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, stats, s.logger)
}

// handleActiveSession returns the caller's active session, if any.
func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := s.focusService.Active(ctx, getUserID(ctx))
	if err != nil {
		if domainerrors.Is(err, domainerrors.ErrNotFound) {
			response.SuccessMessage(w, nil, "No active session", s.logger)
			return
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, session, s.logger)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
