// Package service contains the application services that orchestrate
// domain logic, storage, and the analysis provider.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/focusflowapp/focusflow-server/internal/ai"
	"github.com/focusflowapp/focusflow-server/internal/domain"
	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
	"github.com/focusflowapp/focusflow-server/internal/id"
	"github.com/focusflowapp/focusflow-server/internal/store"
	"github.com/focusflowapp/focusflow-server/internal/validation"
)

// FocusService manages the focus session lifecycle, the reward engine,
// and coaching analysis.
type FocusService struct {
	store     *store.Store
	analyzer  ai.Analyzer
	validator *validation.Validator
	logger    *slog.Logger

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// NewFocusService creates a new focus service.
func NewFocusService(st *store.Store, analyzer ai.Analyzer, validator *validation.Validator, logger *slog.Logger) *FocusService {
	return &FocusService{
		store:     st,
		analyzer:  analyzer,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// StartSessionRequest begins a new focus session.
type StartSessionRequest struct {
	SessionType     string   `json:"session_type" validate:"omitempty,oneof=pomodoro short_break long_break"`
	PlannedDuration int      `json:"planned_duration" validate:"required,gte=1,lte=120"`
	TasksWorkedOn   []string `json:"tasks_worked_on" validate:"omitempty,dive,required"`
}

// EndSessionRequest completes a session.
type EndSessionRequest struct {
	TasksCompleted []string `json:"tasks_completed" validate:"omitempty,dive,required"`
	Notes          string   `json:"notes" validate:"omitempty,max=500"`
}

// ListSessionsRequest filters and paginates a user's session history.
type ListSessionsRequest struct {
	Status string `validate:"omitempty,oneof=active paused completed cancelled"`
	Page   int    `validate:"omitempty,gte=1"`
	Limit  int    `validate:"omitempty,gte=1,lte=50"`
	SortBy string `validate:"omitempty,oneof=start_time created_at focus_score flow_xp_earned"`
}

// CompletionResult pairs the completed session with its rewards summary.
type CompletionResult struct {
	Session *domain.FocusSession `json:"session"`
	Rewards domain.Rewards       `json:"rewards"`
}

// SessionPage is one page of session history.
type SessionPage struct {
	Sessions []*domain.FocusSession `json:"sessions"`
	Count    int                    `json:"count"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	Pages    int                    `json:"pages"`
}

// Start begins a new session for the user. A user can only run one
// active session at a time; a paused session does not block a new one.
func (s *FocusService) Start(ctx context.Context, userID string, req StartSessionRequest) (*domain.FocusSession, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := s.now()

	// Provision the aggregate lazily on first sight of this owner.
	if _, err := s.store.EnsureUser(ctx, userID, now); err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}

	if _, err := s.store.GetActiveFocusSession(ctx, userID); err == nil {
		return nil, domainerrors.Conflict("you already have an active focus session, end it before starting a new one")
	} else if !domainerrors.Is(err, domainerrors.ErrNotFound) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	session := domain.NewFocusSession(
		id.MustGenerate("fses"),
		userID,
		domain.SessionKind(req.SessionType),
		req.PlannedDuration,
		req.TasksWorkedOn,
		now,
	)

	if err := s.store.CreateFocusSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("focus session started",
		"session_id", session.ID,
		"user_id", userID,
		"session_type", session.Kind,
		"planned_duration", session.PlannedDuration)

	return session, nil
}

// Pause moves an active session to paused. Every pause counts as a
// distraction against the focus score.
func (s *FocusService) Pause(ctx context.Context, userID, sessionID string) (*domain.FocusSession, error) {
	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	prev := session.Status
	if err := session.Apply(domain.EventPause, s.now()); err != nil {
		return nil, err
	}
	session.DistractionCount++

	if err := s.store.UpdateFocusSession(ctx, session, prev); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info("focus session paused",
		"session_id", session.ID,
		"user_id", userID,
		"distraction_count", session.DistractionCount)

	return session, nil
}

// Resume moves a paused session back to active. The start time is not
// adjusted, so paused time still counts toward the actual duration.
func (s *FocusService) Resume(ctx context.Context, userID, sessionID string) (*domain.FocusSession, error) {
	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	prev := session.Status
	if err := session.Apply(domain.EventResume, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.UpdateFocusSession(ctx, session, prev); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info("focus session resumed", "session_id", session.ID, "user_id", userID)

	return session, nil
}

// End completes a session, runs the reward engine, and persists the
// session and the updated user aggregate atomically.
func (s *FocusService) End(ctx context.Context, userID, sessionID string, req EndSessionRequest) (*CompletionResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	prev := session.Status
	if err := session.Apply(domain.EventEnd, now); err != nil {
		return nil, err
	}

	rewards := domain.ComputeRewards(session, user, now)

	session.EndTime = &now
	session.ActualDuration = domain.ActualDuration(session.StartTime, now)
	session.FocusScore = rewards.FocusScore
	session.FlowXPEarned = rewards.FlowXPEarned
	session.StreakBonus = rewards.StreakBonus
	if req.TasksCompleted != nil {
		session.TasksCompleted = req.TasksCompleted
	}
	if req.Notes != "" {
		session.Notes = req.Notes
	}

	user.ApplySessionRewards(rewards, now)

	if err := s.store.CompleteFocusSession(ctx, session, prev, user); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	s.logger.Info("focus session completed",
		"session_id", session.ID,
		"user_id", userID,
		"focus_score", rewards.FocusScore,
		"total_xp_earned", rewards.TotalXPEarned,
		"current_streak", rewards.CurrentStreak)

	return &CompletionResult{Session: session, Rewards: rewards}, nil
}

// Cancel abandons a session. No rewards are computed.
func (s *FocusService) Cancel(ctx context.Context, userID, sessionID string) (*domain.FocusSession, error) {
	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	prev := session.Status
	if err := session.Apply(domain.EventCancel, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.UpdateFocusSession(ctx, session, prev); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	s.logger.Info("focus session cancelled", "session_id", session.ID, "user_id", userID)

	return session, nil
}

// Active returns the user's currently active session.
func (s *FocusService) Active(ctx context.Context, userID string) (*domain.FocusSession, error) {
	return s.store.GetActiveFocusSession(ctx, userID)
}

// List returns a page of the user's session history, newest first by
// the chosen sort field.
func (s *FocusService) List(ctx context.Context, userID string, req ListSessionsRequest) (*SessionPage, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 10
	}
	if req.SortBy == "" {
		req.SortBy = "start_time"
	}

	sessions, err := s.store.GetSessionsForUser(ctx, userID, domain.SessionStatus(req.Status))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sortSessions(sessions, req.SortBy)

	total := len(sessions)
	pages := (total + req.Limit - 1) / req.Limit
	start := (req.Page - 1) * req.Limit
	if start > total {
		start = total
	}
	end := min(start+req.Limit, total)

	page := sessions[start:end]
	return &SessionPage{
		Sessions: page,
		Count:    len(page),
		Total:    total,
		Page:     req.Page,
		Pages:    pages,
	}, nil
}

// Stats aggregates the user's completed sessions over the trailing
// period (in days) alongside lifetime totals.
func (s *FocusService) Stats(ctx context.Context, userID string, periodDays int) (*domain.PeriodStats, error) {
	if periodDays < 1 {
		return nil, domainerrors.Validation("period must be a positive integer")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	since := domain.PeriodStart(s.now(), periodDays)
	sessions, err := s.store.GetCompletedSessionsSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load completed sessions: %w", err)
	}

	stats := domain.BuildPeriodStats(sessions, user)
	return &stats, nil
}

// getOwnedSession loads a session and hides its existence from anyone
// but the owner.
func (s *FocusService) getOwnedSession(ctx context.Context, userID, sessionID string) (*domain.FocusSession, error) {
	session, err := s.store.GetFocusSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domainerrors.NotFound("session not found")
	}
	return session, nil
}

// sortSessions orders sessions descending by the given field.
func sortSessions(sessions []*domain.FocusSession, sortBy string) {
	slices.SortStableFunc(sessions, func(a, b *domain.FocusSession) int {
		switch sortBy {
		case "created_at":
			return b.CreatedAt.Compare(a.CreatedAt)
		case "focus_score":
			return b.FocusScore - a.FocusScore
		case "flow_xp_earned":
			return b.FlowXPEarned - a.FlowXPEarned
		default:
			return b.StartTime.Compare(a.StartTime)
		}
	})
}
