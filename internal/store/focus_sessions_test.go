package store

import (
	"context"
	"testing"
	"time"

	"github.com/focusflowapp/focusflow-server/internal/domain"
	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(id, userID string, start time.Time) *domain.FocusSession {
	return domain.NewFocusSession(id, userID, domain.KindPomodoro, 25, nil, start)
}

func TestCreateAndGetFocusSession(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	session := newTestSession("fses-abc", "user-1", start)
	session.TasksWorkedOn = []string{"task-1", "task-2"}

	require.NoError(t, s.CreateFocusSession(ctx, session))

	retrieved, err := s.GetFocusSession(ctx, "fses-abc")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, session.UserID, retrieved.UserID)
	assert.Equal(t, domain.StatusActive, retrieved.Status)
	assert.Equal(t, []string{"task-1", "task-2"}, retrieved.TasksWorkedOn)
	assert.True(t, retrieved.StartTime.Equal(start))
}

func TestGetFocusSession_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetFocusSession(context.Background(), "fses-missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestGetActiveFocusSession(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now()

	_, err := s.GetActiveFocusSession(ctx, "user-1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	session := newTestSession("fses-1", "user-1", start)
	require.NoError(t, s.CreateFocusSession(ctx, session))

	active, err := s.GetActiveFocusSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "fses-1", active.ID)

	// Another user's active session is invisible.
	_, err = s.GetActiveFocusSession(ctx, "user-2")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestUpdateFocusSession_MovesStatusIndex(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now()

	session := newTestSession("fses-1", "user-1", start)
	require.NoError(t, s.CreateFocusSession(ctx, session))

	prev := session.Status
	require.NoError(t, session.Apply(domain.EventPause, start.Add(5*time.Minute)))
	session.DistractionCount++
	require.NoError(t, s.UpdateFocusSession(ctx, session, prev))

	// No longer indexed as active.
	_, err := s.GetActiveFocusSession(ctx, "user-1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	paused, err := s.GetSessionsForUser(ctx, "user-1", domain.StatusPaused)
	require.NoError(t, err)
	require.Len(t, paused, 1)
	assert.Equal(t, 1, paused[0].DistractionCount)
}

func TestCompleteFocusSession_Atomic(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(25 * time.Minute)

	user := domain.NewUser("user-1", start)
	require.NoError(t, s.CreateUser(ctx, user))

	session := newTestSession("fses-1", "user-1", start)
	require.NoError(t, s.CreateFocusSession(ctx, session))

	prev := session.Status
	require.NoError(t, session.Apply(domain.EventEnd, end))
	session.EndTime = &end
	session.ActualDuration = 25
	session.FocusScore = 100
	session.FlowXPEarned = 75

	user.ApplySessionRewards(domain.Rewards{
		FlowXPEarned:  75,
		TotalXPEarned: 75,
		CurrentStreak: 1,
	}, end)

	require.NoError(t, s.CompleteFocusSession(ctx, session, prev, user))

	gotSession, err := s.GetFocusSession(ctx, "fses-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, gotSession.Status)
	assert.Equal(t, 75, gotSession.FlowXPEarned)

	gotUser, err := s.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 75, gotUser.XP)
	assert.Equal(t, 1, gotUser.TotalFocusSessions)

	completed, err := s.GetSessionsForUser(ctx, "user-1", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestGetSessionsForUser_FiltersByStatus(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	start := time.Now()

	active := newTestSession("fses-1", "user-1", start)
	require.NoError(t, s.CreateFocusSession(ctx, active))

	cancelled := newTestSession("fses-2", "user-1", start.Add(-time.Hour))
	require.NoError(t, s.CreateFocusSession(ctx, cancelled))
	prev := cancelled.Status
	require.NoError(t, cancelled.Apply(domain.EventCancel, start))
	require.NoError(t, s.UpdateFocusSession(ctx, cancelled, prev))

	all, err := s.GetSessionsForUser(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyCancelled, err := s.GetSessionsForUser(ctx, "user-1", domain.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, onlyCancelled, 1)
	assert.Equal(t, "fses-2", onlyCancelled[0].ID)
}

func TestGetCompletedSessionsSince(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	complete := func(id string, createdAt time.Time) {
		session := newTestSession(id, "user-1", createdAt)
		session.CreatedAt = createdAt
		require.NoError(t, s.CreateFocusSession(ctx, session))

		prev := session.Status
		require.NoError(t, session.Apply(domain.EventEnd, createdAt.Add(25*time.Minute)))
		require.NoError(t, s.UpdateFocusSession(ctx, session, prev))
	}

	complete("fses-old", now.AddDate(0, 0, -40))
	complete("fses-recent", now.AddDate(0, 0, -5))
	complete("fses-today", now)

	since := now.AddDate(0, 0, -30)
	sessions, err := s.GetCompletedSessionsSince(ctx, "user-1", since)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.False(t, session.CreatedAt.Before(since))
	}
}
