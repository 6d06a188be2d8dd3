// Package domain contains the core types and pure business rules:
// focus sessions, the session state machine, the reward engine, and
// the user aggregate they feed.
package domain

import (
	"time"

	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
)

// SessionKind classifies a focus session.
type SessionKind string

const (
	KindPomodoro   SessionKind = "pomodoro"
	KindShortBreak SessionKind = "short_break"
	KindLongBreak  SessionKind = "long_break"
)

// SessionStatus is the lifecycle state of a focus session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// SessionEvent is a lifecycle action applied to a session.
type SessionEvent string

const (
	EventPause  SessionEvent = "pause"
	EventResume SessionEvent = "resume"
	EventEnd    SessionEvent = "end"
	EventCancel SessionEvent = "cancel"
)

// transitions enumerates every legal (status, event) pair.
// Anything absent from this table is an invalid transition.
var transitions = map[SessionStatus]map[SessionEvent]SessionStatus{
	StatusActive: {
		EventPause:  StatusPaused,
		EventEnd:    StatusCompleted,
		EventCancel: StatusCancelled,
	},
	StatusPaused: {
		EventResume: StatusActive,
		EventCancel: StatusCancelled,
	},
}

// Transition returns the status reached by applying event to from.
// Illegal pairs return an invalid-transition error carrying both sides,
// so handlers can map it to a conflict response instead of a not-found.
func Transition(from SessionStatus, event SessionEvent) (SessionStatus, error) {
	if next, ok := transitions[from][event]; ok {
		return next, nil
	}
	return from, domainerrors.InvalidTransition(
		"cannot " + string(event) + " a " + string(from) + " session")
}

// SessionAnalysis is the coaching payload generated for a completed session.
type SessionAnalysis struct {
	Summary           string    `json:"summary"`
	Strengths         []string  `json:"strengths"`
	Improvements      []string  `json:"improvements"`
	ProductivityScore int       `json:"productivity_score"`
	Recommendations   []string  `json:"recommendations"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// FocusSession is a single timed work or break interval.
type FocusSession struct {
	ID     string        `json:"id"`
	UserID string        `json:"user_id"`
	Kind   SessionKind   `json:"session_type"`
	Status SessionStatus `json:"status"`

	PlannedDuration int `json:"planned_duration"` // minutes, 1-120
	ActualDuration  int `json:"actual_duration"`  // minutes, derived at completion

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	TasksWorkedOn  []string `json:"tasks_worked_on"`
	TasksCompleted []string `json:"tasks_completed"`

	DistractionCount int `json:"distraction_count"`
	FocusScore       int `json:"focus_score"`
	FlowXPEarned     int `json:"flow_xp_earned"`
	StreakBonus      int `json:"streak_bonus"`

	Notes      string           `json:"notes,omitempty"` // max 500 chars
	AIAnalysis *SessionAnalysis `json:"ai_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFocusSession creates an active session starting now.
func NewFocusSession(id, userID string, kind SessionKind, plannedDuration int, tasksWorkedOn []string, now time.Time) *FocusSession {
	if kind == "" {
		kind = KindPomodoro
	}
	if tasksWorkedOn == nil {
		tasksWorkedOn = []string{}
	}
	return &FocusSession{
		ID:              id,
		UserID:          userID,
		Kind:            kind,
		Status:          StatusActive,
		PlannedDuration: plannedDuration,
		StartTime:       now,
		TasksWorkedOn:   tasksWorkedOn,
		TasksCompleted:  []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Apply moves the session through the state machine, stamping UpdatedAt.
func (s *FocusSession) Apply(event SessionEvent, now time.Time) error {
	next, err := Transition(s.Status, event)
	if err != nil {
		return err
	}
	s.Status = next
	s.UpdatedAt = now
	return nil
}
