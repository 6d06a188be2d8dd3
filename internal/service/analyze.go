package service

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"strings"
	"time"

	"github.com/focusflowapp/focusflow-server/internal/domain"
	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
)

const analysisSystemPrompt = "You are an expert productivity coach. Provide concise, actionable insights in JSON format only."

// analysisPayload is the JSON shape the provider is asked to return.
type analysisPayload struct {
	Summary           string   `json:"summary"`
	Strengths         []string `json:"strengths"`
	Improvements      []string `json:"improvements"`
	ProductivityScore int      `json:"productivityScore"`
	Recommendations   []string `json:"recommendations"`
}

// Analyze generates coaching analysis for a completed session. The
// call is idempotent: a session that was already analyzed returns the
// stored payload without hitting the provider again.
func (s *FocusService) Analyze(ctx context.Context, userID, sessionID string) (*domain.SessionAnalysis, error) {
	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.StatusCompleted {
		return nil, domainerrors.NotFound("completed session not found")
	}

	if session.AIAnalysis != nil {
		return session.AIAnalysis, nil
	}

	content, err := s.analyzer.Analyze(ctx, analysisSystemPrompt, buildAnalysisPrompt(session))
	if err != nil {
		s.logger.Error("analysis provider call failed",
			"session_id", session.ID,
			"user_id", userID,
			"error", err)
		return nil, err
	}
	if content == "" {
		return nil, domainerrors.Internal("failed to generate session analysis")
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		// The provider went off-script; fall back to a canned payload
		// rather than failing the request.
		s.logger.Warn("analysis response was not valid JSON, using fallback",
			"session_id", session.ID,
			"error", err)
		payload = fallbackAnalysis(session.FocusScore)
	}

	analysis := &domain.SessionAnalysis{
		Summary:           payload.Summary,
		Strengths:         payload.Strengths,
		Improvements:      payload.Improvements,
		ProductivityScore: payload.ProductivityScore,
		Recommendations:   payload.Recommendations,
		GeneratedAt:       s.now(),
	}

	session.AIAnalysis = analysis
	session.UpdatedAt = analysis.GeneratedAt
	if err := s.store.UpdateFocusSession(ctx, session, session.Status); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}

	s.logger.Info("session analysis generated",
		"session_id", session.ID,
		"user_id", userID,
		"productivity_score", analysis.ProductivityScore)

	return analysis, nil
}

// buildAnalysisPrompt renders the session's numbers into the coaching
// prompt. Task lists are passed as counts, not contents.
func buildAnalysisPrompt(session *domain.FocusSession) string {
	var b strings.Builder
	b.WriteString("You are a productivity coach analyzing a focus session. Provide insights and recommendations.\n\n")
	b.WriteString("Session Details:\n")
	fmt.Fprintf(&b, "- Planned Duration: %d minutes\n", session.PlannedDuration)
	fmt.Fprintf(&b, "- Actual Duration: %d minutes\n", session.ActualDuration)
	fmt.Fprintf(&b, "- Focus Score: %d/100\n", session.FocusScore)
	fmt.Fprintf(&b, "- Distractions: %d\n", session.DistractionCount)
	fmt.Fprintf(&b, "- Tasks Worked On: %d\n", len(session.TasksWorkedOn))
	fmt.Fprintf(&b, "- Tasks Completed: %d\n", len(session.TasksCompleted))
	b.WriteString("\nProvide a JSON response with the following structure:\n")
	b.WriteString(`{
  "summary": "Brief 2-3 sentence overview of the session",
  "strengths": ["strength 1", "strength 2", "strength 3"],
  "improvements": ["improvement 1", "improvement 2", "improvement 3"],
  "productivityScore": number (0-100),
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3"]
}`)
	b.WriteString("\n\nBe encouraging but honest. Focus on actionable insights.")
	return b.String()
}

// fallbackAnalysis is the canned payload used when the provider's
// response cannot be parsed.
func fallbackAnalysis(focusScore int) analysisPayload {
	return analysisPayload{
		Summary:           "Session completed successfully. Keep up the good work!",
		Strengths:         []string{"Completed a focus session", "Maintained concentration", "Made progress on tasks"},
		Improvements:      []string{"Try to minimize distractions", "Plan ahead for longer sessions", "Take regular breaks"},
		ProductivityScore: focusScore,
		Recommendations:   []string{"Set clear goals before starting", "Use the Pomodoro technique", "Review your progress daily"},
	}
}

// analysisTimeout bounds a single provider call.
const analysisTimeout = 30 * time.Second

// AnalyzeWithTimeout wraps Analyze with the provider deadline.
func (s *FocusService) AnalyzeWithTimeout(ctx context.Context, userID, sessionID string) (*domain.SessionAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()
	return s.Analyze(ctx, userID, sessionID)
}
