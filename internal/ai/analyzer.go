// Package ai provides the coaching analysis capability for completed
// focus sessions. The service talks to the Analyzer interface; the
// concrete provider is selected at startup from config.
package ai

import (
	"context"

	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
)

// Analyzer produces a chat completion for a coaching prompt.
// Implementations return the raw completion text; parsing and fallback
// handling belong to the caller.
type Analyzer interface {
	Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Disabled is the Analyzer used when no provider is configured.
type Disabled struct{}

// Analyze always reports the capability as unavailable.
func (Disabled) Analyze(context.Context, string, string) (string, error) {
	return "", domainerrors.Upstream("session analysis is not configured")
}

// NewDisabled creates an Analyzer that rejects every request.
func NewDisabled() Analyzer {
	return Disabled{}
}
