package response

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"status": "ok"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Error)
	assert.NotNil(t, env.Data)
}

func TestCreatedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	CreatedMessage(rec, map[string]int{"planned_duration": 25}, "Focus session started successfully!", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Focus session started successfully!", env.Message)
}

func TestSuccess_NullData(t *testing.T) {
	rec := httptest.NewRecorder()
	SuccessMessage(rec, nil, "No active session", nil)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "No active session", env.Message)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		write      func(w http.ResponseWriter)
		wantStatus int
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "nope", nil) }, http.StatusBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "nope", nil) }, http.StatusUnauthorized},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "nope", nil) }, http.StatusNotFound},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "nope", nil) }, http.StatusConflict},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "nope", nil) }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.Code)

			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, "nope", env.Error)
		})
	}
}

func TestHandleError_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domainerrors.Conflict("you already have an active focus session"), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "you already have an active focus session", env.Error)
}

func TestHandleError_InvalidTransition(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, domainerrors.InvalidTransition("cannot resume a completed session"), nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, assert.AnError, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal server error", env.Error)
}
