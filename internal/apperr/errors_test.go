package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("respond: %w", NewNotificationResolved("n-1"))

	assert.True(t, errors.Is(err, ErrNotificationResolved))
	assert.False(t, errors.Is(err, ErrNotificationNotFound))
	assert.Equal(t, CodeNotificationResolved, Code(err))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceFailed(cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAppError_SideEffectFailures(t *testing.T) {
	cause := errors.New("connection reset")

	pub := NewEventPublishFailed("support.notification.updated", cause)
	assert.ErrorIs(t, pub, ErrEventPublishFailed)
	assert.ErrorIs(t, pub, cause)
	assert.Equal(t, CodeEventPublishFailed, Code(pub))
	assert.Contains(t, pub.Error(), "support.notification.updated")

	title := NewTitleGenerationFailed(cause)
	assert.ErrorIs(t, title, ErrTitleGeneration)
	assert.Equal(t, CodeTitleGenerationFailed, Code(title))
	assert.Equal(t, ErrorCode(""), Code(cause))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", NewInvalidInput("text is empty"), http.StatusBadRequest},
		{"not found", NewNotificationNotFound("x"), http.StatusNotFound},
		{"session not found", NewSessionNotFound("u"), http.StatusNotFound},
		{"resolved", NewNotificationResolved("x"), http.StatusConflict},
		{"persistence", NewPersistenceFailed(errors.New("down")), http.StatusServiceUnavailable},
		{"publish", NewEventPublishFailed("support.notification.created", errors.New("nack")), http.StatusServiceUnavailable},
		{"title", NewTitleGenerationFailed(errors.New("quota")), http.StatusInternalServerError},
		{"plain error", errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
