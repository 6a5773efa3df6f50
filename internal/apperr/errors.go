// Package apperr provides the error codes surfaced by the support service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeInvalidInput          ErrorCode = "INVALID_INPUT"
	CodeNotificationNotFound  ErrorCode = "NOTIFICATION_NOT_FOUND"
	CodeNotificationResolved  ErrorCode = "NOTIFICATION_RESOLVED"
	CodeSessionNotFound       ErrorCode = "SESSION_NOT_FOUND"
	CodePersistenceFailed     ErrorCode = "PERSISTENCE_FAILED"
	CodeEventPublishFailed    ErrorCode = "EVENT_PUBLISH_FAILED"
	CodeTitleGenerationFailed ErrorCode = "TITLE_GENERATION_FAILED"
)

// AppError is a structured error carrying a stable code.
type AppError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Err       error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any *AppError with the same code.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewInvalidInput(details string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: "invalid input", Details: details}
}

func NewNotificationNotFound(id string) *AppError {
	return &AppError{Code: CodeNotificationNotFound, Message: "notification not found", Details: id}
}

func NewNotificationResolved(id string) *AppError {
	return &AppError{Code: CodeNotificationResolved, Message: "notification already resolved", Details: id}
}

func NewSessionNotFound(userID string) *AppError {
	return &AppError{Code: CodeSessionNotFound, Message: "chat session not found", Details: userID}
}

func NewPersistenceFailed(err error) *AppError {
	return &AppError{Code: CodePersistenceFailed, Message: "persistence failed", Details: err.Error(), Retryable: true, Err: err}
}

func NewEventPublishFailed(event string, err error) *AppError {
	return &AppError{Code: CodeEventPublishFailed, Message: "event publish failed", Details: event, Retryable: true, Err: err}
}

func NewTitleGenerationFailed(err error) *AppError {
	return &AppError{Code: CodeTitleGenerationFailed, Message: "title generation failed", Details: err.Error(), Retryable: true, Err: err}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidInput         = &AppError{Code: CodeInvalidInput}
	ErrNotificationNotFound = &AppError{Code: CodeNotificationNotFound}
	ErrNotificationResolved = &AppError{Code: CodeNotificationResolved}
	ErrSessionNotFound      = &AppError{Code: CodeSessionNotFound}
	ErrPersistenceFailed    = &AppError{Code: CodePersistenceFailed}
	ErrEventPublishFailed   = &AppError{Code: CodeEventPublishFailed}
	ErrTitleGeneration      = &AppError{Code: CodeTitleGenerationFailed}
)

// HTTPStatus maps an error to the status code the HTTP layer answers with.
func HTTPStatus(err error) int {
	var ae *AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotificationNotFound, CodeSessionNotFound:
		return http.StatusNotFound
	case CodeNotificationResolved:
		return http.StatusConflict
	case CodePersistenceFailed, CodeEventPublishFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the error code of err, or "" when err is not an *AppError.
func Code(err error) ErrorCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
