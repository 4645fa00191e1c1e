package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/schedule"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError. Scheduling errors are
// deterministic input rejections and map to client-facing statuses, never to
// retries.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if de := scheduleDomainError(err); de != nil {
		return de
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

func scheduleDomainError(err error) *DomainError {
	var active *schedule.ActiveSessionError
	if errors.As(err, &active) {
		return &DomainError{
			Code:       "ACTIVE_SESSION_EXISTS",
			Message:    "agent already has an active session",
			HTTPStatus: http.StatusConflict,
			Details:    map[string]any{"session_id": active.SessionID},
			Err:        err,
		}
	}
	var overlap *schedule.OverlapError
	if errors.As(err, &overlap) {
		return &DomainError{
			Code:       "SESSION_OVERLAP",
			Message:    "interval overlaps an existing session",
			HTTPStatus: http.StatusConflict,
			Details:    map[string]any{"session_id": overlap.SessionID},
			Err:        err,
		}
	}
	if errors.Is(err, schedule.ErrInvalidInterval) {
		return &DomainError{
			Code:       "INVALID_INTERVAL",
			Message:    "interval end must be after start",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	}
	if errors.Is(err, schedule.ErrCalendarMisconfigured) {
		return &DomainError{
			Code:       "CALENDAR_MISCONFIGURED",
			Message:    "organization calendar has no working windows",
			HTTPStatus: http.StatusUnprocessableEntity,
			Err:        err,
		}
	}
	return nil
}
