package schedule

import (
	"errors"
	"fmt"
)

// ErrCalendarMisconfigured indicates a calendar with zero working windows on
// every weekday. Walking such a calendar forward would never terminate, so
// both calendar operations refuse it up front.
var ErrCalendarMisconfigured = errors.New("calendar has no working windows configured")

// ErrInvalidInterval indicates an interval whose end is not after its start.
var ErrInvalidInterval = errors.New("interval end must be after start")

// ActiveSessionError is returned when an agent already has an open session.
// The caller should surface "stop your current session first".
type ActiveSessionError struct {
	SessionID string
}

func (e *ActiveSessionError) Error() string {
	return fmt.Sprintf("agent already has an active session %s", e.SessionID)
}

// OverlapError is returned when a candidate interval intersects a closed
// session of the same agent. It names the conflicting session so the caller
// can display it.
type OverlapError struct {
	SessionID string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("interval overlaps existing session %s", e.SessionID)
}
