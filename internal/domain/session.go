package domain

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/schedule"
)

// SessionVisibility controls whether a tracked session shows up on client
// facing reports.
type SessionVisibility string

const (
	SessionVisibilityInternal      SessionVisibility = "INTERNAL"
	SessionVisibilityClientVisible SessionVisibility = "CLIENT_VISIBLE"
)

// Session is one time-tracking record of an agent, optionally bound to a
// ticket. EndTime nil means the timer is still running; at most one such
// session may exist per agent.
type Session struct {
	ID              string
	OrganizationID  string
	AgentID         string
	TicketID        *string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Note            string
	Visibility      SessionVisibility
	CreatedAt       time.Time
}

// Interval exposes the session bounds as the scheduling primitive.
func (s *Session) Interval() schedule.Interval {
	return schedule.Interval{Start: s.StartTime, End: s.EndTime}
}

// Ref converts the session for overlap validation.
func (s *Session) Ref() schedule.SessionRef {
	return schedule.SessionRef{ID: s.ID, Interval: s.Interval()}
}

// SessionRefs maps stored sessions to the guard's input.
func SessionRefs(sessions []Session) []schedule.SessionRef {
	refs := make([]schedule.SessionRef, 0, len(sessions))
	for i := range sessions {
		refs = append(refs, sessions[i].Ref())
	}
	return refs
}
