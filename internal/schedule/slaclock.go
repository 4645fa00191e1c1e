package schedule

import "time"

// SLAState is the scheduling view of a ticket's SLA lifecycle. Transitions
// only move forward: PENDING -> AT_RISK -> BREACHED -> CLOSED.
type SLAState string

const (
	SLAStatePending  SLAState = "PENDING"
	SLAStateAtRisk   SLAState = "AT_RISK"
	SLAStateBreached SLAState = "BREACHED"
	SLAStateClosed   SLAState = "CLOSED"
)

// DefaultAtRiskThreshold flags a ticket once less than this share of its
// working-minute budget remains.
const DefaultAtRiskThreshold = 0.2

// SLAClock computes due dates and breach state against one calendar snapshot.
// It is pure: identical inputs always yield identical outputs.
type SLAClock struct {
	Calendar        *Calendar
	AtRiskThreshold float64
}

// NewSLAClock builds a clock over the given calendar.
func NewSLAClock(cal *Calendar) *SLAClock {
	return &SLAClock{Calendar: cal, AtRiskThreshold: DefaultAtRiskThreshold}
}

// ComputeDueDate returns the instant targetMinutes working minutes after
// anchor. Used at ticket creation with anchor = createdAt.
func (c *SLAClock) ComputeDueDate(anchor time.Time, targetMinutes int) (time.Time, error) {
	return c.Calendar.AddWorkingMinutes(anchor, targetMinutes)
}

// Reanchor recomputes a due date after a priority change. The new budget is
// counted from now, not from the original creation time: escalation adjusts
// the remaining window starting at the present rather than rewriting history.
func (c *SLAClock) Reanchor(now time.Time, targetMinutes int) (time.Time, error) {
	return c.Calendar.AddWorkingMinutes(now, targetMinutes)
}

// EvaluateBreach reports whether the ticket counts as breached at now.
// Breach is sticky: once set it stays set. Once the ticket is terminal the
// flag freezes, so a ticket closed before its due date never becomes breached
// no matter when it is re-evaluated.
func EvaluateBreach(dueAt time.Time, now time.Time, terminal, breached bool) bool {
	if terminal {
		return breached
	}
	return breached || now.After(dueAt)
}

// State classifies the ticket at now. anchor is the instant the current due
// date was computed from (creation or the last priority change).
func (c *SLAClock) State(anchor, dueAt, now time.Time, terminal, breached bool) (SLAState, error) {
	if terminal {
		return SLAStateClosed, nil
	}
	if EvaluateBreach(dueAt, now, terminal, breached) {
		return SLAStateBreached, nil
	}
	total, err := c.Calendar.WorkingMinutesBetween(anchor, dueAt)
	if err != nil {
		return "", err
	}
	remaining, err := c.Calendar.WorkingMinutesBetween(now, dueAt)
	if err != nil {
		return "", err
	}
	threshold := c.AtRiskThreshold
	if threshold <= 0 {
		threshold = DefaultAtRiskThreshold
	}
	if total > 0 && float64(remaining) < threshold*float64(total) {
		return SLAStateAtRisk, nil
	}
	return SLAStatePending, nil
}
