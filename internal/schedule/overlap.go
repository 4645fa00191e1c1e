package schedule

import "time"

// SessionRef is the slice of a stored session the overlap guard needs:
// identity plus interval. Callers pass every session of one agent; sessions
// of other agents must not be included, overlap across agents is allowed.
type SessionRef struct {
	ID       string
	Interval Interval
}

// ValidateSession decides whether a candidate interval may be written for an
// agent given that agent's existing sessions.
//
// An open candidate (live start) is rejected with ActiveSessionError when any
// existing session is still open: at most one timer per agent. A closed
// candidate (manual entry or backfill) is additionally checked for half-open
// intersection against every closed session; the first conflict is reported
// as an OverlapError naming the stored session.
func ValidateSession(candidate Interval, existing []SessionRef) error {
	if candidate.Closed() && !candidate.End.After(candidate.Start) {
		return ErrInvalidInterval
	}
	for _, ref := range existing {
		if !ref.Interval.Closed() {
			return &ActiveSessionError{SessionID: ref.ID}
		}
	}
	if !candidate.Closed() {
		return nil
	}
	for _, ref := range existing {
		if candidate.Overlaps(ref.Interval) {
			return &OverlapError{SessionID: ref.ID}
		}
	}
	return nil
}

// CloseInterval stamps the end bound and derives the session's duration in
// wall-clock minutes. Unlike SLA math this deliberately counts every elapsed
// minute, not just business hours: tracked time is tracked time.
func CloseInterval(iv Interval, end time.Time) (Interval, int, error) {
	if !end.After(iv.Start) {
		return Interval{}, 0, ErrInvalidInterval
	}
	closed := Interval{Start: iv.Start, End: &end}
	return closed, closed.Minutes(), nil
}

// AggregateMinutes sums the durations of the closed intervals. Open intervals
// contribute nothing until closed. Plain order-independent sum; overlap is
// already prevented at write time, so no deduplication is needed.
func AggregateMinutes(refs []SessionRef) int {
	total := 0
	for _, ref := range refs {
		total += ref.Interval.Minutes()
	}
	return total
}
