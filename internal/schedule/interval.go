package schedule

import "time"

// Interval is a half-open time range [Start, End). A nil End means the
// interval is still open (an in-progress session).
type Interval struct {
	Start time.Time
	End   *time.Time
}

// NewClosedInterval builds a closed interval, rejecting end <= start.
func NewClosedInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: &end}, nil
}

// Closed reports whether both bounds are set.
func (iv Interval) Closed() bool {
	return iv.End != nil
}

// Overlaps reports whether two closed intervals intersect under half-open
// semantics: [a, b) and [b, c) are adjacent, not overlapping. Open intervals
// never report overlap here; they are handled by the active-session rule.
func (iv Interval) Overlaps(other Interval) bool {
	if !iv.Closed() || !other.Closed() {
		return false
	}
	return iv.Start.Before(*other.End) && other.Start.Before(*iv.End)
}

// Minutes returns the wall-clock length of a closed interval in whole
// minutes. Open intervals contribute 0 until closed.
func (iv Interval) Minutes() int {
	if !iv.Closed() {
		return 0
	}
	return int(iv.End.Sub(iv.Start) / time.Minute)
}
