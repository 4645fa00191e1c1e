package schedule

import (
	"errors"
	"testing"
	"time"
)

func closedRef(id string, start, end time.Time) SessionRef {
	return SessionRef{ID: id, Interval: Interval{Start: start, End: &end}}
}

func TestValidateSessionLiveStart(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	// No sessions yet: starting a timer is fine.
	if err := ValidateSession(Interval{Start: base}, nil); err != nil {
		t.Fatalf("ValidateSession = %v, want nil", err)
	}

	// A second start while one timer runs is rejected.
	open := []SessionRef{{ID: "s1", Interval: Interval{Start: base}}}
	err := ValidateSession(Interval{Start: base.Add(30 * time.Minute)}, open)
	var active *ActiveSessionError
	if !errors.As(err, &active) {
		t.Fatalf("ValidateSession err = %v, want ActiveSessionError", err)
	}
	if active.SessionID != "s1" {
		t.Fatalf("conflicting session = %q, want s1", active.SessionID)
	}
}

func TestValidateSessionManualEntry(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	existing := []SessionRef{closedRef("s1", at(10, 0), at(11, 0))}

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantID  string
		wantErr bool
	}{
		{name: "overlapping entry rejected", start: at(10, 30), end: at(11, 30), wantErr: true, wantID: "s1"},
		{name: "contained entry rejected", start: at(10, 15), end: at(10, 45), wantErr: true, wantID: "s1"},
		{name: "adjacent entry accepted", start: at(11, 0), end: at(12, 0)},
		{name: "earlier adjacent accepted", start: at(9, 0), end: at(10, 0)},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			end := tc.end
			err := ValidateSession(Interval{Start: tc.start, End: &end}, existing)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("ValidateSession = %v, want nil", err)
				}
				return
			}
			var overlap *OverlapError
			if !errors.As(err, &overlap) {
				t.Fatalf("ValidateSession err = %v, want OverlapError", err)
			}
			if overlap.SessionID != tc.wantID {
				t.Fatalf("conflicting session = %q, want %q", overlap.SessionID, tc.wantID)
			}
		})
	}
}

func TestValidateSessionManualEntryBlockedByRunningTimer(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	existing := []SessionRef{{ID: "timer", Interval: Interval{Start: base}}}
	end := base.Add(-time.Hour)
	err := ValidateSession(Interval{Start: base.Add(-2 * time.Hour), End: &end}, existing)
	var active *ActiveSessionError
	if !errors.As(err, &active) {
		t.Fatalf("ValidateSession err = %v, want ActiveSessionError", err)
	}
}

// Identical ranges are fine for different agents: the guard only ever sees
// one agent's sessions, so an empty existing slice models the other agent.
func TestDifferentAgentsMayOverlap(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	for _, agent := range []string{"agent-a", "agent-b"} {
		if err := ValidateSession(Interval{Start: start, End: &end}, nil); err != nil {
			t.Fatalf("agent %s: ValidateSession = %v, want nil", agent, err)
		}
	}
}

func TestValidateSessionRejectsInvertedInterval(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(-time.Minute)
	if err := ValidateSession(Interval{Start: start, End: &end}, nil); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("ValidateSession err = %v, want ErrInvalidInterval", err)
	}
}

func TestCloseInterval(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC)

	// Duration is wall-clock: closing Friday 16:00 -> Saturday 16:00 is a
	// full 1440 minutes even though almost none of it is business hours.
	closed, minutes, err := CloseInterval(Interval{Start: start}, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("CloseInterval: %v", err)
	}
	if minutes != 1440 {
		t.Fatalf("minutes = %d, want 1440", minutes)
	}
	if !closed.Closed() {
		t.Fatal("interval not closed")
	}

	if _, _, err := CloseInterval(Interval{Start: start}, start); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("CloseInterval err = %v, want ErrInvalidInterval", err)
	}
}

func TestAggregateMinutes(t *testing.T) {
	t.Parallel()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	refs := []SessionRef{
		closedRef("a", day.Add(9*time.Hour), day.Add(10*time.Hour)),
		closedRef("b", day.Add(11*time.Hour), day.Add(11*time.Hour+30*time.Minute)),
		{ID: "open", Interval: Interval{Start: day.Add(13 * time.Hour)}},
	}
	if got := AggregateMinutes(refs); got != 90 {
		t.Fatalf("AggregateMinutes = %d, want 90", got)
	}
	// Order independence.
	reversed := []SessionRef{refs[2], refs[1], refs[0]}
	if got := AggregateMinutes(reversed); got != 90 {
		t.Fatalf("AggregateMinutes reversed = %d, want 90", got)
	}
}
