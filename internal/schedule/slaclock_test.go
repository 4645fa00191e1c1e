package schedule

import (
	"testing"
	"time"
)

func TestComputeDueDateIsPure(t *testing.T) {
	t.Parallel()
	clock := NewSLAClock(weekdayCalendar(t, "UTC"))
	anchor := time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC)
	first, err := clock.ComputeDueDate(anchor, 120)
	if err != nil {
		t.Fatalf("ComputeDueDate: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := clock.ComputeDueDate(anchor, 120)
		if err != nil {
			t.Fatalf("ComputeDueDate: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("ComputeDueDate not deterministic: %v vs %v", again, first)
		}
	}
	if want := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC); !first.Equal(want) {
		t.Fatalf("ComputeDueDate = %v, want %v", first, want)
	}
}

func TestEvaluateBreach(t *testing.T) {
	t.Parallel()
	dueAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) // Tuesday 09:00

	cases := []struct {
		name     string
		now      time.Time
		terminal bool
		breached bool
		want     bool
	}{
		{
			name: "before due",
			now:  dueAt.Add(-time.Hour),
			want: false,
		},
		{
			name: "past due and open",
			now:  dueAt.Add(time.Minute),
			want: true,
		},
		{
			name:     "closed before due stays clean even evaluated later",
			now:      dueAt.Add(48 * time.Hour),
			terminal: true,
			breached: false,
			want:     false,
		},
		{
			name:     "closed after breach stays breached",
			now:      dueAt.Add(48 * time.Hour),
			terminal: true,
			breached: true,
			want:     true,
		},
		{
			name:     "sticky while open",
			now:      dueAt.Add(-time.Hour),
			breached: true,
			want:     true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := EvaluateBreach(dueAt, tc.now, tc.terminal, tc.breached); got != tc.want {
				t.Fatalf("EvaluateBreach = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReanchorCountsFromNow(t *testing.T) {
	t.Parallel()
	clock := NewSLAClock(weekdayCalendar(t, "UTC"))
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC) // Tuesday
	due, err := clock.Reanchor(now, 240)
	if err != nil {
		t.Fatalf("Reanchor: %v", err)
	}
	if want := time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC); !due.Equal(want) {
		t.Fatalf("Reanchor = %v, want %v", due, want)
	}
}

func TestSLAStateProgression(t *testing.T) {
	t.Parallel()
	clock := NewSLAClock(weekdayCalendar(t, "UTC"))
	anchor := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC) // Tuesday 09:00
	dueAt, err := clock.ComputeDueDate(anchor, 100)
	if err != nil {
		t.Fatalf("ComputeDueDate: %v", err)
	}

	cases := []struct {
		name     string
		now      time.Time
		terminal bool
		breached bool
		want     SLAState
	}{
		{name: "fresh", now: anchor.Add(10 * time.Minute), want: SLAStatePending},
		{name: "under twenty percent left", now: anchor.Add(85 * time.Minute), want: SLAStateAtRisk},
		{name: "past due", now: dueAt.Add(time.Minute), want: SLAStateBreached},
		{name: "terminal freezes", now: dueAt.Add(time.Hour), terminal: true, breached: true, want: SLAStateClosed},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := clock.State(anchor, dueAt, tc.now, tc.terminal, tc.breached)
			if err != nil {
				t.Fatalf("State: %v", err)
			}
			if got != tc.want {
				t.Fatalf("State = %s, want %s", got, tc.want)
			}
		})
	}
}
