package schedule

import (
	"errors"
	"testing"
	"time"
)

func weekdayCalendar(t *testing.T, tz string) *Calendar {
	t.Helper()
	window := Window{Start: 9 * 60, End: 17 * 60}
	cal, err := NewCalendar(tz, map[time.Weekday][]Window{
		time.Monday:    {window},
		time.Tuesday:   {window},
		time.Wednesday: {window},
		time.Thursday:  {window},
		time.Friday:    {window},
	}, nil)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	return cal
}

func TestNewCalendarValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		tz      string
		windows map[time.Weekday][]Window
		wantErr bool
	}{
		{
			name:    "valid split shift",
			tz:      "UTC",
			windows: map[time.Weekday][]Window{time.Monday: {{Start: 540, End: 720}, {Start: 780, End: 1020}}},
		},
		{
			name:    "unknown timezone",
			tz:      "Mars/Olympus",
			windows: map[time.Weekday][]Window{time.Monday: {{Start: 540, End: 1020}}},
			wantErr: true,
		},
		{
			name:    "start not before end",
			tz:      "UTC",
			windows: map[time.Weekday][]Window{time.Monday: {{Start: 600, End: 600}}},
			wantErr: true,
		},
		{
			name:    "overlapping windows",
			tz:      "UTC",
			windows: map[time.Weekday][]Window{time.Monday: {{Start: 540, End: 780}, {Start: 720, End: 1020}}},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCalendar(tc.tz, tc.windows, nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewCalendar err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestWorkingMinutesBetween(t *testing.T) {
	t.Parallel()
	cal := weekdayCalendar(t, "UTC")

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{
			name:  "inside one day",
			start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), // Monday
			end:   time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC),
			want:  150,
		},
		{
			name:  "clipped to window edges",
			start: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC),
			want:  480,
		},
		{
			name:  "weekend contributes nothing",
			start: time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), // Saturday
			end:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), // Monday midnight
			want:  0,
		},
		{
			name:  "friday afternoon into monday",
			start: time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC), // Friday 16:00
			end:   time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC), // Monday 10:00
			want:  120,
		},
		{
			name:  "full week",
			start: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			want:  5 * 480,
		},
		{
			name:  "end before start is zero",
			start: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
			end:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			want:  0,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := cal.WorkingMinutesBetween(tc.start, tc.end)
			if err != nil {
				t.Fatalf("WorkingMinutesBetween: %v", err)
			}
			if got != tc.want {
				t.Fatalf("WorkingMinutesBetween = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestWorkingMinutesNeverExceedsWallClock(t *testing.T) {
	t.Parallel()
	cal := weekdayCalendar(t, "America/New_York")
	start := time.Date(2026, 3, 2, 3, 17, 0, 0, time.UTC)
	for _, span := range []time.Duration{time.Hour, 26 * time.Hour, 9 * 24 * time.Hour} {
		end := start.Add(span)
		got, err := cal.WorkingMinutesBetween(start, end)
		if err != nil {
			t.Fatalf("WorkingMinutesBetween: %v", err)
		}
		if got < 0 || got > int(span/time.Minute) {
			t.Fatalf("span %v: got %d minutes, outside [0, %d]", span, got, int(span/time.Minute))
		}
	}
}

// Ticket created Friday 16:00 with a 120-working-minute target is due
// Monday 10:00: 60 minutes remaining Friday plus 60 Monday.
func TestAddWorkingMinutesCrossesWeekend(t *testing.T) {
	t.Parallel()
	cal := weekdayCalendar(t, "UTC")
	start := time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC) // Friday
	got, err := cal.AddWorkingMinutes(start, 120)
	if err != nil {
		t.Fatalf("AddWorkingMinutes: %v", err)
	}
	want := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) // Monday
	if !got.Equal(want) {
		t.Fatalf("AddWorkingMinutes = %v, want %v", got, want)
	}
}

func TestAddWorkingMinutesSnapsOutsideWindow(t *testing.T) {
	t.Parallel()
	cal := weekdayCalendar(t, "UTC")

	// Saturday morning snaps to Monday 09:00 before counting.
	start := time.Date(2026, 3, 7, 11, 0, 0, 0, time.UTC)
	got, err := cal.AddWorkingMinutes(start, 30)
	if err != nil {
		t.Fatalf("AddWorkingMinutes: %v", err)
	}
	want := time.Date(2026, 3, 9, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("AddWorkingMinutes = %v, want %v", got, want)
	}

	// Zero minutes yields the snap point itself.
	snap, err := cal.AddWorkingMinutes(start, 0)
	if err != nil {
		t.Fatalf("AddWorkingMinutes: %v", err)
	}
	if !snap.Equal(time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("snap = %v", snap)
	}
}

func TestAddWorkingMinutesRoundTrip(t *testing.T) {
	t.Parallel()
	cal := weekdayCalendar(t, "America/New_York")
	for _, minutes := range []int{0, 1, 59, 480, 481, 2400} {
		anchor := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC) // inside a window
		due, err := cal.AddWorkingMinutes(anchor, minutes)
		if err != nil {
			t.Fatalf("AddWorkingMinutes(%d): %v", minutes, err)
		}
		back, err := cal.WorkingMinutesBetween(anchor, due)
		if err != nil {
			t.Fatalf("WorkingMinutesBetween: %v", err)
		}
		if back != minutes {
			t.Fatalf("round trip for %d minutes yielded %d", minutes, back)
		}
	}
}

func TestHolidaySkipped(t *testing.T) {
	t.Parallel()
	window := Window{Start: 9 * 60, End: 17 * 60}
	cal, err := NewCalendar("UTC", map[time.Weekday][]Window{
		time.Monday:  {window},
		time.Tuesday: {window},
	}, []string{"2026-03-02"}) // that Monday is a holiday
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	got, err := cal.AddWorkingMinutes(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 60)
	if err != nil {
		t.Fatalf("AddWorkingMinutes: %v", err)
	}
	want := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC) // Tuesday
	if !got.Equal(want) {
		t.Fatalf("AddWorkingMinutes = %v, want %v", got, want)
	}
}

func TestEmptyCalendarIsMisconfigured(t *testing.T) {
	t.Parallel()
	cal, err := NewCalendar("UTC", nil, nil)
	if err != nil {
		t.Fatalf("NewCalendar: %v", err)
	}
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	if _, err := cal.AddWorkingMinutes(now, 10); !errors.Is(err, ErrCalendarMisconfigured) {
		t.Fatalf("AddWorkingMinutes err = %v, want ErrCalendarMisconfigured", err)
	}
	if _, err := cal.WorkingMinutesBetween(now, now.Add(time.Hour)); !errors.Is(err, ErrCalendarMisconfigured) {
		t.Fatalf("WorkingMinutesBetween err = %v, want ErrCalendarMisconfigured", err)
	}
}

func TestTimezoneConversion(t *testing.T) {
	t.Parallel()
	cal := weekdayCalendar(t, "America/New_York")
	// 13:00 UTC on 2026-03-02 is 08:00 in New York, an hour before opening.
	start := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	got, err := cal.AddWorkingMinutes(start, 30)
	if err != nil {
		t.Fatalf("AddWorkingMinutes: %v", err)
	}
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC) // 09:30 local
	if !got.Equal(want) {
		t.Fatalf("AddWorkingMinutes = %v, want %v", got, want)
	}
}
