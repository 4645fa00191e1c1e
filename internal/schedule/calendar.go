package schedule

import (
	"fmt"
	"time"
)

// minutesPerDay bounds window offsets; windows are minutes since local midnight.
const minutesPerDay = 24 * 60

// consecutiveIdleLimit caps how many days in a row AddWorkingMinutes may scan
// without finding capacity before giving up. A full year covers any holiday
// run a sane calendar can produce.
const consecutiveIdleLimit = 366

// holidayLayout is the local-date key format for holiday lookups.
const holidayLayout = "2006-01-02"

// Window is a half-open working period within a single day, expressed as
// minutes since local midnight: [Start, End).
type Window struct {
	Start int
	End   int
}

// ParseWindow builds a Window from "HH:MM" boundaries.
func ParseWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Calendar answers working-time questions for one organization. It is
// immutable after construction and safe for concurrent use. All local-time
// conversion happens here; callers pass and receive UTC instants.
type Calendar struct {
	timezone string
	loc      *time.Location
	windows  map[time.Weekday][]Window
	holidays map[string]struct{}
}

// NewCalendar validates and builds a calendar. Windows per weekday must be
// sorted, non-overlapping, and have start < end. Holidays are local dates in
// "YYYY-MM-DD" form contributing zero working minutes.
func NewCalendar(timezone string, windows map[time.Weekday][]Window, holidays []string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	normalized := make(map[time.Weekday][]Window, len(windows))
	for day, wins := range windows {
		for i, w := range wins {
			if w.Start < 0 || w.End > minutesPerDay || w.Start >= w.End {
				return nil, fmt.Errorf("%s window %d: start must precede end within the day", day, i)
			}
			if i > 0 && wins[i-1].End > w.Start {
				return nil, fmt.Errorf("%s windows must be sorted and non-overlapping", day)
			}
		}
		normalized[day] = append([]Window(nil), wins...)
	}
	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if _, err := time.Parse(holidayLayout, h); err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", h, err)
		}
		holidaySet[h] = struct{}{}
	}
	return &Calendar{timezone: timezone, loc: loc, windows: normalized, holidays: holidaySet}, nil
}

// Default returns the documented fallback calendar for organizations without
// configured business hours: Mon-Fri 09:00-17:00, UTC, no holidays.
func Default() *Calendar {
	window := Window{Start: 9 * 60, End: 17 * 60}
	cal, err := NewCalendar("UTC", map[time.Weekday][]Window{
		time.Monday:    {window},
		time.Tuesday:   {window},
		time.Wednesday: {window},
		time.Thursday:  {window},
		time.Friday:    {window},
	}, nil)
	if err != nil {
		panic(err)
	}
	return cal
}

// Timezone returns the calendar's IANA zone name.
func (c *Calendar) Timezone() string {
	return c.timezone
}

func (c *Calendar) hasWindows() bool {
	for _, wins := range c.windows {
		if len(wins) > 0 {
			return true
		}
	}
	return false
}

// windowsOn returns the windows applying to the local day containing t,
// empty on holidays.
func (c *Calendar) windowsOn(local time.Time) []Window {
	if _, holiday := c.holidays[local.Format(holidayLayout)]; holiday {
		return nil
	}
	return c.windows[local.Weekday()]
}

// windowBounds resolves a window to absolute instants on the given local day.
func windowBounds(local time.Time, w Window, loc *time.Location) (time.Time, time.Time) {
	y, m, d := local.Date()
	start := time.Date(y, m, d, w.Start/60, w.Start%60, 0, 0, loc)
	end := time.Date(y, m, d, w.End/60, w.End%60, 0, 0, loc)
	return start, end
}

// WorkingMinutesBetween counts the whole minutes of [start, end) that fall
// inside working windows. Returns 0 when end <= start. Iterates day by day,
// never minute by minute, so multi-week ranges stay cheap.
func (c *Calendar) WorkingMinutesBetween(start, end time.Time) (int, error) {
	if !c.hasWindows() {
		return 0, ErrCalendarMisconfigured
	}
	if !end.After(start) {
		return 0, nil
	}
	var total time.Duration
	day := start.In(c.loc)
	endLocal := end.In(c.loc)
	for !day.After(endLocal) {
		for _, w := range c.windowsOn(day) {
			wStart, wEnd := windowBounds(day, w, c.loc)
			if wStart.Before(start) {
				wStart = start
			}
			if wEnd.After(end) {
				wEnd = end
			}
			if wEnd.After(wStart) {
				total += wEnd.Sub(wStart)
			}
		}
		y, m, d := day.Date()
		day = time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
	}
	return int(total / time.Minute), nil
}

// AddWorkingMinutes returns the instant reached by advancing the given number
// of working minutes from start. A start outside any window is first snapped
// forward to the next window opening, so AddWorkingMinutes(t, 0) yields the
// snap point and WorkingMinutesBetween(snap, result) == minutes.
func (c *Calendar) AddWorkingMinutes(start time.Time, minutes int) (time.Time, error) {
	if !c.hasWindows() {
		return time.Time{}, ErrCalendarMisconfigured
	}
	if minutes < 0 {
		minutes = 0
	}
	remaining := time.Duration(minutes) * time.Minute
	day := start.In(c.loc)
	idleDays := 0
	for {
		advanced := false
		for _, w := range c.windowsOn(day) {
			wStart, wEnd := windowBounds(day, w, c.loc)
			cursor := wStart
			if start.After(cursor) {
				cursor = start.In(c.loc)
			}
			if !cursor.Before(wEnd) {
				continue
			}
			capacity := wEnd.Sub(cursor)
			if remaining <= capacity {
				return cursor.Add(remaining).UTC(), nil
			}
			remaining -= capacity
			advanced = true
		}
		if advanced {
			idleDays = 0
		} else {
			idleDays++
			if idleDays > consecutiveIdleLimit {
				return time.Time{}, ErrCalendarMisconfigured
			}
		}
		y, m, d := day.Date()
		day = time.Date(y, m, d+1, 0, 0, 0, 0, c.loc)
	}
}
