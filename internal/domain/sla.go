package domain

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/schedule"
)

// SLATargetKind selects which policy target drives a due date.
type SLATargetKind string

const (
	SLATargetResponse   SLATargetKind = "RESPONSE"
	SLATargetResolution SLATargetKind = "RESOLUTION"
)

// SLAPolicy defines working-minute targets for one (organization, priority)
// pair. Uniqueness of the pair is enforced by storage.
type SLAPolicy struct {
	ID                      string
	OrganizationID          string
	Name                    string
	Priority                TicketPriority
	ResponseTargetMinutes   int
	ResolutionTargetMinutes int
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Target returns the working-minute budget for the given kind.
func (p *SLAPolicy) Target(kind SLATargetKind) int {
	if kind == SLATargetResponse {
		return p.ResponseTargetMinutes
	}
	return p.ResolutionTargetMinutes
}

// DayWindow is one stored working period: weekday plus "HH:MM" bounds.
// A weekday may carry several windows (split shifts); a weekday with none is
// a non-working day.
type DayWindow struct {
	Weekday   time.Weekday
	StartTime string
	EndTime   string
}

// BusinessHours is the stored business-hours configuration of an
// organization, converted to a schedule.Calendar before any computation.
type BusinessHours struct {
	ID             string
	OrganizationID string
	Name           string
	Timezone       string
	Windows        []DayWindow
	Holidays       []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Calendar converts the stored configuration into the scheduling primitive.
func (b *BusinessHours) Calendar() (*schedule.Calendar, error) {
	windows := make(map[time.Weekday][]schedule.Window, 7)
	for _, dw := range b.Windows {
		w, err := schedule.ParseWindow(dw.StartTime, dw.EndTime)
		if err != nil {
			return nil, err
		}
		windows[dw.Weekday] = append(windows[dw.Weekday], w)
	}
	return schedule.NewCalendar(b.Timezone, windows, b.Holidays)
}
