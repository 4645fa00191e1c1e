package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// DayWindowRequest is one working period in a business-hours payload.
type DayWindowRequest struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// BusinessHoursRequest payload.
type BusinessHoursRequest struct {
	Name     string             `json:"name"`
	Timezone string             `json:"timezone"`
	Windows  []DayWindowRequest `json:"windows"`
	Holidays []string           `json:"holidays"`
}

// BusinessHoursResponse payload.
type BusinessHoursResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Timezone string             `json:"timezone"`
	Windows  []DayWindowRequest `json:"windows"`
	Holidays []string           `json:"holidays"`
	Default  bool               `json:"default"`
}

// SLAPolicyRequest payload.
type SLAPolicyRequest struct {
	Name                    string                `json:"name"`
	Priority                domain.TicketPriority `json:"priority"`
	ResponseTargetMinutes   int                   `json:"response_target_minutes"`
	ResolutionTargetMinutes int                   `json:"resolution_target_minutes"`
	IsActive                *bool                 `json:"is_active"`
}

// SLAPolicyResponse payload.
type SLAPolicyResponse struct {
	ID                      string                `json:"id"`
	Name                    string                `json:"name"`
	Priority                domain.TicketPriority `json:"priority"`
	ResponseTargetMinutes   int                   `json:"response_target_minutes"`
	ResolutionTargetMinutes int                   `json:"resolution_target_minutes"`
	IsActive                bool                  `json:"is_active"`
	UpdatedAt               time.Time             `json:"updated_at"`
}
