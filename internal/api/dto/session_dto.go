package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// StartSessionRequest payload for live timers. A zero start time means now.
type StartSessionRequest struct {
	TicketID   *string                   `json:"ticket_id"`
	StartTime  *time.Time                `json:"start_time"`
	Note       string                    `json:"note"`
	Visibility *domain.SessionVisibility `json:"visibility"`
}

// StopSessionRequest payload. A zero end time means now.
type StopSessionRequest struct {
	EndTime *time.Time `json:"end_time"`
}

// ManualEntryRequest payload for after-the-fact sessions.
type ManualEntryRequest struct {
	TicketID   *string                   `json:"ticket_id"`
	StartTime  time.Time                 `json:"start_time"`
	EndTime    time.Time                 `json:"end_time"`
	Note       string                    `json:"note"`
	Visibility *domain.SessionVisibility `json:"visibility"`
}

// SessionResponse payload.
type SessionResponse struct {
	ID              string                   `json:"id"`
	AgentID         string                   `json:"agent_id"`
	TicketID        *string                  `json:"ticket_id"`
	StartTime       time.Time                `json:"start_time"`
	EndTime         *time.Time               `json:"end_time"`
	DurationMinutes *int                     `json:"duration_minutes"`
	Note            string                   `json:"note"`
	Visibility      domain.SessionVisibility `json:"visibility"`
	CreatedAt       time.Time                `json:"created_at"`
}

// SessionAggregateResponse payload.
type SessionAggregateResponse struct {
	AgentID      string     `json:"agent_id"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	TotalMinutes int        `json:"total_minutes"`
}
