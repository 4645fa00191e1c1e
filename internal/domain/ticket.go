package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// IsTerminal reports whether the status freezes SLA evaluation.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for support requests. DueAt and SLABreached are
// owned by the scheduling core: DueAt is set at creation and re-anchored on
// priority changes, SLABreached is sticky and freezes at terminal status.
type Ticket struct {
	ID              string
	OrganizationID  string
	ExternalKey     string
	RequesterID     string
	CompanyID       *string
	AssigneeID      *string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	Tags            []string
	DueAt           *time.Time
	SLAAnchorAt     *time.Time
	SLABreached     bool
	FirstResponseAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ClosedAt        *time.Time
}
