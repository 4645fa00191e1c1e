package events

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventSLABreached           EventType = "sla_breached"
	EventSLAReset              EventType = "sla_reset"
	EventSessionStarted        EventType = "session_started"
	EventSessionStopped        EventType = "session_stopped"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// SystemActor marks events emitted by background workers.
func SystemActor() Actor {
	return Actor{Type: "SYSTEM"}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	TicketID       string      `json:"ticket_id,omitempty"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CompanyID *string               `json:"company_id,omitempty"`
	Priority  domain.TicketPriority `json:"priority"`
	Title     string                `json:"title"`
	DueAt     *time.Time            `json:"due_at,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
	NewDueAt    *time.Time            `json:"new_due_at,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeStaffID *string `json:"assignee_staff_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string                   `json:"comment_id"`
	CommentType domain.TicketCommentType `json:"comment_type"`
	AuthorType  domain.CommentAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	BodyPreview string                   `json:"body_preview"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	DueAt      time.Time             `json:"due_at"`
	Priority   domain.TicketPriority `json:"priority"`
	DetectedAt time.Time             `json:"detected_at"`
}

// SLAResetPayload payload.
type SLAResetPayload struct {
	NewDueAt *time.Time `json:"new_due_at,omitempty"`
	Reason   string     `json:"reason,omitempty"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	SessionID string    `json:"session_id"`
	AgentID   string    `json:"agent_id"`
	TicketID  *string   `json:"ticket_id,omitempty"`
	StartTime time.Time `json:"start_time"`
}

// SessionStoppedPayload payload.
type SessionStoppedPayload struct {
	SessionID       string  `json:"session_id"`
	AgentID         string  `json:"agent_id"`
	TicketID        *string `json:"ticket_id,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
}
