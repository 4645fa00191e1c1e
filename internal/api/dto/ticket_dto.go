package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CompanyID   *string               `json:"company_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Tags        []string              `json:"tags"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	CompanyID   *string               `json:"company_id"`
	AssigneeID  *string               `json:"assignee_staff_id"`
	Title       string                `json:"title"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Tags        []string              `json:"tags"`
	DueAt       *time.Time            `json:"due_at"`
	SLABreached bool                  `json:"sla_breached"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID              string                  `json:"id"`
	ExternalKey     string                  `json:"external_key"`
	CompanyID       *string                 `json:"company_id"`
	AssigneeID      *string                 `json:"assignee_staff_id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Status          domain.TicketStatus     `json:"status"`
	Priority        domain.TicketPriority   `json:"priority"`
	Tags            []string                `json:"tags"`
	DueAt           *time.Time              `json:"due_at"`
	SLAAnchorAt     *time.Time              `json:"sla_anchor_at"`
	SLABreached     bool                    `json:"sla_breached"`
	SLAState        string                  `json:"sla_state,omitempty"`
	FirstResponseAt *time.Time              `json:"first_response_at"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	ClosedAt        *time.Time              `json:"closed_at"`
	Comments        []TicketCommentResponse `json:"comments"`
	History         []TicketHistoryResponse `json:"history,omitempty"`
}

// TicketCommentResponse represents a thread entry.
type TicketCommentResponse struct {
	ID          string                   `json:"id"`
	CommentType domain.TicketCommentType `json:"comment_type"`
	AuthorType  domain.CommentAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id"`
	Body        string                   `json:"body"`
	Attachments []AttachmentResponse     `json:"attachments"`
	CreatedAt   time.Time                `json:"created_at"`
}

// TicketHistoryResponse represents an audit entry.
type TicketHistoryResponse struct {
	ID            string                   `json:"id"`
	ChangeType    domain.TicketChangeType  `json:"change_type"`
	ChangedByType domain.CommentAuthorType `json:"changed_by_type"`
	ChangedByID   *string                  `json:"changed_by_id"`
	OldValue      map[string]any           `json:"old_value,omitempty"`
	NewValue      map[string]any           `json:"new_value,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body        string                    `json:"body"`
	CommentType *domain.TicketCommentType `json:"comment_type,omitempty"`
	Attachments []AttachmentRequest       `json:"attachments"`
}

// AttachmentRequest describes attachment input.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload. A null assignee unassigns.
type AssignTicketRequest struct {
	AssigneeStaffID *string `json:"assignee_staff_id"`
}

// SLAResetRequest payload.
type SLAResetRequest struct {
	Reason string `json:"reason"`
}
