package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// TaskRequest payload for create and update.
type TaskRequest struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Status          domain.TaskStatus `json:"status"`
	DueDate         *time.Time        `json:"due_date"`
	AssignedStaffID *string           `json:"assigned_staff_id"`
	TicketID        *string           `json:"ticket_id"`
}

// TaskResponse representation.
type TaskResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Status          domain.TaskStatus `json:"status"`
	DueDate         *time.Time        `json:"due_date"`
	AssignedStaffID *string           `json:"assigned_staff_id"`
	TicketID        *string           `json:"ticket_id"`
	CreatedByID     string            `json:"created_by_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
