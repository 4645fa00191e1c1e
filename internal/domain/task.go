package domain

import "time"

// TaskStatus enumerates the to-do lifecycle.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Valid reports whether the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task is an internal staff to-do, optionally linked to a ticket. Unlike
// tickets, tasks carry no SLA clock; DueDate is informational.
type Task struct {
	ID              string
	OrganizationID  string
	Title           string
	Description     string
	Status          TaskStatus
	DueDate         *time.Time
	AssignedStaffID *string
	TicketID        *string
	CreatedByID     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
