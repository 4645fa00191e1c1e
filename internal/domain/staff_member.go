package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAgent   StaffRole = "AGENT"
	StaffRoleManager StaffRole = "MANAGER"
	StaffRoleAdmin   StaffRole = "ADMIN"
)

// StaffMember models a support agent or administrator of one organization.
// Sessions are tracked against the staff member's ID, so it is also the
// "agent" of the session overlap rules.
type StaffMember struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
	PasswordHash   string
	Role           StaffRole
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
