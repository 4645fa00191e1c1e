package domain

import "time"

// UserStatus represents lifecycle states for an end-user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for end-users who submit tickets. A user belongs
// to an organization and optionally to one of its client companies.
type User struct {
	ID             string
	OrganizationID string
	CompanyID      *string
	Name           string
	Email          string
	PasswordHash   string
	Status         UserStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
