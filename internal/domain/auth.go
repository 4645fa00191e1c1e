package domain

import "time"

// SubjectType differentiates users vs staff tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "END_USER"
	SubjectTypeStaff SubjectType = "STAFF"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID             string
	SubjectID      string
	Subject        SubjectType
	OrganizationID string
	Role           *StaffRole
	ExpiresAt      time.Time
	IssuedAt       time.Time
}
