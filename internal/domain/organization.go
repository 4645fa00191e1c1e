package domain

import "time"

// Organization is the tenant boundary. Every record in the system belongs to
// exactly one organization; calendars and SLA policies are scoped to it.
type Organization struct {
	ID        string
	Name      string
	Slug      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Company is a client company served by an organization. End users belong to
// a company.
type Company struct {
	ID             string
	OrganizationID string
	Name           string
	ContactEmail   string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
