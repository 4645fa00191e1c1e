package domain

import "time"

// FilterEntityType names the list a saved filter applies to.
type FilterEntityType string

const (
	FilterEntityTickets  FilterEntityType = "tickets"
	FilterEntityTasks    FilterEntityType = "tasks"
	FilterEntitySessions FilterEntityType = "sessions"
)

// Valid reports whether the entity type is a known value.
func (t FilterEntityType) Valid() bool {
	switch t {
	case FilterEntityTickets, FilterEntityTasks, FilterEntitySessions:
		return true
	}
	return false
}

// SavedFilter is a named, reusable set of list query parameters owned by a
// staff member. Shared filters are visible to the whole organization; the
// config is stored opaquely and interpreted client-side.
type SavedFilter struct {
	ID             string
	OrganizationID string
	StaffID        string
	Name           string
	EntityType     FilterEntityType
	Config         map[string]any
	Shared         bool
	CreatedAt      time.Time
}
