package domain

import "time"

// Notification is a persisted in-app message for one recipient. ReadAt is the
// read marker; nil means unread.
type Notification struct {
	ID             string
	OrganizationID string
	RecipientType  SubjectType
	RecipientID    string
	Title          string
	Message        string
	TicketID       *string
	ReadAt         *time.Time
	CreatedAt      time.Time
}
