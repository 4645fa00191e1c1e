package domain

import "time"

// CommentAuthorType indicates who authored a comment.
type CommentAuthorType string

const (
	AuthorTypeUser   CommentAuthorType = "END_USER"
	AuthorTypeStaff  CommentAuthorType = "STAFF"
	AuthorTypeSystem CommentAuthorType = "SYSTEM"
)

// TicketCommentType differentiates staff-only notes from client replies.
type TicketCommentType string

const (
	CommentTypePublicReply  TicketCommentType = "PUBLIC_REPLY"
	CommentTypeInternalNote TicketCommentType = "INTERNAL_NOTE"
)

// TicketComment captures one entry of a ticket thread.
type TicketComment struct {
	ID             string
	TicketID       string
	OrganizationID string
	AuthorType     CommentAuthorType
	AuthorID       *string
	CommentType    TicketCommentType
	Body           string
	Attachments    []AttachmentReference
	CreatedAt      time.Time
}

// AttachmentReference stores metadata for ticket attachments. File bodies
// live in external storage; only the key is kept here.
type AttachmentReference struct {
	ID         string
	TicketID   string
	CommentID  *string
	UploadedBy string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
