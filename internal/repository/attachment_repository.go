package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// AttachmentRepository persists attachment metadata. Bodies live in external
// storage; only the storage key is stored here.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.AttachmentReference) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AttachmentReference, error)
	ListByComment(ctx context.Context, commentID string) ([]domain.AttachmentReference, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

const attachmentColumns = `id, ticket_id, comment_id, uploaded_by, storage_key, file_name, mime_type, size_bytes, created_at`

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.AttachmentReference) error {
	const query = `
        INSERT INTO attachment_references (ticket_id, comment_id, uploaded_by, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		attachment.TicketID,
		attachment.CommentID,
		attachment.UploadedBy,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AttachmentReference, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachment_references WHERE ticket_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, ticketID)
}

func (r *attachmentRepository) ListByComment(ctx context.Context, commentID string) ([]domain.AttachmentReference, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachment_references WHERE comment_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, commentID)
}

func (r *attachmentRepository) list(ctx context.Context, query string, arg any) ([]domain.AttachmentReference, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AttachmentReference
	for rows.Next() {
		var attachment domain.AttachmentReference
		if err := rows.Scan(
			&attachment.ID,
			&attachment.TicketID,
			&attachment.CommentID,
			&attachment.UploadedBy,
			&attachment.StorageKey,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
