package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, organizationID string, recipientType domain.SubjectType, recipientID string, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string, recipientType domain.SubjectType, recipientID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, organization_id, recipient_type, recipient_id, title, message, ticket_id, read_at, created_at`

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (organization_id, recipient_type, recipient_id, title, message, ticket_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.OrganizationID,
		notification.RecipientType,
		notification.RecipientID,
		notification.Title,
		notification.Message,
		notification.TicketID,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, organizationID string, recipientType domain.SubjectType, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + `
        FROM notifications
        WHERE organization_id=$1 AND recipient_type=$2 AND recipient_id=$3
        ORDER BY created_at DESC LIMIT $4`
	rows, err := r.pool.Query(ctx, query, organizationID, recipientType, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := scanNotification(rows, &notification); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}

// MarkRead scopes the update to the recipient so one caller can never mark
// another account's notifications.
func (r *notificationRepository) MarkRead(ctx context.Context, id string, recipientType domain.SubjectType, recipientID string) error {
	const query = `
        UPDATE notifications SET read_at=COALESCE(read_at, NOW())
        WHERE id=$1 AND recipient_type=$2 AND recipient_id=$3`
	cmd, err := r.pool.Exec(ctx, query, id, recipientType, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanNotification(row pgx.Row, notification *domain.Notification) error {
	return row.Scan(
		&notification.ID,
		&notification.OrganizationID,
		&notification.RecipientType,
		&notification.RecipientID,
		&notification.Title,
		&notification.Message,
		&notification.TicketID,
		&notification.ReadAt,
		&notification.CreatedAt,
	)
}
