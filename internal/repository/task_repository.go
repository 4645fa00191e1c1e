package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// TaskRepository persists internal staff to-dos.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByOrganization(ctx context.Context, organizationID string, assignedStaffID *string, limit, offset int) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, organization_id, title, description, status, due_date, assigned_staff_id, ticket_id, created_by_id, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (organization_id, title, description, status, due_date, assigned_staff_id, ticket_id, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.OrganizationID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.AssignedStaffID,
		task.TicketID,
		task.CreatedByID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, status=$3, due_date=$4, assigned_staff_id=$5, ticket_id=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.AssignedStaffID,
		task.TicketID,
		task.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	var task domain.Task
	if err := scanTask(r.pool.QueryRow(ctx, query, id), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) ListByOrganization(ctx context.Context, organizationID string, assignedStaffID *string, limit, offset int) ([]domain.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE organization_id=$1`
	args := []any{organizationID}
	if assignedStaffID != nil {
		args = append(args, *assignedStaffID)
		query += ` AND assigned_staff_id=$2`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := scanTask(rows, &task); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func scanTask(row pgx.Row, task *domain.Task) error {
	return row.Scan(
		&task.ID,
		&task.OrganizationID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.AssignedStaffID,
		&task.TicketID,
		&task.CreatedByID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
}
