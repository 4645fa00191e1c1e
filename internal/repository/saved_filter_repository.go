package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// SavedFilterRepository persists reusable list filters.
type SavedFilterRepository interface {
	Create(ctx context.Context, filter *domain.SavedFilter) error
	GetByID(ctx context.Context, id string) (*domain.SavedFilter, error)
	ListForStaff(ctx context.Context, organizationID, staffID string) ([]domain.SavedFilter, error)
	Delete(ctx context.Context, id string) error
}

type savedFilterRepository struct {
	pool *pgxpool.Pool
}

// NewSavedFilterRepository instantiates repository.
func NewSavedFilterRepository(pool *pgxpool.Pool) SavedFilterRepository {
	return &savedFilterRepository{pool: pool}
}

const savedFilterColumns = `id, organization_id, staff_id, name, entity_type, config, shared, created_at`

func (r *savedFilterRepository) Create(ctx context.Context, filter *domain.SavedFilter) error {
	const query = `
        INSERT INTO saved_filters (organization_id, staff_id, name, entity_type, config, shared)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		filter.OrganizationID,
		filter.StaffID,
		filter.Name,
		filter.EntityType,
		filter.Config,
		filter.Shared,
	).Scan(&filter.ID, &filter.CreatedAt)
}

func (r *savedFilterRepository) GetByID(ctx context.Context, id string) (*domain.SavedFilter, error) {
	query := `SELECT ` + savedFilterColumns + ` FROM saved_filters WHERE id=$1`
	var filter domain.SavedFilter
	if err := scanSavedFilter(r.pool.QueryRow(ctx, query, id), &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

// ListForStaff returns the member's own filters plus those shared within the
// organization.
func (r *savedFilterRepository) ListForStaff(ctx context.Context, organizationID, staffID string) ([]domain.SavedFilter, error) {
	query := `SELECT ` + savedFilterColumns + `
        FROM saved_filters
        WHERE organization_id=$1 AND (staff_id=$2 OR shared)
        ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, organizationID, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SavedFilter
	for rows.Next() {
		var filter domain.SavedFilter
		if err := scanSavedFilter(rows, &filter); err != nil {
			return nil, err
		}
		result = append(result, filter)
	}
	return result, rows.Err()
}

func (r *savedFilterRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM saved_filters WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSavedFilter(row pgx.Row, filter *domain.SavedFilter) error {
	return row.Scan(
		&filter.ID,
		&filter.OrganizationID,
		&filter.StaffID,
		&filter.Name,
		&filter.EntityType,
		&filter.Config,
		&filter.Shared,
		&filter.CreatedAt,
	)
}
