package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// SLAPolicyRepository stores working-minute targets per (organization,
// priority) pair. The pair is unique at the storage level.
type SLAPolicyRepository interface {
	Upsert(ctx context.Context, policy *domain.SLAPolicy) error
	GetByPriority(ctx context.Context, organizationID string, priority domain.TicketPriority) (*domain.SLAPolicy, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository instantiates repository.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

func (r *slaPolicyRepository) Upsert(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (organization_id, name, priority, response_target_minutes, resolution_target_minutes, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (organization_id, priority) DO UPDATE
            SET name=EXCLUDED.name,
                response_target_minutes=EXCLUDED.response_target_minutes,
                resolution_target_minutes=EXCLUDED.resolution_target_minutes,
                is_active=EXCLUDED.is_active, updated_at=NOW()
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.OrganizationID,
		policy.Name,
		policy.Priority,
		policy.ResponseTargetMinutes,
		policy.ResolutionTargetMinutes,
		policy.IsActive,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *slaPolicyRepository) GetByPriority(ctx context.Context, organizationID string, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	const query = `
        SELECT id, organization_id, name, priority, response_target_minutes, resolution_target_minutes, is_active, created_at, updated_at
        FROM sla_policies WHERE organization_id=$1 AND priority=$2`
	var policy domain.SLAPolicy
	if err := r.pool.QueryRow(ctx, query, organizationID, priority).Scan(
		&policy.ID,
		&policy.OrganizationID,
		&policy.Name,
		&policy.Priority,
		&policy.ResponseTargetMinutes,
		&policy.ResolutionTargetMinutes,
		&policy.IsActive,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaPolicyRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, organization_id, name, priority, response_target_minutes, resolution_target_minutes, is_active, created_at, updated_at
        FROM sla_policies WHERE organization_id=$1 ORDER BY priority ASC`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.OrganizationID,
			&policy.Name,
			&policy.Priority,
			&policy.ResponseTargetMinutes,
			&policy.ResolutionTargetMinutes,
			&policy.IsActive,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
