package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// AssetRepository persists managed devices and licenses.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	ListByOrganization(ctx context.Context, organizationID string, kind *domain.AssetKind, limit, offset int) ([]domain.Asset, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository instantiates repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, organization_id, company_id, kind, name, serial_number, assigned_user_id, expires_at, metadata, created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (organization_id, company_id, kind, name, serial_number, assigned_user_id, expires_at, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		asset.OrganizationID,
		asset.CompanyID,
		asset.Kind,
		asset.Name,
		asset.SerialNumber,
		asset.AssignedUserID,
		asset.ExpiresAt,
		asset.Metadata,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET company_id=$1, name=$2, serial_number=$3, assigned_user_id=$4, expires_at=$5, metadata=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		asset.CompanyID,
		asset.Name,
		asset.SerialNumber,
		asset.AssignedUserID,
		asset.ExpiresAt,
		asset.Metadata,
		asset.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id=$1`
	var asset domain.Asset
	if err := scanAsset(r.pool.QueryRow(ctx, query, id), &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) ListByOrganization(ctx context.Context, organizationID string, kind *domain.AssetKind, limit, offset int) ([]domain.Asset, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + assetColumns + ` FROM assets WHERE organization_id=$1`
	args := []any{organizationID}
	if kind != nil {
		args = append(args, *kind)
		query += ` AND kind=$2`
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(` ORDER BY name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		var asset domain.Asset
		if err := scanAsset(rows, &asset); err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	return result, rows.Err()
}

func scanAsset(row pgx.Row, asset *domain.Asset) error {
	return row.Scan(
		&asset.ID,
		&asset.OrganizationID,
		&asset.CompanyID,
		&asset.Kind,
		&asset.Name,
		&asset.SerialNumber,
		&asset.AssignedUserID,
		&asset.ExpiresAt,
		&asset.Metadata,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
}
