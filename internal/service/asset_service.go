package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// AssetService manages the devices and licenses an organization administers
// for its client companies.
type AssetService struct {
	assets    repository.AssetRepository
	companies repository.CompanyRepository
	users     repository.UserRepository
}

// NewAssetService constructs the service.
func NewAssetService(assets repository.AssetRepository, companies repository.CompanyRepository, users repository.UserRepository) *AssetService {
	return &AssetService{assets: assets, companies: companies, users: users}
}

// AssetInput describes asset payload.
type AssetInput struct {
	CompanyID      *string
	Kind           domain.AssetKind
	Name           string
	SerialNumber   *string
	AssignedUserID *string
	ExpiresAt      *time.Time
	Metadata       map[string]any
}

// CreateAsset registers an asset in the actor's organization.
func (s *AssetService) CreateAsset(ctx context.Context, actor *domain.StaffMember, input AssetInput) (*domain.Asset, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if err := s.validateInput(ctx, actor.OrganizationID, input); err != nil {
		return nil, err
	}
	asset := &domain.Asset{
		OrganizationID: actor.OrganizationID,
		CompanyID:      input.CompanyID,
		Kind:           input.Kind,
		Name:           strings.TrimSpace(input.Name),
		SerialNumber:   input.SerialNumber,
		AssignedUserID: input.AssignedUserID,
		ExpiresAt:      input.ExpiresAt,
		Metadata:       input.Metadata,
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// UpdateAsset edits an existing asset.
func (s *AssetService) UpdateAsset(ctx context.Context, actor *domain.StaffMember, assetID string, input AssetInput) (*domain.Asset, error) {
	asset, err := s.assetForStaff(ctx, actor, assetID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, actor.OrganizationID, input); err != nil {
		return nil, err
	}
	asset.CompanyID = input.CompanyID
	asset.Name = strings.TrimSpace(input.Name)
	asset.SerialNumber = input.SerialNumber
	asset.AssignedUserID = input.AssignedUserID
	asset.ExpiresAt = input.ExpiresAt
	asset.Metadata = input.Metadata
	if err := s.assets.Update(ctx, asset); err != nil {
		return nil, apperrors.MapError(err)
	}
	return asset, nil
}

// GetAsset fetches one asset ensuring staff access.
func (s *AssetService) GetAsset(ctx context.Context, actor *domain.StaffMember, assetID string) (*domain.Asset, error) {
	return s.assetForStaff(ctx, actor, assetID)
}

// ListAssets returns assets for the actor's organization, optionally filtered
// by kind.
func (s *AssetService) ListAssets(ctx context.Context, actor *domain.StaffMember, kind *domain.AssetKind, limit, offset int) ([]domain.Asset, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	assets, err := s.assets.ListByOrganization(ctx, actor.OrganizationID, kind, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return assets, nil
}

func (s *AssetService) assetForStaff(ctx context.Context, actor *domain.StaffMember, assetID string) (*domain.Asset, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if asset.OrganizationID != actor.OrganizationID {
		return nil, apperrors.NewForbidden("asset belongs to another organization")
	}
	return asset, nil
}

func (s *AssetService) validateInput(ctx context.Context, organizationID string, input AssetInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("asset name is required", nil)
	}
	switch input.Kind {
	case domain.AssetKindDevice, domain.AssetKindLicense:
	default:
		return apperrors.NewValidationError("unknown asset kind", map[string]any{"kind": input.Kind})
	}
	if input.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *input.CompanyID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if company.OrganizationID != organizationID {
			return apperrors.NewForbidden("company belongs to another organization")
		}
	}
	if input.AssignedUserID != nil {
		user, err := s.users.GetByID(ctx, *input.AssignedUserID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if user.OrganizationID != organizationID {
			return apperrors.NewForbidden("user belongs to another organization")
		}
	}
	return nil
}
