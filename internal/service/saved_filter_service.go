package service

import (
	"context"
	"strings"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// SavedFilterService manages named list filters. The config blob is stored
// opaquely; the server only validates ownership and the target entity.
type SavedFilterService struct {
	filters repository.SavedFilterRepository
}

// NewSavedFilterService constructs the service.
func NewSavedFilterService(filters repository.SavedFilterRepository) *SavedFilterService {
	return &SavedFilterService{filters: filters}
}

// SavedFilterInput describes filter payload.
type SavedFilterInput struct {
	Name       string
	EntityType domain.FilterEntityType
	Config     map[string]any
	Shared     bool
}

// SaveFilter stores a filter owned by the actor.
func (s *SavedFilterService) SaveFilter(ctx context.Context, actor *domain.StaffMember, input SavedFilterInput) (*domain.SavedFilter, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("filter name is required", nil)
	}
	if !input.EntityType.Valid() {
		return nil, apperrors.NewValidationError("unknown entity type", map[string]any{"entity_type": input.EntityType})
	}
	filter := &domain.SavedFilter{
		OrganizationID: actor.OrganizationID,
		StaffID:        actor.ID,
		Name:           strings.TrimSpace(input.Name),
		EntityType:     input.EntityType,
		Config:         input.Config,
		Shared:         input.Shared,
	}
	if filter.Config == nil {
		filter.Config = map[string]any{}
	}
	if err := s.filters.Create(ctx, filter); err != nil {
		return nil, apperrors.MapError(err)
	}
	return filter, nil
}

// ListFilters returns the actor's filters plus shared ones from the
// organization.
func (s *SavedFilterService) ListFilters(ctx context.Context, actor *domain.StaffMember) ([]domain.SavedFilter, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	filters, err := s.filters.ListForStaff(ctx, actor.OrganizationID, actor.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return filters, nil
}

// DeleteFilter removes a filter. Only the owner or an admin may delete.
func (s *SavedFilterService) DeleteFilter(ctx context.Context, actor *domain.StaffMember, filterID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("staff context required")
	}
	filter, err := s.filters.GetByID(ctx, filterID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if filter.OrganizationID != actor.OrganizationID {
		return apperrors.NewForbidden("filter belongs to another organization")
	}
	if filter.StaffID != actor.ID && actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("only the owner can delete this filter")
	}
	return apperrors.MapError(s.filters.Delete(ctx, filterID))
}
