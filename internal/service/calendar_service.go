package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/schedule"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

const calendarCacheTTL = 5 * time.Minute

// CalendarService resolves business-hours configuration into calendars. An
// organization without stored hours gets the documented default: Mon-Fri
// 09:00-17:00 UTC. Resolved configurations are cached in Redis; writes
// invalidate the cache.
type CalendarService struct {
	calendars repository.CalendarRepository
	cache     *persistence.Redis
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(calendars repository.CalendarRepository, cache *persistence.Redis, logger *zap.Logger) *CalendarService {
	return &CalendarService{calendars: calendars, cache: cache, logger: logger}
}

// CalendarForOrganization returns the organization's calendar, falling back
// to the default when none is configured.
func (s *CalendarService) CalendarForOrganization(ctx context.Context, organizationID string) (*schedule.Calendar, error) {
	hours, err := s.loadHours(ctx, organizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Default(), nil
		}
		return nil, err
	}
	return hours.Calendar()
}

// GetBusinessHours returns the stored configuration, or NotFound when the
// organization runs on the default calendar.
func (s *CalendarService) GetBusinessHours(ctx context.Context, organizationID string) (*domain.BusinessHours, error) {
	hours, err := s.loadHours(ctx, organizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("business hours", map[string]any{"organization_id": organizationID})
		}
		return nil, err
	}
	return hours, nil
}

// UpsertBusinessHours validates and stores an organization's working hours.
// The configuration is rejected when it cannot be turned into a calendar
// (bad timezone, inverted or overlapping windows) or when it has no windows
// at all, which would make every SLA computation fail later.
func (s *CalendarService) UpsertBusinessHours(ctx context.Context, actor *domain.StaffMember, hours *domain.BusinessHours) (*domain.BusinessHours, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if len(hours.Windows) == 0 {
		return nil, apperrors.NewValidationError("at least one working window is required", nil)
	}
	cal, err := hours.Calendar()
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	// Probe once so a pathological configuration surfaces at write time.
	if _, err := cal.AddWorkingMinutes(time.Now().UTC(), 0); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.calendars.Upsert(ctx, hours); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidate(ctx, hours.OrganizationID)
	return hours, nil
}

func (s *CalendarService) loadHours(ctx context.Context, organizationID string) (*domain.BusinessHours, error) {
	if cached := s.fromCache(ctx, organizationID); cached != nil {
		return cached, nil
	}
	hours, err := s.calendars.GetByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, organizationID, hours)
	return hours, nil
}

func calendarCacheKey(organizationID string) string {
	return "business_hours:" + organizationID
}

func (s *CalendarService) fromCache(ctx context.Context, organizationID string) *domain.BusinessHours {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, calendarCacheKey(organizationID)).Bytes()
	if err != nil {
		return nil
	}
	var hours domain.BusinessHours
	if err := json.Unmarshal(raw, &hours); err != nil {
		return nil
	}
	return &hours
}

func (s *CalendarService) toCache(ctx context.Context, organizationID string, hours *domain.BusinessHours) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(hours)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, calendarCacheKey(organizationID), raw, calendarCacheTTL).Err(); err != nil {
		s.logger.Debug("calendar cache set failed", zap.Error(err))
	}
}

func (s *CalendarService) invalidate(ctx context.Context, organizationID string) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	if err := s.cache.Client.Del(ctx, calendarCacheKey(organizationID)).Err(); err != nil {
		s.logger.Debug("calendar cache invalidation failed", zap.Error(err))
	}
}
