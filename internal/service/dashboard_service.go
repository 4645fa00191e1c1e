package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// DashboardService aggregates per-organization operational counters for the
// staff dashboard.
type DashboardService struct {
	stats  repository.DashboardRepository
	logger *zap.Logger
}

// NewDashboardService constructs the service.
func NewDashboardService(stats repository.DashboardRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{stats: stats, logger: logger}
}

// DashboardStats is the derived stats snapshot.
type DashboardStats struct {
	TotalTickets      int64
	OpenTickets       int64
	BreachedTickets   int64
	TicketsByStatus   map[domain.TicketStatus]int64
	TicketsByPriority map[domain.TicketPriority]int64
	OpenSessions      int64
	ActiveStaff       int64
	EndUsers          int64
	Companies         int64
}

// GetStats collects the actor organization's counters. "Open" counts the
// pre-resolution workload: NEW, OPEN and IN_PROGRESS.
func (s *DashboardService) GetStats(ctx context.Context, actor *domain.StaffMember) (*DashboardStats, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	counts, err := s.stats.Collect(ctx, actor.OrganizationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		BreachedTickets:   counts.BreachedTickets,
		TicketsByStatus:   counts.TicketsByStatus,
		TicketsByPriority: counts.TicketsByPriority,
		OpenSessions:      counts.OpenSessions,
		ActiveStaff:       counts.ActiveStaff,
		EndUsers:          counts.EndUsers,
		Companies:         counts.Companies,
	}
	if stats.TicketsByStatus == nil {
		stats.TicketsByStatus = map[domain.TicketStatus]int64{}
	}
	if stats.TicketsByPriority == nil {
		stats.TicketsByPriority = map[domain.TicketPriority]int64{}
	}
	for status, count := range stats.TicketsByStatus {
		stats.TotalTickets += count
		switch status {
		case domain.TicketStatusNew, domain.TicketStatusOpen, domain.TicketStatusInProgress:
			stats.OpenTickets += count
		}
	}
	return stats, nil
}
