package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
)

type stubDashboardRepo struct {
	counts map[string]*repository.DashboardCounts
}

func (r *stubDashboardRepo) Collect(_ context.Context, organizationID string) (*repository.DashboardCounts, error) {
	if counts, ok := r.counts[organizationID]; ok {
		clone := *counts
		return &clone, nil
	}
	return &repository.DashboardCounts{}, nil
}

func TestGetStatsDerivesTotalsFromStatusCounts(t *testing.T) {
	t.Parallel()
	repo := &stubDashboardRepo{counts: map[string]*repository.DashboardCounts{
		"org-1": {
			TicketsByStatus: map[domain.TicketStatus]int64{
				domain.TicketStatusNew:        3,
				domain.TicketStatusOpen:       2,
				domain.TicketStatusInProgress: 1,
				domain.TicketStatusOnHold:     4,
				domain.TicketStatusResolved:   5,
				domain.TicketStatusClosed:     10,
			},
			TicketsByPriority: map[domain.TicketPriority]int64{
				domain.TicketPriorityUrgent: 2,
			},
			BreachedTickets: 7,
			OpenSessions:    1,
			ActiveStaff:     6,
			EndUsers:        40,
			Companies:       3,
		},
	}}
	svc := NewDashboardService(repo, zap.NewNop())
	actor := &domain.StaffMember{ID: "staff-1", OrganizationID: "org-1", Role: domain.StaffRoleManager}

	stats, err := svc.GetStats(context.Background(), actor)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalTickets != 25 {
		t.Errorf("TotalTickets = %d, want 25", stats.TotalTickets)
	}
	// ON_HOLD, RESOLVED and CLOSED do not count as open workload.
	if stats.OpenTickets != 6 {
		t.Errorf("OpenTickets = %d, want 6", stats.OpenTickets)
	}
	if stats.BreachedTickets != 7 {
		t.Errorf("BreachedTickets = %d, want 7", stats.BreachedTickets)
	}
	if stats.ActiveStaff != 6 || stats.EndUsers != 40 || stats.Companies != 3 {
		t.Errorf("headcounts = %d/%d/%d, want 6/40/3", stats.ActiveStaff, stats.EndUsers, stats.Companies)
	}
}

func TestGetStatsEmptyOrganization(t *testing.T) {
	t.Parallel()
	svc := NewDashboardService(&stubDashboardRepo{}, zap.NewNop())
	actor := &domain.StaffMember{ID: "staff-1", OrganizationID: "org-empty", Role: domain.StaffRoleAdmin}

	stats, err := svc.GetStats(context.Background(), actor)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalTickets != 0 || stats.OpenTickets != 0 {
		t.Errorf("totals = %d/%d, want 0/0", stats.TotalTickets, stats.OpenTickets)
	}
	if stats.TicketsByStatus == nil || stats.TicketsByPriority == nil {
		t.Errorf("maps should be initialized, not nil")
	}

	if _, err := svc.GetStats(context.Background(), nil); domainCode(t, err) != "UNAUTHORIZED" {
		t.Errorf("nil actor: want UNAUTHORIZED, got %v", err)
	}
}
