package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// DashboardCounts is the raw per-organization tally the stats endpoint is
// built from.
type DashboardCounts struct {
	TicketsByStatus   map[domain.TicketStatus]int64
	TicketsByPriority map[domain.TicketPriority]int64
	BreachedTickets   int64
	OpenSessions      int64
	ActiveStaff       int64
	EndUsers          int64
	Companies         int64
}

// DashboardRepository is the read-only aggregation side of the dashboard.
type DashboardRepository interface {
	Collect(ctx context.Context, organizationID string) (*DashboardCounts, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository instantiates repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) Collect(ctx context.Context, organizationID string) (*DashboardCounts, error) {
	counts := &DashboardCounts{
		TicketsByStatus:   make(map[domain.TicketStatus]int64),
		TicketsByPriority: make(map[domain.TicketPriority]int64),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM tickets WHERE organization_id=$1 GROUP BY status`, organizationID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, err
		}
		counts.TicketsByStatus[status] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT priority, COUNT(*) FROM tickets WHERE organization_id=$1 GROUP BY priority`, organizationID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var priority domain.TicketPriority
		var count int64
		if err := rows.Scan(&priority, &count); err != nil {
			rows.Close()
			return nil, err
		}
		counts.TicketsByPriority[priority] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const scalars = `
        SELECT
            (SELECT COUNT(*) FROM tickets WHERE organization_id=$1 AND sla_breached),
            (SELECT COUNT(*) FROM sessions WHERE organization_id=$1 AND end_time IS NULL),
            (SELECT COUNT(*) FROM staff_members WHERE organization_id=$1 AND active),
            (SELECT COUNT(*) FROM users WHERE organization_id=$1),
            (SELECT COUNT(*) FROM companies WHERE organization_id=$1)`
	if err := r.pool.QueryRow(ctx, scalars, organizationID).Scan(
		&counts.BreachedTickets,
		&counts.OpenSessions,
		&counts.ActiveStaff,
		&counts.EndUsers,
		&counts.Companies,
	); err != nil {
		return nil, err
	}
	return counts, nil
}
