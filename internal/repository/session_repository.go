package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// SessionFilter narrows session listings.
type SessionFilter struct {
	AgentID  *string
	TicketID *string
	From     *time.Time
	To       *time.Time
	OnlyOpen bool
	Limit    int
	Offset   int
}

// SessionRepository persists time-tracking sessions. WithAgentLock serializes
// the read-validate-write sequence per agent: two concurrent starts for the
// same agent must not both observe "no active session".
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Update(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByAgent(ctx context.Context, organizationID, agentID string) ([]domain.Session, error)
	ListWithFilter(ctx context.Context, organizationID string, filter SessionFilter) ([]domain.Session, error)
	WithAgentLock(ctx context.Context, agentID string, fn func(SessionRepository) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside the agent lock transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type sessionRepository struct {
	db   querier
	pool *pgxpool.Pool
}

// NewSessionRepository instantiates repository.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{db: pool, pool: pool}
}

const sessionColumns = `id, organization_id, agent_staff_id, ticket_id, start_time, end_time, duration_minutes, note, visibility, created_at`

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
        INSERT INTO sessions (organization_id, agent_staff_id, ticket_id, start_time, end_time, duration_minutes, note, visibility)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		session.OrganizationID,
		session.AgentID,
		session.TicketID,
		session.StartTime,
		session.EndTime,
		session.DurationMinutes,
		session.Note,
		session.Visibility,
	).Scan(&session.ID, &session.CreatedAt)
}

func (r *sessionRepository) Update(ctx context.Context, session *domain.Session) error {
	const query = `
        UPDATE sessions SET end_time=$1, duration_minutes=$2, note=$3, visibility=$4
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		session.EndTime,
		session.DurationMinutes,
		session.Note,
		session.Visibility,
		session.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id=$1`
	var session domain.Session
	if err := scanSession(r.db.QueryRow(ctx, query, id), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByAgent(ctx context.Context, organizationID, agentID string) ([]domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
        FROM sessions WHERE organization_id=$1 AND agent_staff_id=$2 ORDER BY start_time ASC`
	rows, err := r.db.Query(ctx, query, organizationID, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *sessionRepository) ListWithFilter(ctx context.Context, organizationID string, filter SessionFilter) ([]domain.Session, error) {
	clauses := []string{"organization_id=$1"}
	args := []any{organizationID}

	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_staff_id=$%d", len(args)))
	}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("start_time < $%d", len(args)))
	}
	if filter.OnlyOpen {
		clauses = append(clauses, "end_time IS NULL")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE %s ORDER BY start_time DESC LIMIT %d OFFSET %d`,
		sessionColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// WithAgentLock runs fn inside a transaction holding an advisory lock keyed
// on the agent id. The lock releases on commit or rollback.
func (r *sessionRepository) WithAgentLock(ctx context.Context, agentID string, fn func(SessionRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, agentID); err != nil {
		return err
	}
	if err := fn(&sessionRepository{db: tx, pool: r.pool}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanSession(row pgx.Row, session *domain.Session) error {
	return row.Scan(
		&session.ID,
		&session.OrganizationID,
		&session.AgentID,
		&session.TicketID,
		&session.StartTime,
		&session.EndTime,
		&session.DurationMinutes,
		&session.Note,
		&session.Visibility,
		&session.CreatedAt,
	)
}

func collectSessions(rows pgx.Rows) ([]domain.Session, error) {
	var result []domain.Session
	for rows.Next() {
		var session domain.Session
		if err := scanSession(rows, &session); err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	return result, rows.Err()
}
