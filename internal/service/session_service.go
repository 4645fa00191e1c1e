package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/schedule"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// SessionService manages agent time tracking. Overlap rules live in the
// schedule package; this layer re-reads the agent's sessions and validates
// inside a per-agent lock, so concurrent starts for one agent serialize while
// different agents proceed independently.
type SessionService struct {
	sessions   repository.SessionRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// SessionDependencies bundles requirements for the session service.
type SessionDependencies struct {
	SessionRepo repository.SessionRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions:   deps.SessionRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// StartSessionInput describes a live timer start.
type StartSessionInput struct {
	TicketID   *string
	StartTime  time.Time
	Note       string
	Visibility domain.SessionVisibility
}

// ManualEntryInput describes a closed session entered after the fact.
type ManualEntryInput struct {
	TicketID   *string
	StartTime  time.Time
	EndTime    time.Time
	Note       string
	Visibility domain.SessionVisibility
}

// StartSession opens a live timer for the agent. Rejected when the agent
// already has a running timer.
func (s *SessionService) StartSession(ctx context.Context, agent *domain.StaffMember, input StartSessionInput) (*domain.Session, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if input.StartTime.IsZero() {
		input.StartTime = time.Now().UTC()
	}
	if err := s.checkTicket(ctx, agent.OrganizationID, input.TicketID); err != nil {
		return nil, err
	}

	session := &domain.Session{
		OrganizationID: agent.OrganizationID,
		AgentID:        agent.ID,
		TicketID:       input.TicketID,
		StartTime:      input.StartTime.UTC(),
		Note:           input.Note,
		Visibility:     defaultVisibility(input.Visibility),
	}
	err := s.sessions.WithAgentLock(ctx, agent.ID, func(repo repository.SessionRepository) error {
		existing, err := repo.ListByAgent(ctx, agent.OrganizationID, agent.ID)
		if err != nil {
			return err
		}
		if err := schedule.ValidateSession(session.Interval(), domain.SessionRefs(existing)); err != nil {
			return err
		}
		return repo.Create(ctx, session)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:           events.EventSessionStarted,
		OrganizationID: agent.OrganizationID,
		Actor:          staffActor(agent.ID),
		Payload: events.SessionStartedPayload{
			SessionID: session.ID,
			AgentID:   agent.ID,
			TicketID:  session.TicketID,
			StartTime: session.StartTime,
		},
	})
	return session, nil
}

// StopSession closes the agent's running timer and derives its duration in
// wall-clock minutes.
func (s *SessionService) StopSession(ctx context.Context, agent *domain.StaffMember, sessionID string, endTime time.Time) (*domain.Session, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if endTime.IsZero() {
		endTime = time.Now().UTC()
	}

	var session *domain.Session
	err := s.sessions.WithAgentLock(ctx, agent.ID, func(repo repository.SessionRepository) error {
		found, err := repo.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if found.AgentID != agent.ID {
			return apperrors.NewForbidden("session belongs to another agent")
		}
		if found.EndTime != nil {
			return apperrors.NewConflict("session already stopped", nil)
		}
		closed, minutes, err := schedule.CloseInterval(found.Interval(), endTime.UTC())
		if err != nil {
			return err
		}
		found.EndTime = closed.End
		found.DurationMinutes = &minutes
		if err := repo.Update(ctx, found); err != nil {
			return err
		}
		session = found
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:           events.EventSessionStopped,
		OrganizationID: session.OrganizationID,
		Actor:          staffActor(agent.ID),
		Payload: events.SessionStoppedPayload{
			SessionID:       session.ID,
			AgentID:         agent.ID,
			TicketID:        session.TicketID,
			DurationMinutes: *session.DurationMinutes,
		},
	})
	return session, nil
}

// CreateManualEntry records a closed session with both bounds supplied by the
// agent. It runs the same overlap validation as live starts.
func (s *SessionService) CreateManualEntry(ctx context.Context, agent *domain.StaffMember, input ManualEntryInput) (*domain.Session, error) {
	if agent == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if err := s.checkTicket(ctx, agent.OrganizationID, input.TicketID); err != nil {
		return nil, err
	}
	interval, err := schedule.NewClosedInterval(input.StartTime.UTC(), input.EndTime.UTC())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	minutes := interval.Minutes()

	session := &domain.Session{
		OrganizationID:  agent.OrganizationID,
		AgentID:         agent.ID,
		TicketID:        input.TicketID,
		StartTime:       interval.Start,
		EndTime:         interval.End,
		DurationMinutes: &minutes,
		Note:            input.Note,
		Visibility:      defaultVisibility(input.Visibility),
	}
	err = s.sessions.WithAgentLock(ctx, agent.ID, func(repo repository.SessionRepository) error {
		existing, err := repo.ListByAgent(ctx, agent.OrganizationID, agent.ID)
		if err != nil {
			return err
		}
		if err := schedule.ValidateSession(interval, domain.SessionRefs(existing)); err != nil {
			return err
		}
		return repo.Create(ctx, session)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return session, nil
}

// ListSessions returns sessions for an organization with optional filters.
// Agents see only their own sessions; managers and admins see all.
func (s *SessionService) ListSessions(ctx context.Context, staff *domain.StaffMember, filter repository.SessionFilter) ([]domain.Session, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if staff.Role == domain.StaffRoleAgent {
		filter.AgentID = &staff.ID
	}
	sessions, err := s.sessions.ListWithFilter(ctx, staff.OrganizationID, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sessions, nil
}

// AggregateForAgent sums tracked minutes over the agent's closed sessions in
// [from, to). Open sessions contribute 0 until stopped.
func (s *SessionService) AggregateForAgent(ctx context.Context, staff *domain.StaffMember, agentID string, from, to *time.Time) (int, error) {
	if staff == nil {
		return 0, apperrors.NewUnauthorized("staff context required")
	}
	if staff.Role == domain.StaffRoleAgent && staff.ID != agentID {
		return 0, apperrors.NewForbidden("agents may only aggregate their own time")
	}
	sessions, err := s.sessions.ListWithFilter(ctx, staff.OrganizationID, repository.SessionFilter{
		AgentID: &agentID,
		From:    from,
		To:      to,
		Limit:   10000,
	})
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return schedule.AggregateMinutes(domain.SessionRefs(sessions)), nil
}

func (s *SessionService) checkTicket(ctx context.Context, organizationID string, ticketID *string) error {
	if ticketID == nil {
		return nil
	}
	ticket, err := s.tickets.GetByID(ctx, *ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if ticket.OrganizationID != organizationID {
		return apperrors.NewForbidden("ticket belongs to another organization")
	}
	return nil
}

func defaultVisibility(v domain.SessionVisibility) domain.SessionVisibility {
	if v == "" {
		return domain.SessionVisibilityInternal
	}
	return v
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	publishEvent(ctx, s.dispatcher, event)
}
