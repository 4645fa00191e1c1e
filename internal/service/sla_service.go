package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/schedule"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// defaultResolutionTargets backs organizations without stored policies.
// Matches the seeded policy set: urgent 4h, high 8h, medium 1 business day,
// low 2 business days, all in working minutes.
var defaultResolutionTargets = map[domain.TicketPriority]int{
	domain.TicketPriorityUrgent: 240,
	domain.TicketPriorityHigh:   480,
	domain.TicketPriorityMedium: 1440,
	domain.TicketPriorityLow:    2880,
}

// SLAService owns ticket due dates and breach state. All calendar math is
// delegated to the schedule package; this layer resolves the organization's
// calendar and policy and persists the results.
type SLAService struct {
	tickets    repository.TicketRepository
	policies   repository.SLAPolicyRepository
	history    repository.TicketHistoryRepository
	calendars  *CalendarService
	dispatcher events.Dispatcher
	atRisk     float64
	logger     *zap.Logger
}

// SLADependencies bundles requirements for the SLA service.
type SLADependencies struct {
	TicketRepo    repository.TicketRepository
	SLAPolicyRepo repository.SLAPolicyRepository
	HistoryRepo   repository.TicketHistoryRepository
	Calendars     *CalendarService
	Dispatcher    events.Dispatcher
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies, atRiskThreshold float64, logger *zap.Logger) *SLAService {
	if atRiskThreshold <= 0 || atRiskThreshold >= 1 {
		atRiskThreshold = schedule.DefaultAtRiskThreshold
	}
	return &SLAService{
		tickets:    deps.TicketRepo,
		policies:   deps.SLAPolicyRepo,
		history:    deps.HistoryRepo,
		calendars:  deps.Calendars,
		dispatcher: deps.Dispatcher,
		atRisk:     atRiskThreshold,
		logger:     logger,
	}
}

// DueDateFor computes the resolution due date for a ticket of the given
// priority anchored at anchor. Used at creation and after priority changes.
func (s *SLAService) DueDateFor(ctx context.Context, organizationID string, priority domain.TicketPriority, anchor time.Time) (time.Time, error) {
	target, err := s.resolutionTarget(ctx, organizationID, priority)
	if err != nil {
		return time.Time{}, err
	}
	cal, err := s.calendars.CalendarForOrganization(ctx, organizationID)
	if err != nil {
		return time.Time{}, apperrors.MapError(err)
	}
	due, err := schedule.NewSLAClock(cal).ComputeDueDate(anchor, target)
	if err != nil {
		return time.Time{}, apperrors.MapError(err)
	}
	return due, nil
}

// StateFor classifies the ticket's SLA position at now.
func (s *SLAService) StateFor(ctx context.Context, ticket *domain.Ticket, now time.Time) (schedule.SLAState, error) {
	if ticket.DueAt == nil {
		return schedule.SLAStatePending, nil
	}
	cal, err := s.calendars.CalendarForOrganization(ctx, ticket.OrganizationID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	clock := schedule.NewSLAClock(cal)
	clock.AtRiskThreshold = s.atRisk
	anchor := ticket.CreatedAt
	if ticket.SLAAnchorAt != nil {
		anchor = *ticket.SLAAnchorAt
	}
	state, err := clock.State(anchor, *ticket.DueAt, now, ticket.Status.IsTerminal(), ticket.SLABreached)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return state, nil
}

// Evaluate reports the ticket's breach flag at now without persisting.
func (s *SLAService) Evaluate(ticket *domain.Ticket, now time.Time) bool {
	if ticket.DueAt == nil {
		return ticket.SLABreached
	}
	return schedule.EvaluateBreach(*ticket.DueAt, now, ticket.Status.IsTerminal(), ticket.SLABreached)
}

// SweepBreaches flags every overdue non-terminal ticket, records history, and
// publishes sla_breached events. Returns the number of tickets flagged.
func (s *SLAService) SweepBreaches(ctx context.Context, now time.Time, limit int) (int, error) {
	overdue, err := s.tickets.ListOverdue(ctx, now, limit)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	flagged := 0
	for i := range overdue {
		ticket := &overdue[i]
		ticket.SLABreached = true
		if err := s.tickets.Update(ctx, ticket); err != nil {
			s.logger.Error("failed to persist breach flag",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		flagged++
		s.recordBreach(ctx, ticket, now)
		s.publish(ctx, events.Event{
			Type:           events.EventSLABreached,
			OrganizationID: ticket.OrganizationID,
			TicketID:       ticket.ID,
			Actor:          events.SystemActor(),
			Payload: events.SLABreachedPayload{
				DueAt:      *ticket.DueAt,
				Priority:   ticket.Priority,
				DetectedAt: now,
			},
		})
	}
	return flagged, nil
}

// ResetBreach is the explicit policy-correction override: it clears the
// sticky flag, recomputes the due date from now, and leaves an audit entry.
func (s *SLAService) ResetBreach(ctx context.Context, actor *domain.StaffMember, ticketID, reason string) (*domain.Ticket, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewConflict("cannot reset SLA on a terminal ticket", nil)
	}
	now := time.Now().UTC()
	due, err := s.DueDateFor(ctx, ticket.OrganizationID, ticket.Priority, now)
	if err != nil {
		return nil, err
	}
	ticket.SLABreached = false
	ticket.DueAt = &due
	ticket.SLAAnchorAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.history != nil {
		entry := &domain.TicketHistory{
			TicketID:      ticket.ID,
			ChangedByType: domain.AuthorTypeStaff,
			ChangedByID:   &actor.ID,
			ChangeType:    domain.ChangeTypeSLAReset,
			NewValue:      map[string]any{"due_at": due, "reason": reason},
		}
		if err := s.history.Create(ctx, entry); err != nil {
			s.logger.Warn("failed to record SLA reset", zap.Error(err))
		}
	}
	s.publish(ctx, events.Event{
		Type:           events.EventSLAReset,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          staffActor(actor.ID),
		Payload:        events.SLAResetPayload{NewDueAt: &due, Reason: reason},
	})
	return ticket, nil
}

// UpsertPolicy stores per-priority targets for an organization.
func (s *SLAService) UpsertPolicy(ctx context.Context, actor *domain.StaffMember, policy *domain.SLAPolicy) (*domain.SLAPolicy, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if policy.ResponseTargetMinutes <= 0 || policy.ResolutionTargetMinutes <= 0 {
		return nil, apperrors.NewValidationError("targets must be positive working minutes", nil)
	}
	if err := s.policies.Upsert(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

// ListPolicies returns the organization's stored policies.
func (s *SLAService) ListPolicies(ctx context.Context, organizationID string) ([]domain.SLAPolicy, error) {
	policies, err := s.policies.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policies, nil
}

func (s *SLAService) resolutionTarget(ctx context.Context, organizationID string, priority domain.TicketPriority) (int, error) {
	policy, err := s.policies.GetByPriority(ctx, organizationID, priority)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if target, ok := defaultResolutionTargets[priority]; ok {
				return target, nil
			}
			return defaultResolutionTargets[domain.TicketPriorityMedium], nil
		}
		return 0, apperrors.MapError(err)
	}
	return policy.Target(domain.SLATargetResolution), nil
}

func (s *SLAService) recordBreach(ctx context.Context, ticket *domain.Ticket, now time.Time) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:      ticket.ID,
		ChangedByType: domain.AuthorTypeSystem,
		ChangeType:    domain.ChangeTypeSLABreach,
		NewValue:      map[string]any{"due_at": ticket.DueAt, "detected_at": now},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record breach history", zap.Error(err))
	}
}

func (s *SLAService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	publishEvent(ctx, s.dispatcher, event)
}
