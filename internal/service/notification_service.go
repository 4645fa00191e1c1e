package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

const activityFeedLength = 100

// NotificationService handles fan-out for domain events. Each event is
// mirrored into a per-organization Redis activity feed, persisted as an
// in-app notification for the affected account, and forwarded to the
// configured delivery channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	store      repository.NotificationRepository
	tickets    repository.TicketRepository
	cache      *persistence.Redis
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles requirements for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Store      repository.NotificationRepository
	TicketRepo repository.TicketRepository
	Cache      *persistence.Redis
	Config     config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		store:      deps.Store,
		tickets:    deps.TicketRepo,
		cache:      deps.Cache,
		logger:     logger,
		cfg:        deps.Config,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketPriorityChanged, n.handleTicketPriorityChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleTicketCommentAdded)
	n.dispatcher.Subscribe(events.EventSLABreached, n.handleSLABreached)
	n.dispatcher.Subscribe(events.EventSLAReset, n.handleSLAReset)
	n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSessionEvent)
	n.dispatcher.Subscribe(events.EventSessionStopped, n.handleSessionEvent)
}

// ListForSubject returns the caller's newest notifications.
func (n *NotificationService) ListForSubject(ctx context.Context, subjectType domain.SubjectType, subjectID, organizationID string, limit int) ([]domain.Notification, error) {
	if n.store == nil {
		return []domain.Notification{}, nil
	}
	notifications, err := n.store.ListByRecipient(ctx, organizationID, subjectType, subjectID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// MarkRead sets the read marker on one of the caller's notifications.
func (n *NotificationService) MarkRead(ctx context.Context, subjectType domain.SubjectType, subjectID, notificationID string) error {
	if n.store == nil {
		return apperrors.NewNotFound("notification", nil)
	}
	return apperrors.MapError(n.store.MarkRead(ctx, notificationID, subjectType, subjectID))
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	if payload, ok := event.Payload.(events.TicketStatusChangedPayload); ok {
		if ticket := n.ticketFor(ctx, event); ticket != nil && event.Actor.Type != domain.SubjectTypeUser {
			n.persist(ctx, event, domain.SubjectTypeUser, ticket.RequesterID,
				"Ticket status updated",
				fmt.Sprintf("%s moved from %s to %s", ticket.ExternalKey, payload.OldStatus, payload.NewStatus))
		}
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketPriorityChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketPriorityChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	if payload, ok := event.Payload.(events.TicketPriorityChangedPayload); ok {
		if ticket := n.ticketFor(ctx, event); ticket != nil {
			n.notifyAssignee(ctx, event, ticket,
				"Ticket priority changed",
				fmt.Sprintf("%s is now %s", ticket.ExternalKey, payload.NewPriority))
		}
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	if payload, ok := event.Payload.(events.TicketAssignedPayload); ok && payload.AssigneeStaffID != nil {
		actorIsAssignee := event.Actor.StaffID != nil && *event.Actor.StaffID == *payload.AssigneeStaffID
		if !actorIsAssignee {
			message := "A ticket was assigned to you"
			if ticket := n.ticketFor(ctx, event); ticket != nil {
				message = fmt.Sprintf("%s: %s", ticket.ExternalKey, ticket.Title)
			}
			n.persist(ctx, event, domain.SubjectTypeStaff, *payload.AssigneeStaffID, "Ticket assigned to you", message)
		}
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCommentAdded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	if payload, ok := event.Payload.(events.TicketCommentAddedPayload); ok {
		if ticket := n.ticketFor(ctx, event); ticket != nil {
			switch {
			// Internal notes stay invisible to the requester everywhere,
			// including the notification feed.
			case payload.AuthorType == domain.AuthorTypeStaff && payload.CommentType == domain.CommentTypePublicReply:
				n.persist(ctx, event, domain.SubjectTypeUser, ticket.RequesterID,
					"New reply on your ticket",
					fmt.Sprintf("%s: %s", ticket.ExternalKey, payload.BodyPreview))
			case payload.AuthorType == domain.AuthorTypeUser:
				n.notifyAssignee(ctx, event, ticket,
					"Requester replied",
					fmt.Sprintf("%s: %s", ticket.ExternalKey, payload.BodyPreview))
			}
		}
	}
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSLABreached(ctx context.Context, event events.Event) error {
	n.logger.Warn("SLABreached", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	if ticket := n.ticketFor(ctx, event); ticket != nil {
		n.notifyAssignee(ctx, event, ticket,
			"SLA breached",
			fmt.Sprintf("%s passed its due date", ticket.ExternalKey))
	}
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSLAReset(ctx context.Context, event events.Event) error {
	n.logger.Info("SLAReset", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	if ticket := n.ticketFor(ctx, event); ticket != nil {
		n.notifyAssignee(ctx, event, ticket,
			"SLA clock reset",
			fmt.Sprintf("%s got a fresh due date", ticket.ExternalKey))
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionEvent(ctx context.Context, event events.Event) error {
	n.logger.Debug("SessionEvent", zap.String("event_type", string(event.Type)), zap.Any("payload", event.Payload))
	n.recordActivity(ctx, event)
	return nil
}

// notifyAssignee persists a staff notification unless the assignee acted
// themselves.
func (n *NotificationService) notifyAssignee(ctx context.Context, event events.Event, ticket *domain.Ticket, title, message string) {
	if ticket.AssigneeID == nil {
		return
	}
	if event.Actor.StaffID != nil && *event.Actor.StaffID == *ticket.AssigneeID {
		return
	}
	n.persist(ctx, event, domain.SubjectTypeStaff, *ticket.AssigneeID, title, message)
}

func (n *NotificationService) persist(ctx context.Context, event events.Event, recipientType domain.SubjectType, recipientID, title, message string) {
	if n.store == nil || recipientID == "" {
		return
	}
	notification := &domain.Notification{
		OrganizationID: event.OrganizationID,
		RecipientType:  recipientType,
		RecipientID:    recipientID,
		Title:          title,
		Message:        message,
	}
	if event.TicketID != "" {
		ticketID := event.TicketID
		notification.TicketID = &ticketID
	}
	if err := n.store.Create(ctx, notification); err != nil {
		n.logger.Warn("persist notification failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

func (n *NotificationService) ticketFor(ctx context.Context, event events.Event) *domain.Ticket {
	if n.tickets == nil || event.TicketID == "" {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		n.logger.Debug("notification ticket lookup failed",
			zap.String("ticket_id", event.TicketID), zap.Error(err))
		return nil
	}
	return ticket
}

// recordActivity pushes the event onto a capped per-organization list.
func (n *NotificationService) recordActivity(ctx context.Context, event events.Event) {
	if n.cache == nil || n.cache.Client == nil || event.OrganizationID == "" {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	key := "activity:" + event.OrganizationID
	pipe := n.cache.Client.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, activityFeedLength-1)
	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.Debug("activity feed push failed", zap.Error(err))
	}
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
