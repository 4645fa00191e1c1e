package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
)

// notificationEnv wires the notification service behind a live dispatcher so
// tests exercise the full publish-to-persist path.
type notificationEnv struct {
	tickets    *memTicketRepo
	store      *memNotificationRepo
	dispatcher events.Dispatcher
	svc        *NotificationService
}

func newNotificationEnv() *notificationEnv {
	env := &notificationEnv{
		tickets:    newMemTicketRepo(),
		store:      newMemNotificationRepo(),
		dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
	}
	env.svc = NewNotificationService(NotificationDependencies{
		Dispatcher: env.dispatcher,
		Store:      env.store,
		TicketRepo: env.tickets,
		Config:     config.NotificationConfig{},
	}, zap.NewNop())
	env.svc.RegisterHandlers()
	return env
}

func (e *notificationEnv) seedTicket(t *testing.T, orgID, requesterID string, assigneeID *string) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		OrganizationID: orgID,
		ExternalKey:    "TCK-20260101-0001",
		RequesterID:    requesterID,
		AssigneeID:     assigneeID,
		Title:          "vpn down",
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityMedium,
	}
	if err := e.tickets.Create(context.Background(), ticket); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func (e *notificationEnv) publish(t *testing.T, eventType events.EventType, ticket *domain.Ticket, actor events.Actor, payload any) {
	t.Helper()
	err := e.dispatcher.Publish(context.Background(), events.Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Timestamp:      time.Now().UTC(),
		Payload:        payload,
	})
	if err != nil {
		t.Fatalf("publish %s: %v", eventType, err)
	}
}

func (e *notificationEnv) feed(t *testing.T, subjectType domain.SubjectType, subjectID, orgID string) []domain.Notification {
	t.Helper()
	notifications, err := e.svc.ListForSubject(context.Background(), subjectType, subjectID, orgID, 50)
	if err != nil {
		t.Fatalf("ListForSubject: %v", err)
	}
	return notifications
}

func TestAssignmentNotifiesNewAssignee(t *testing.T) {
	t.Parallel()
	env := newNotificationEnv()
	assigneeID := uuid.NewString()
	managerID := uuid.NewString()
	ticket := env.seedTicket(t, "org-1", "user-1", &assigneeID)

	env.publish(t, events.EventTicketAssigned, ticket, staffActor(managerID),
		events.TicketAssignedPayload{AssigneeStaffID: &assigneeID})

	feed := env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1")
	if len(feed) != 1 {
		t.Fatalf("assignee feed has %d entries, want 1", len(feed))
	}
	if feed[0].TicketID == nil || *feed[0].TicketID != ticket.ID {
		t.Errorf("notification missing ticket reference")
	}
	if feed[0].ReadAt != nil {
		t.Errorf("new notification should be unread")
	}

	// Self-assignment stays silent.
	env.publish(t, events.EventTicketAssigned, ticket, staffActor(assigneeID),
		events.TicketAssignedPayload{AssigneeStaffID: &assigneeID})
	if feed := env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1"); len(feed) != 1 {
		t.Errorf("self-assignment added a notification, feed = %d entries", len(feed))
	}
}

func TestCommentNotificationsRespectVisibility(t *testing.T) {
	t.Parallel()
	env := newNotificationEnv()
	assigneeID := uuid.NewString()
	ticket := env.seedTicket(t, "org-1", "user-1", &assigneeID)

	// Staff public reply reaches the requester.
	env.publish(t, events.EventTicketCommentAdded, ticket, staffActor(assigneeID),
		events.TicketCommentAddedPayload{
			CommentID:   uuid.NewString(),
			CommentType: domain.CommentTypePublicReply,
			AuthorType:  domain.AuthorTypeStaff,
			AuthorID:    &assigneeID,
			BodyPreview: "restarting the tunnel now",
		})
	if feed := env.feed(t, domain.SubjectTypeUser, "user-1", "org-1"); len(feed) != 1 {
		t.Fatalf("requester feed has %d entries, want 1", len(feed))
	}

	// An internal note never surfaces to the requester.
	env.publish(t, events.EventTicketCommentAdded, ticket, staffActor(assigneeID),
		events.TicketCommentAddedPayload{
			CommentID:   uuid.NewString(),
			CommentType: domain.CommentTypeInternalNote,
			AuthorType:  domain.AuthorTypeStaff,
			AuthorID:    &assigneeID,
			BodyPreview: "customer config looks corrupted",
		})
	if feed := env.feed(t, domain.SubjectTypeUser, "user-1", "org-1"); len(feed) != 1 {
		t.Errorf("internal note leaked into the requester feed")
	}

	// A requester reply reaches the assignee.
	requesterID := "user-1"
	env.publish(t, events.EventTicketCommentAdded, ticket, userActor(requesterID),
		events.TicketCommentAddedPayload{
			CommentID:   uuid.NewString(),
			CommentType: domain.CommentTypePublicReply,
			AuthorType:  domain.AuthorTypeUser,
			AuthorID:    &requesterID,
			BodyPreview: "still broken",
		})
	if feed := env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1"); len(feed) != 1 {
		t.Errorf("assignee feed has %d entries, want 1", len(feed))
	}
}

func TestStatusChangeSkipsRequesterOwnAction(t *testing.T) {
	t.Parallel()
	env := newNotificationEnv()
	ticket := env.seedTicket(t, "org-1", "user-1", nil)
	payload := events.TicketStatusChangedPayload{
		OldStatus: domain.TicketStatusOpen,
		NewStatus: domain.TicketStatusResolved,
	}

	env.publish(t, events.EventTicketStatusChanged, ticket, staffActor(uuid.NewString()), payload)
	if feed := env.feed(t, domain.SubjectTypeUser, "user-1", "org-1"); len(feed) != 1 {
		t.Fatalf("requester feed has %d entries, want 1", len(feed))
	}

	// The requester closing their own ticket is not news to them.
	env.publish(t, events.EventTicketStatusChanged, ticket, userActor("user-1"), payload)
	if feed := env.feed(t, domain.SubjectTypeUser, "user-1", "org-1"); len(feed) != 1 {
		t.Errorf("own status change added a notification")
	}
}

func TestBreachNotifiesAssigneeOnly(t *testing.T) {
	t.Parallel()
	env := newNotificationEnv()
	assigneeID := uuid.NewString()
	assigned := env.seedTicket(t, "org-1", "user-1", &assigneeID)
	unassigned := env.seedTicket(t, "org-1", "user-2", nil)

	env.publish(t, events.EventSLABreached, assigned, events.SystemActor(), nil)
	env.publish(t, events.EventSLABreached, unassigned, events.SystemActor(), nil)

	if feed := env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1"); len(feed) != 1 {
		t.Errorf("assignee feed has %d entries, want 1", len(feed))
	}
	if feed := env.feed(t, domain.SubjectTypeUser, "user-2", "org-1"); len(feed) != 0 {
		t.Errorf("unassigned breach produced %d notifications, want 0", len(feed))
	}
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	t.Parallel()
	env := newNotificationEnv()
	assigneeID := uuid.NewString()
	ticket := env.seedTicket(t, "org-1", "user-1", &assigneeID)

	env.publish(t, events.EventTicketAssigned, ticket, staffActor(uuid.NewString()),
		events.TicketAssignedPayload{AssigneeStaffID: &assigneeID})
	feed := env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1")
	if len(feed) != 1 {
		t.Fatalf("feed has %d entries, want 1", len(feed))
	}
	notificationID := feed[0].ID

	err := env.svc.MarkRead(context.Background(), domain.SubjectTypeStaff, uuid.NewString(), notificationID)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("foreign recipient mark: code = %s, want NOT_FOUND", code)
	}
	err = env.svc.MarkRead(context.Background(), domain.SubjectTypeUser, assigneeID, notificationID)
	if code := domainCode(t, err); code != "NOT_FOUND" {
		t.Errorf("wrong subject type mark: code = %s, want NOT_FOUND", code)
	}

	if err := env.svc.MarkRead(context.Background(), domain.SubjectTypeStaff, assigneeID, notificationID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	feed = env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1")
	if feed[0].ReadAt == nil {
		t.Fatalf("ReadAt not set after MarkRead")
	}
	readAt := *feed[0].ReadAt

	// Re-marking is idempotent and keeps the original timestamp.
	if err := env.svc.MarkRead(context.Background(), domain.SubjectTypeStaff, assigneeID, notificationID); err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	feed = env.feed(t, domain.SubjectTypeStaff, assigneeID, "org-1")
	if feed[0].ReadAt == nil || !feed[0].ReadAt.Equal(readAt) {
		t.Errorf("ReadAt changed on re-mark")
	}
}
