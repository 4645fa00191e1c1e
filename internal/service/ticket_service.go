package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/schedule"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// TicketService coordinates ticket workflows. Due dates and breach state are
// delegated to the SLA service at the relevant lifecycle points: creation,
// priority change, and terminal transitions.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.TicketCommentRepository
	attachments repository.AttachmentRepository
	companies   repository.CompanyRepository
	staff       repository.StaffRepository
	history     repository.TicketHistoryRepository
	sla         *SLAService
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.TicketCommentRepository
	AttachmentRepo repository.AttachmentRepository
	CompanyRepo    repository.CompanyRepository
	StaffRepo      repository.StaffRepository
	HistoryRepo    repository.TicketHistoryRepository
	SLA            *SLAService
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CompanyID   *string
	Title       string
	Description string
	Priority    domain.TicketPriority
	Tags        []string
}

// TicketUserFilter describes end-user listing filters.
type TicketUserFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketStaffFilter describes staff listing filters.
type TicketStaffFilter struct {
	CompanyID   *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Breached    *bool
	Limit       int
	Offset      int
}

// CommentAttachmentInput defines attachment metadata.
type CommentAttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		companies:   deps.CompanyRepo,
		staff:       deps.StaffRepo,
		history:     deps.HistoryRepo,
		sla:         deps.SLA,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket creates a ticket for a user and stamps its SLA due date.
func (s *TicketService) CreateTicket(ctx context.Context, user *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("user context required")
	}
	companyID := input.CompanyID
	if companyID == nil {
		companyID = user.CompanyID
	}
	if companyID != nil {
		company, err := s.companies.GetByID(ctx, *companyID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if company.OrganizationID != user.OrganizationID {
			return nil, apperrors.NewForbidden("company belongs to another organization")
		}
		if !company.IsActive {
			return nil, apperrors.NewValidationError("company inactive", nil)
		}
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		OrganizationID: user.OrganizationID,
		ExternalKey:    generateTicketKey(),
		RequesterID:    user.ID,
		CompanyID:      companyID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusNew,
		Priority:       input.Priority,
		Tags:           input.Tags,
		SLAAnchorAt:    &now,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	due, err := s.sla.DueDateFor(ctx, ticket.OrganizationID, ticket.Priority, now)
	if err != nil {
		return nil, err
	}
	ticket.DueAt = &due

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketCreated,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          userActor(user.ID),
		Payload: events.TicketCreatedPayload{
			CompanyID: ticket.CompanyID,
			Priority:  ticket.Priority,
			Title:     ticket.Title,
			DueAt:     ticket.DueAt,
		},
	})
	return ticket, nil
}

// ListUserTickets returns paginated tickets for a requester.
func (s *TicketService) ListUserTickets(ctx context.Context, user *domain.User, filter TicketUserFilter) ([]domain.Ticket, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("user context required")
	}
	repoFilter := repository.TicketFilter{
		RequesterID: &user.ID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, user.OrganizationID, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForUser fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	if user == nil {
		return nil, nil, apperrors.NewUnauthorized("user context required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	if ticket.RequesterID != user.ID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.visibleCommentsForUser(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// ListStaffTickets returns tickets in the staff member's organization.
func (s *TicketService) ListStaffTickets(ctx context.Context, staff *domain.StaffMember, filter TicketStaffFilter) ([]domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	repoFilter := repository.TicketFilter{
		CompanyID:   filter.CompanyID,
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Breached:    filter.Breached,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, staff.OrganizationID, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketForStaff fetches ticket ensuring staff access.
func (s *TicketService) GetTicketForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.commentsWithAttachments(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// AddComment appends a thread entry. The first staff public reply stamps the
// ticket's first-response time.
func (s *TicketService) AddComment(ctx context.Context, actor domain.SubjectType, actorID string, staff *domain.StaffMember, ticketID string, commentType domain.TicketCommentType, body string, attachments []CommentAttachmentInput) (*domain.TicketComment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	switch actor {
	case domain.SubjectTypeUser:
		if ticket.RequesterID != actorID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if commentType != domain.CommentTypePublicReply {
			return nil, apperrors.NewValidationError("users can only post public replies", nil)
		}
	case domain.SubjectTypeStaff:
		if staff == nil || staff.OrganizationID != ticket.OrganizationID {
			return nil, apperrors.NewForbidden("access denied")
		}
	default:
		return nil, apperrors.NewValidationError("unknown actor", nil)
	}

	comment := &domain.TicketComment{
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		CommentType:    commentType,
		Body:           strings.TrimSpace(body),
	}
	if actor == domain.SubjectTypeUser {
		comment.AuthorType = domain.AuthorTypeUser
		authorID := ticket.RequesterID
		comment.AuthorID = &authorID
	} else {
		comment.AuthorType = domain.AuthorTypeStaff
		comment.AuthorID = &staff.ID
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, att := range attachments {
		record := &domain.AttachmentReference{
			TicketID:   ticket.ID,
			CommentID:  &comment.ID,
			UploadedBy: actorID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		comment.Attachments = append(comment.Attachments, *record)
	}

	if actor == domain.SubjectTypeStaff && commentType == domain.CommentTypePublicReply && ticket.FirstResponseAt == nil {
		now := time.Now().UTC()
		ticket.FirstResponseAt = &now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketCommentAdded,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          actorFromSubject(actor, actorID),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			CommentType: comment.CommentType,
			AuthorType:  comment.AuthorType,
			AuthorID:    comment.AuthorID,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, nil
}

// CloseTicketAsUser closes a resolved ticket on the requester's behalf.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, user *domain.User, ticketID string) (*domain.Ticket, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("user context required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.RequesterID != user.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("ticket cannot be closed in current status", nil)
	}
	return s.applyStatus(ctx, ticket, domain.TicketStatusClosed, domain.AuthorTypeUser, &user.ID, "user_closed")
}

// UpdateStatus updates ticket status by staff, enforcing the transition
// table. Terminal transitions freeze the breach flag.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status, "to": newStatus,
		})
	}
	return s.applyStatus(ctx, ticket, newStatus, domain.AuthorTypeStaff, &staff.ID, comment)
}

// UpdatePriority changes ticket priority and re-anchors the SLA due date at
// the moment of the change rather than the original creation time.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewConflict("cannot reprioritize a terminal ticket", nil)
	}
	oldPriority := ticket.Priority
	now := time.Now().UTC()
	due, err := s.sla.DueDateFor(ctx, ticket.OrganizationID, newPriority, now)
	if err != nil {
		return nil, err
	}
	ticket.Priority = newPriority
	ticket.DueAt = &due
	ticket.SLAAnchorAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, domain.AuthorTypeStaff, &staff.ID, ticket.ID, domain.ChangeTypePriority,
		map[string]any{"priority": oldPriority},
		map[string]any{"priority": newPriority, "due_at": due})
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketPriorityChanged,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          staffActor(staff.ID),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
			NewDueAt:    ticket.DueAt,
		},
	})
	return ticket, nil
}

// AssignTicket sets or clears the assignee.
func (s *TicketService) AssignTicket(ctx context.Context, staff *domain.StaffMember, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.ticketForStaff(ctx, staff, ticketID)
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		assignee, err := s.staff.GetByID(ctx, *assigneeID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if assignee.OrganizationID != ticket.OrganizationID {
			return nil, apperrors.NewForbidden("assignee belongs to another organization")
		}
		if !assignee.Active {
			return nil, apperrors.NewValidationError("assignee inactive", nil)
		}
	}
	old := ticket.AssigneeID
	ticket.AssigneeID = assigneeID
	if ticket.Status == domain.TicketStatusNew && assigneeID != nil {
		ticket.Status = domain.TicketStatusOpen
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, domain.AuthorTypeStaff, &staff.ID, ticket.ID, domain.ChangeTypeAssignee,
		map[string]any{"assignee_staff_id": old},
		map[string]any{"assignee_staff_id": assigneeID})
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketAssigned,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          staffActor(staff.ID),
		Payload:        events.TicketAssignedPayload{AssigneeStaffID: assigneeID},
	})
	return ticket, nil
}

// ListHistoryForStaff returns history entries for staff.
func (s *TicketService) ListHistoryForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	if _, err := s.ticketForStaff(ctx, staff, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// applyStatus performs the transition and freezes the breach flag the moment
// the ticket first turns terminal: a ticket resolved past due stays breached
// as historical record, one resolved in time never becomes breached — not
// even when it moves RESOLVED to CLOSED after the due date has passed.
func (s *TicketService) applyStatus(ctx context.Context, ticket *domain.Ticket, newStatus domain.TicketStatus, actorType domain.CommentAuthorType, actorID *string, comment string) (*domain.Ticket, error) {
	oldStatus := ticket.Status
	now := time.Now().UTC()
	ticket.Status = newStatus
	if newStatus.IsTerminal() {
		if ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}
		if !oldStatus.IsTerminal() && ticket.DueAt != nil {
			ticket.SLABreached = schedule.EvaluateBreach(*ticket.DueAt, now, false, ticket.SLABreached)
		}
	} else if ticket.ClosedAt != nil {
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, actorType, actorID, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": newStatus, "comment": comment})
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketStatusChanged,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          actorFromAuthor(actorType, actorID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

func (s *TicketService) ticketForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.OrganizationID != staff.OrganizationID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) visibleCommentsForUser(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	comments, err := s.commentsWithAttachments(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.TicketComment, 0, len(comments))
	for _, comment := range comments {
		if comment.CommentType == domain.CommentTypeInternalNote {
			continue
		}
		filtered = append(filtered, comment)
	}
	return filtered, nil
}

func (s *TicketService) commentsWithAttachments(ctx context.Context, ticketID string) ([]domain.TicketComment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range comments {
		attachments, err := s.attachments.ListByComment(ctx, comments[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		comments[i].Attachments = attachments
	}
	return comments, nil
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) recordHistory(ctx context.Context, actorType domain.CommentAuthorType, actorID *string, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: actorType,
		ChangedByID:   actorID,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	_ = s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	publishEvent(ctx, s.dispatcher, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}

func actorFromSubject(subject domain.SubjectType, id string) events.Actor {
	switch subject {
	case domain.SubjectTypeStaff:
		return staffActor(id)
	default:
		return userActor(id)
	}
}

func actorFromAuthor(author domain.CommentAuthorType, id *string) events.Actor {
	if id == nil {
		return events.SystemActor()
	}
	if author == domain.AuthorTypeStaff {
		return staffActor(*id)
	}
	return userActor(*id)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusOnHold:     {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
