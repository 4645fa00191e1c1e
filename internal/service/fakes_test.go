package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) GetByExternalKey(_ context.Context, organizationID, key string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.OrganizationID == organizationID && ticket.ExternalKey == key {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, organizationID string, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.OrganizationID != organizationID {
			continue
		}
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Breached != nil && ticket.SLABreached != *filter.Breached {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *memTicketRepo) ListOverdue(_ context.Context, asOf time.Time, limit int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.SLABreached || ticket.Status.IsTerminal() || ticket.DueAt == nil {
			continue
		}
		if ticket.DueAt.Before(asOf) {
			result = append(result, *ticket)
		}
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memCommentRepo struct {
	mu       sync.Mutex
	comments []domain.TicketComment
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketComment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type memAttachmentRepo struct {
	mu          sync.Mutex
	attachments []domain.AttachmentReference
}

func (r *memAttachmentRepo) Create(_ context.Context, attachment *domain.AttachmentReference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = uuid.NewString()
	attachment.CreatedAt = time.Now().UTC()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *memAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.AttachmentReference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AttachmentReference
	for _, att := range r.attachments {
		if att.TicketID == ticketID {
			result = append(result, att)
		}
	}
	return result, nil
}

func (r *memAttachmentRepo) ListByComment(_ context.Context, commentID string) ([]domain.AttachmentReference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.AttachmentReference
	for _, att := range r.attachments {
		if att.CommentID != nil && *att.CommentID == commentID {
			result = append(result, att)
		}
	}
	return result, nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

func (r *memHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	history.ID = uuid.NewString()
	history.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *history)
	return nil
}

func (r *memHistoryRepo) ListByTicket(_ context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *memHistoryRepo) byType(changeType domain.TicketChangeType) []domain.TicketHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.ChangeType == changeType {
			result = append(result, entry)
		}
	}
	return result
}

type memPolicyRepo struct {
	mu       sync.Mutex
	policies map[string]*domain.SLAPolicy
}

func newMemPolicyRepo() *memPolicyRepo {
	return &memPolicyRepo{policies: map[string]*domain.SLAPolicy{}}
}

func policyKey(organizationID string, priority domain.TicketPriority) string {
	return organizationID + "|" + string(priority)
}

func (r *memPolicyRepo) Upsert(_ context.Context, policy *domain.SLAPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if policy.ID == "" {
		policy.ID = uuid.NewString()
	}
	policy.UpdatedAt = time.Now().UTC()
	clone := *policy
	r.policies[policyKey(policy.OrganizationID, policy.Priority)] = &clone
	return nil
}

func (r *memPolicyRepo) GetByPriority(_ context.Context, organizationID string, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	policy, ok := r.policies[policyKey(organizationID, priority)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *policy
	return &clone, nil
}

func (r *memPolicyRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.SLAPolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.SLAPolicy
	for _, policy := range r.policies {
		if policy.OrganizationID == organizationID {
			result = append(result, *policy)
		}
	}
	return result, nil
}

type memCalendarRepo struct {
	mu    sync.Mutex
	hours map[string]*domain.BusinessHours
}

func newMemCalendarRepo() *memCalendarRepo {
	return &memCalendarRepo{hours: map[string]*domain.BusinessHours{}}
}

func (r *memCalendarRepo) Upsert(_ context.Context, hours *domain.BusinessHours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hours.ID == "" {
		hours.ID = uuid.NewString()
	}
	clone := *hours
	r.hours[hours.OrganizationID] = &clone
	return nil
}

func (r *memCalendarRepo) GetByOrganization(_ context.Context, organizationID string) (*domain.BusinessHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hours, ok := r.hours[organizationID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *hours
	return &clone, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	locks    map[string]*sync.Mutex
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{
		sessions: map[string]*domain.Session{},
		locks:    map[string]*sync.Mutex{},
	}
}

func (r *memSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = uuid.NewString()
	session.CreatedAt = time.Now().UTC()
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) Update(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *session
	return &clone, nil
}

func (r *memSessionRepo) ListByAgent(_ context.Context, organizationID, agentID string) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Session
	for _, session := range r.sessions {
		if session.OrganizationID == organizationID && session.AgentID == agentID {
			result = append(result, *session)
		}
	}
	return result, nil
}

func (r *memSessionRepo) ListWithFilter(_ context.Context, organizationID string, filter repository.SessionFilter) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Session
	for _, session := range r.sessions {
		if session.OrganizationID != organizationID {
			continue
		}
		if filter.AgentID != nil && session.AgentID != *filter.AgentID {
			continue
		}
		if filter.OnlyOpen && session.EndTime != nil {
			continue
		}
		if filter.From != nil && session.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !session.StartTime.Before(*filter.To) {
			continue
		}
		result = append(result, *session)
	}
	return result, nil
}

func (r *memSessionRepo) WithAgentLock(_ context.Context, agentID string, fn func(repository.SessionRepository) error) error {
	r.mu.Lock()
	lock, ok := r.locks[agentID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[agentID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(r)
}

type memCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]*domain.Company
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{companies: map[string]*domain.Company{}}
}

func (r *memCompanyRepo) Create(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	clone := *company
	r.companies[company.ID] = &clone
	return nil
}

func (r *memCompanyRepo) Update(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *company
	r.companies[company.ID] = &clone
	return nil
}

func (r *memCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	company, ok := r.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *company
	return &clone, nil
}

func (r *memCompanyRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Company
	for _, company := range r.companies {
		if company.OrganizationID == organizationID {
			result = append(result, *company)
		}
	}
	return result, nil
}

type memStaffRepo struct {
	mu      sync.Mutex
	members map[string]*domain.StaffMember
}

func newMemStaffRepo() *memStaffRepo {
	return &memStaffRepo{members: map[string]*domain.StaffMember{}}
}

func (r *memStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	clone := *staff
	r.members[staff.ID] = &clone
	return nil
}

func (r *memStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *staff
	r.members[staff.ID] = &clone
	return nil
}

func (r *memStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	staff, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *staff
	return &clone, nil
}

func (r *memStaffRepo) GetByEmail(_ context.Context, organizationID, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, staff := range r.members {
		if staff.OrganizationID == organizationID && staff.Email == email {
			clone := *staff
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memStaffRepo) ListByOrganization(_ context.Context, organizationID string, limit, offset int) ([]domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.StaffMember
	for _, staff := range r.members {
		if staff.OrganizationID == organizationID {
			result = append(result, *staff)
		}
	}
	return result, nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*domain.Task{}}
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	task.UpdatedAt = time.Now().UTC()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *task
	return &clone, nil
}

func (r *memTaskRepo) ListByOrganization(_ context.Context, organizationID string, assignedStaffID *string, limit, offset int) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Task
	for _, task := range r.tasks {
		if task.OrganizationID != organizationID {
			continue
		}
		if assignedStaffID != nil && (task.AssignedStaffID == nil || *task.AssignedStaffID != *assignedStaffID) {
			continue
		}
		result = append(result, *task)
	}
	return result, nil
}

type memFilterRepo struct {
	mu      sync.Mutex
	filters map[string]*domain.SavedFilter
}

func newMemFilterRepo() *memFilterRepo {
	return &memFilterRepo{filters: map[string]*domain.SavedFilter{}}
}

func (r *memFilterRepo) Create(_ context.Context, filter *domain.SavedFilter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	filter.ID = uuid.NewString()
	filter.CreatedAt = time.Now().UTC()
	clone := *filter
	r.filters[filter.ID] = &clone
	return nil
}

func (r *memFilterRepo) GetByID(_ context.Context, id string) (*domain.SavedFilter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filter, ok := r.filters[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *filter
	return &clone, nil
}

func (r *memFilterRepo) ListForStaff(_ context.Context, organizationID, staffID string) ([]domain.SavedFilter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.SavedFilter
	for _, filter := range r.filters {
		if filter.OrganizationID != organizationID {
			continue
		}
		if filter.StaffID != staffID && !filter.Shared {
			continue
		}
		result = append(result, *filter)
	}
	return result, nil
}

func (r *memFilterRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.filters[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.filters, id)
	return nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	notifications map[string]*domain.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{notifications: map[string]*domain.Notification{}}
}

func (r *memNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now().UTC()
	clone := *notification
	r.notifications[notification.ID] = &clone
	return nil
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, organizationID string, recipientType domain.SubjectType, recipientID string, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, notification := range r.notifications {
		if notification.OrganizationID != organizationID {
			continue
		}
		if notification.RecipientType != recipientType || notification.RecipientID != recipientID {
			continue
		}
		result = append(result, *notification)
	}
	return result, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id string, recipientType domain.SubjectType, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification, ok := r.notifications[id]
	if !ok || notification.RecipientType != recipientType || notification.RecipientID != recipientID {
		return pgx.ErrNoRows
	}
	if notification.ReadAt == nil {
		now := time.Now().UTC()
		notification.ReadAt = &now
	}
	return nil
}

type recordedDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordedDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordedDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordedDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return de.Code
}

// testEnv wires the services against in-memory repositories.
type testEnv struct {
	tickets    *memTicketRepo
	comments   *memCommentRepo
	atts       *memAttachmentRepo
	history    *memHistoryRepo
	policies   *memPolicyRepo
	calendars  *memCalendarRepo
	sessions   *memSessionRepo
	companies  *memCompanyRepo
	staff      *memStaffRepo
	tasks      *memTaskRepo
	filters    *memFilterRepo
	dispatcher *recordedDispatcher

	calendarSvc *CalendarService
	slaSvc      *SLAService
	ticketSvc   *TicketService
	sessionSvc  *SessionService
	taskSvc     *TaskService
	filterSvc   *SavedFilterService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tickets:    newMemTicketRepo(),
		comments:   &memCommentRepo{},
		atts:       &memAttachmentRepo{},
		history:    &memHistoryRepo{},
		policies:   newMemPolicyRepo(),
		calendars:  newMemCalendarRepo(),
		sessions:   newMemSessionRepo(),
		companies:  newMemCompanyRepo(),
		staff:      newMemStaffRepo(),
		tasks:      newMemTaskRepo(),
		filters:    newMemFilterRepo(),
		dispatcher: &recordedDispatcher{},
	}
	logger := zap.NewNop()
	env.calendarSvc = NewCalendarService(env.calendars, nil, logger)
	env.slaSvc = NewSLAService(SLADependencies{
		TicketRepo:    env.tickets,
		SLAPolicyRepo: env.policies,
		HistoryRepo:   env.history,
		Calendars:     env.calendarSvc,
		Dispatcher:    env.dispatcher,
	}, 0.2, logger)
	env.ticketSvc = NewTicketService(TicketDependencies{
		TicketRepo:     env.tickets,
		CommentRepo:    env.comments,
		AttachmentRepo: env.atts,
		CompanyRepo:    env.companies,
		StaffRepo:      env.staff,
		HistoryRepo:    env.history,
		SLA:            env.slaSvc,
		Dispatcher:     env.dispatcher,
	})
	env.sessionSvc = NewSessionService(SessionDependencies{
		SessionRepo: env.sessions,
		TicketRepo:  env.tickets,
		Dispatcher:  env.dispatcher,
	}, logger)
	env.taskSvc = NewTaskService(env.tasks, env.tickets, env.staff)
	env.filterSvc = NewSavedFilterService(env.filters)
	return env
}

func (e *testEnv) user(orgID string) *domain.User {
	return &domain.User{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           "Requester",
		Email:          "requester@example.com",
		Status:         domain.UserStatusActive,
	}
}

func (e *testEnv) staffMember(orgID string, role domain.StaffRole) *domain.StaffMember {
	member := &domain.StaffMember{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           "Agent",
		Email:          uuid.NewString() + "@example.com",
		Role:           role,
		Active:         true,
	}
	_ = e.staff.Create(context.Background(), member)
	return member
}
