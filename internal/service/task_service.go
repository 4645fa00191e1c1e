package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// TaskService manages internal staff to-dos. Agents see only tasks assigned
// to them; managers and admins see the whole organization.
type TaskService struct {
	tasks   repository.TaskRepository
	tickets repository.TicketRepository
	staff   repository.StaffRepository
}

// NewTaskService constructs the service.
func NewTaskService(tasks repository.TaskRepository, tickets repository.TicketRepository, staff repository.StaffRepository) *TaskService {
	return &TaskService{tasks: tasks, tickets: tickets, staff: staff}
}

// TaskInput describes task payload.
type TaskInput struct {
	Title           string
	Description     string
	Status          domain.TaskStatus
	DueDate         *time.Time
	AssignedStaffID *string
	TicketID        *string
}

// CreateTask registers a task in the actor's organization.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.StaffMember, input TaskInput) (*domain.Task, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	if err := s.validateInput(ctx, actor.OrganizationID, input); err != nil {
		return nil, err
	}
	task := &domain.Task{
		OrganizationID:  actor.OrganizationID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Status:          input.Status,
		DueDate:         input.DueDate,
		AssignedStaffID: input.AssignedStaffID,
		TicketID:        input.TicketID,
		CreatedByID:     actor.ID,
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusTodo
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

// ListTasks returns tasks visible to the actor.
func (s *TaskService) ListTasks(ctx context.Context, actor *domain.StaffMember, limit, offset int) ([]domain.Task, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	var assignee *string
	if actor.Role == domain.StaffRoleAgent {
		assignee = &actor.ID
	}
	tasks, err := s.tasks.ListByOrganization(ctx, actor.OrganizationID, assignee, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tasks, nil
}

// UpdateTask edits a task. Agents may only touch tasks assigned to them or
// that they created.
func (s *TaskService) UpdateTask(ctx context.Context, actor *domain.StaffMember, taskID string, input TaskInput) (*domain.Task, error) {
	task, err := s.taskForStaff(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, actor.OrganizationID, input); err != nil {
		return nil, err
	}
	task.Title = strings.TrimSpace(input.Title)
	task.Description = strings.TrimSpace(input.Description)
	if input.Status != "" {
		task.Status = input.Status
	}
	task.DueDate = input.DueDate
	task.AssignedStaffID = input.AssignedStaffID
	task.TicketID = input.TicketID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	return task, nil
}

func (s *TaskService) taskForStaff(ctx context.Context, actor *domain.StaffMember, taskID string) (*domain.Task, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff context required")
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if task.OrganizationID != actor.OrganizationID {
		return nil, apperrors.NewForbidden("task belongs to another organization")
	}
	if actor.Role == domain.StaffRoleAgent {
		assigned := task.AssignedStaffID != nil && *task.AssignedStaffID == actor.ID
		if !assigned && task.CreatedByID != actor.ID {
			return nil, apperrors.NewForbidden("task belongs to another agent")
		}
	}
	return task, nil
}

func (s *TaskService) validateInput(ctx context.Context, organizationID string, input TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewValidationError("task title is required", nil)
	}
	if input.Status != "" && !input.Status.Valid() {
		return apperrors.NewValidationError("unknown task status", map[string]any{"status": input.Status})
	}
	if input.AssignedStaffID != nil {
		member, err := s.staff.GetByID(ctx, *input.AssignedStaffID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if member.OrganizationID != organizationID {
			return apperrors.NewForbidden("assignee belongs to another organization")
		}
		if !member.Active {
			return apperrors.NewValidationError("assignee inactive", nil)
		}
	}
	if input.TicketID != nil {
		ticket, err := s.tickets.GetByID(ctx, *input.TicketID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if ticket.OrganizationID != organizationID {
			return apperrors.NewForbidden("ticket belongs to another organization")
		}
	}
	return nil
}
