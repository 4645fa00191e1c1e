package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// TasksHandler exposes staff to-do endpoints.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: taskService}
}

// CreateTask POST /staff/tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	task, err := h.tasks.CreateTask(c.Context(), staff, taskInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// ListTasks GET /staff/tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	tasks, err := h.tasks.ListTasks(c.Context(), staff, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateTask PATCH /staff/tasks/:id.
func (h *TasksHandler) UpdateTask(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	task, err := h.tasks.UpdateTask(c.Context(), staff, c.Params("id"), taskInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

func taskInput(req dto.TaskRequest) service.TaskInput {
	return service.TaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		DueDate:         req.DueDate,
		AssignedStaffID: req.AssignedStaffID,
		TicketID:        req.TicketID,
	}
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:              task.ID,
		Title:           task.Title,
		Description:     task.Description,
		Status:          task.Status,
		DueDate:         task.DueDate,
		AssignedStaffID: task.AssignedStaffID,
		TicketID:        task.TicketID,
		CreatedByID:     task.CreatedByID,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}
