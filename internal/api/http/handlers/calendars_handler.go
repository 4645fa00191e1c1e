package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// CalendarsHandler exposes business-hours and SLA policy configuration.
type CalendarsHandler struct {
	calendars *service.CalendarService
	sla       *service.SLAService
}

// NewCalendarsHandler constructs handler.
func NewCalendarsHandler(calendarService *service.CalendarService, slaService *service.SLAService) *CalendarsHandler {
	return &CalendarsHandler{calendars: calendarService, sla: slaService}
}

// GetBusinessHours GET /staff/calendar.
func (h *CalendarsHandler) GetBusinessHours(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	hours, err := h.calendars.GetBusinessHours(c.Context(), staff.OrganizationID)
	if err != nil {
		domainErr := apperrors.ToDomainError(err)
		if domainErr.Code == "NOT_FOUND" {
			return c.JSON(fiber.Map{"data": dto.BusinessHoursResponse{
				Name:     "default",
				Timezone: "UTC",
				Default:  true,
			}})
		}
		return err
	}
	return c.JSON(fiber.Map{"data": businessHoursResponse(hours)})
}

// UpsertBusinessHours PUT /staff/calendar.
func (h *CalendarsHandler) UpsertBusinessHours(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BusinessHoursRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	hours := &domain.BusinessHours{
		OrganizationID: staff.OrganizationID,
		Name:           req.Name,
		Timezone:       req.Timezone,
		Holidays:       req.Holidays,
	}
	for _, w := range req.Windows {
		hours.Windows = append(hours.Windows, domain.DayWindow{
			Weekday:   time.Weekday(w.Weekday),
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}
	stored, err := h.calendars.UpsertBusinessHours(c.Context(), staff, hours)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": businessHoursResponse(stored)})
}

// ListSLAPolicies GET /staff/sla/policies.
func (h *CalendarsHandler) ListSLAPolicies(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	policies, err := h.sla.ListPolicies(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	resp := make([]dto.SLAPolicyResponse, 0, len(policies))
	for i := range policies {
		resp = append(resp, slaPolicyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpsertSLAPolicy PUT /staff/sla/policies.
func (h *CalendarsHandler) UpsertSLAPolicy(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SLAPolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" {
		return apperrors.NewValidationError("priority required", nil)
	}
	policy := &domain.SLAPolicy{
		OrganizationID:          staff.OrganizationID,
		Name:                    req.Name,
		Priority:                req.Priority,
		ResponseTargetMinutes:   req.ResponseTargetMinutes,
		ResolutionTargetMinutes: req.ResolutionTargetMinutes,
		IsActive:                true,
	}
	if req.IsActive != nil {
		policy.IsActive = *req.IsActive
	}
	stored, err := h.sla.UpsertPolicy(c.Context(), staff, policy)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": slaPolicyResponse(stored)})
}

func businessHoursResponse(hours *domain.BusinessHours) dto.BusinessHoursResponse {
	windows := make([]dto.DayWindowRequest, 0, len(hours.Windows))
	for _, w := range hours.Windows {
		windows = append(windows, dto.DayWindowRequest{
			Weekday:   int(w.Weekday),
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}
	return dto.BusinessHoursResponse{
		ID:       hours.ID,
		Name:     hours.Name,
		Timezone: hours.Timezone,
		Windows:  windows,
		Holidays: hours.Holidays,
	}
}

func slaPolicyResponse(policy *domain.SLAPolicy) dto.SLAPolicyResponse {
	return dto.SLAPolicyResponse{
		ID:                      policy.ID,
		Name:                    policy.Name,
		Priority:                policy.Priority,
		ResponseTargetMinutes:   policy.ResponseTargetMinutes,
		ResolutionTargetMinutes: policy.ResolutionTargetMinutes,
		IsActive:                policy.IsActive,
		UpdatedAt:               policy.UpdatedAt,
	}
}
