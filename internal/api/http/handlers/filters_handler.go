package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// FiltersHandler exposes saved list filter endpoints.
type FiltersHandler struct {
	filters *service.SavedFilterService
}

// NewFiltersHandler constructs handler.
func NewFiltersHandler(filterService *service.SavedFilterService) *FiltersHandler {
	return &FiltersHandler{filters: filterService}
}

// SaveFilter POST /staff/filters.
func (h *FiltersHandler) SaveFilter(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SavedFilterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	filter, err := h.filters.SaveFilter(c.Context(), staff, service.SavedFilterInput{
		Name:       req.Name,
		EntityType: req.EntityType,
		Config:     req.Config,
		Shared:     req.Shared,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": savedFilterResponse(filter)})
}

// ListFilters GET /staff/filters.
func (h *FiltersHandler) ListFilters(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	filters, err := h.filters.ListFilters(c.Context(), staff)
	if err != nil {
		return err
	}
	items := make([]dto.SavedFilterResponse, 0, len(filters))
	for i := range filters {
		items = append(items, savedFilterResponse(&filters[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteFilter DELETE /staff/filters/:id.
func (h *FiltersHandler) DeleteFilter(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.filters.DeleteFilter(c.Context(), staff, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func savedFilterResponse(filter *domain.SavedFilter) dto.SavedFilterResponse {
	return dto.SavedFilterResponse{
		ID:         filter.ID,
		StaffID:    filter.StaffID,
		Name:       filter.Name,
		EntityType: filter.EntityType,
		Config:     filter.Config,
		Shared:     filter.Shared,
		CreatedAt:  filter.CreatedAt,
	}
}
