package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/service"
)

// DashboardHandler exposes organization statistics.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

// GetStats GET /staff/dashboard/stats.
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	stats, err := h.dashboard.GetStats(c.Context(), staff)
	if err != nil {
		return err
	}
	byStatus := make(map[string]int64, len(stats.TicketsByStatus))
	for status, count := range stats.TicketsByStatus {
		byStatus[string(status)] = count
	}
	byPriority := make(map[string]int64, len(stats.TicketsByPriority))
	for priority, count := range stats.TicketsByPriority {
		byPriority[string(priority)] = count
	}
	return c.JSON(fiber.Map{"data": dto.DashboardStatsResponse{
		TotalTickets:      stats.TotalTickets,
		OpenTickets:       stats.OpenTickets,
		BreachedTickets:   stats.BreachedTickets,
		TicketsByStatus:   byStatus,
		TicketsByPriority: byPriority,
		OpenSessions:      stats.OpenSessions,
		ActiveStaff:       stats.ActiveStaff,
		EndUsers:          stats.EndUsers,
		Companies:         stats.Companies,
	}})
}
