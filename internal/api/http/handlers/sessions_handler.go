package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// SessionsHandler exposes agent time-tracking endpoints.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessionService *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessionService}
}

// StartSession POST /staff/sessions/start.
func (h *SessionsHandler) StartSession(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.StartSessionInput{
		TicketID: req.TicketID,
		Note:     req.Note,
	}
	if req.StartTime != nil {
		input.StartTime = *req.StartTime
	}
	if req.Visibility != nil {
		input.Visibility = *req.Visibility
	}
	session, err := h.sessions.StartSession(c.Context(), staff, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// StopSession POST /staff/sessions/:id/stop.
func (h *SessionsHandler) StopSession(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StopSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var endTime time.Time
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	session, err := h.sessions.StopSession(c.Context(), staff, c.Params("id"), endTime)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// CreateManualEntry POST /staff/sessions/manual.
func (h *SessionsHandler) CreateManualEntry(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ManualEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return apperrors.NewValidationError("start_time and end_time required", nil)
	}
	input := service.ManualEntryInput{
		TicketID:  req.TicketID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
	}
	if req.Visibility != nil {
		input.Visibility = *req.Visibility
	}
	session, err := h.sessions.CreateManualEntry(c.Context(), staff, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// ListSessions GET /staff/sessions.
func (h *SessionsHandler) ListSessions(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	filter := parseSessionFilter(c)
	sessions, err := h.sessions.ListSessions(c.Context(), staff, filter)
	if err != nil {
		return err
	}
	items := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, sessionResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AggregateSessions GET /staff/sessions/aggregate.
func (h *SessionsHandler) AggregateSessions(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	agentID := c.Query("agent_id")
	if agentID == "" {
		agentID = staff.ID
	}
	from := parseTime(c.Query("from"))
	to := parseTime(c.Query("to"))
	total, err := h.sessions.AggregateForAgent(c.Context(), staff, agentID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SessionAggregateResponse{
		AgentID:      agentID,
		From:         from,
		To:           to,
		TotalMinutes: total,
	}})
}

func parseSessionFilter(c *fiber.Ctx) repository.SessionFilter {
	filter := repository.SessionFilter{}
	if agentID := c.Query("agent_id"); agentID != "" {
		filter.AgentID = &agentID
	}
	if ticketID := c.Query("ticket_id"); ticketID != "" {
		filter.TicketID = &ticketID
	}
	if from := parseTime(c.Query("from")); from != nil {
		filter.From = from
	}
	if to := parseTime(c.Query("to")); to != nil {
		filter.To = to
	}
	if open := c.Query("open"); open != "" {
		if val, err := strconv.ParseBool(open); err == nil {
			filter.OnlyOpen = val
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func sessionResponse(session *domain.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:              session.ID,
		AgentID:         session.AgentID,
		TicketID:        session.TicketID,
		StartTime:       session.StartTime,
		EndTime:         session.EndTime,
		DurationMinutes: session.DurationMinutes,
		Note:            session.Note,
		Visibility:      session.Visibility,
		CreatedAt:       session.CreatedAt,
	}
}
