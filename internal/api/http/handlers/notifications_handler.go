package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// NotificationsHandler exposes the in-app notification feed. Both end-users
// and staff see their own feed under the same routes.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// ListNotifications GET /notifications.
func (h *NotificationsHandler) ListNotifications(c *fiber.Ctx) error {
	subjectType, subjectID, organizationID, err := notificationSubject(c)
	if err != nil {
		return err
	}
	limit := parseInt(c.Query("limit"), 50)
	notifications, err := h.notifications.ListForSubject(c.Context(), subjectType, subjectID, organizationID, limit)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, notificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkNotificationRead PATCH /notifications/:id/read.
func (h *NotificationsHandler) MarkNotificationRead(c *fiber.Ctx) error {
	subjectType, subjectID, _, err := notificationSubject(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Context(), subjectType, subjectID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"read": true}})
}

func notificationSubject(c *fiber.Ctx) (domain.SubjectType, string, string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", "", "", apperrors.NewUnauthorized("authentication required")
	}
	switch {
	case principal.User != nil:
		return domain.SubjectTypeUser, principal.User.ID, principal.User.OrganizationID, nil
	case principal.Staff != nil:
		return domain.SubjectTypeStaff, principal.Staff.ID, principal.Staff.OrganizationID, nil
	}
	return "", "", "", apperrors.NewUnauthorized("authentication required")
}

func notificationResponse(notification *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        notification.ID,
		Title:     notification.Title,
		Message:   notification.Message,
		TicketID:  notification.TicketID,
		Read:      notification.ReadAt != nil,
		ReadAt:    notification.ReadAt,
		CreatedAt: notification.CreatedAt,
	}
}
