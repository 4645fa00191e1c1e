package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/http/handlers"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Sessions       *handlers.SessionsHandler
	Calendars      *handlers.CalendarsHandler
	Assets         *handlers.AssetsHandler
	Tasks          *handlers.TasksHandler
	Filters        *handlers.FiltersHandler
	Dashboard      *handlers.DashboardHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Staff.ChangePassword)

	// End-user surface.
	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)

	// Shared feed: both end-users and staff read their own notifications.
	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	notifications.Get("/", cfg.Notifications.ListNotifications)
	notifications.Patch("/:id/read", cfg.Notifications.MarkNotificationRead)

	// Staff surface. Role checks beyond "any staff" happen in the services.
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())

	staff.Get("/tickets", cfg.StaffTickets.ListStaffTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetStaffTicket)
	staff.Post("/tickets/:id/comments", cfg.StaffTickets.AddStaffComment)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.StaffTickets.UpdatePriority)
	staff.Patch("/tickets/:id/assignee", cfg.StaffTickets.AssignTicket)
	staff.Post("/tickets/:id/sla/reset", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.StaffTickets.ResetSLA)

	staff.Post("/sessions/start", cfg.Sessions.StartSession)
	staff.Post("/sessions/manual", cfg.Sessions.CreateManualEntry)
	staff.Post("/sessions/:id/stop", cfg.Sessions.StopSession)
	staff.Get("/sessions", cfg.Sessions.ListSessions)
	staff.Get("/sessions/aggregate", cfg.Sessions.AggregateSessions)

	staff.Get("/calendar", cfg.Calendars.GetBusinessHours)
	staff.Put("/calendar", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Calendars.UpsertBusinessHours)
	staff.Get("/sla/policies", cfg.Calendars.ListSLAPolicies)
	staff.Put("/sla/policies", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Calendars.UpsertSLAPolicy)

	staff.Get("/companies", cfg.Staff.ListCompanies)
	staff.Post("/companies", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Staff.CreateCompany)
	staff.Put("/companies/:id", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Staff.UpdateCompany)

	staff.Get("/members", cfg.Staff.ListStaff)
	staff.Post("/members", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Staff.CreateStaff)
	staff.Post("/members/:id/deactivate", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Staff.DeactivateStaff)
	staff.Post("/users", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.Staff.CreateUser)

	staff.Get("/dashboard/stats", cfg.Dashboard.GetStats)

	staff.Get("/tasks", cfg.Tasks.ListTasks)
	staff.Post("/tasks", cfg.Tasks.CreateTask)
	staff.Patch("/tasks/:id", cfg.Tasks.UpdateTask)

	staff.Get("/filters", cfg.Filters.ListFilters)
	staff.Post("/filters", cfg.Filters.SaveFilter)
	staff.Delete("/filters/:id", cfg.Filters.DeleteFilter)

	staff.Get("/assets", cfg.Assets.ListAssets)
	staff.Post("/assets", cfg.Assets.CreateAsset)
	staff.Get("/assets/:id", cfg.Assets.GetAsset)
	staff.Put("/assets/:id", cfg.Assets.UpdateAsset)
}
