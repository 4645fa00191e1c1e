package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/itsm-service/internal/api/http"
	"github.com/spec-kit/itsm-service/internal/api/http/handlers"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/observability"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/service"
	"github.com/spec-kit/itsm-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	orgRepo := repository.NewOrganizationRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewTicketCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	calendarRepo := repository.NewCalendarRepository(pool)
	slaPolicyRepo := repository.NewSLAPolicyRepository(pool)
	assetRepo := repository.NewAssetRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	filterRepo := repository.NewSavedFilterRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	calendarService := service.NewCalendarService(calendarRepo, redis, logger)
	slaService := service.NewSLAService(service.SLADependencies{
		TicketRepo:    ticketRepo,
		SLAPolicyRepo: slaPolicyRepo,
		HistoryRepo:   historyRepo,
		Calendars:     calendarService,
		Dispatcher:    dispatcher,
	}, cfg.SLA.AtRiskThreshold, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		CompanyRepo:    companyRepo,
		StaffRepo:      staffRepo,
		HistoryRepo:    historyRepo,
		SLA:            slaService,
		Dispatcher:     dispatcher,
	})
	sessionService := service.NewSessionService(service.SessionDependencies{
		SessionRepo: sessionRepo,
		TicketRepo:  ticketRepo,
		Dispatcher:  dispatcher,
	}, logger)
	staffService := service.NewStaffService(service.StaffDependencies{
		OrganizationRepo: orgRepo,
		CompanyRepo:      companyRepo,
		StaffRepo:        staffRepo,
		UserRepo:         userRepo,
		BcryptCost:       cfg.Auth.BcryptCost,
	}, logger)
	authService := service.NewAuthService(service.AuthDependencies{
		OrganizationRepo:        orgRepo,
		UserRepo:                userRepo,
		StaffRepo:               staffRepo,
		ResetRepo:               resetRepo,
		Tokens:                  tokenManager,
		BcryptCost:              cfg.Auth.BcryptCost,
		PasswordResetTTLMinutes: cfg.Auth.PasswordResetTTLMinutes,
	}, logger)
	assetService := service.NewAssetService(assetRepo, companyRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, ticketRepo, staffRepo)
	filterService := service.NewSavedFilterService(filterRepo)
	dashboardService := service.NewDashboardService(dashboardRepo, logger)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Store:      notificationRepo,
		TicketRepo: ticketRepo,
		Cache:      redis,
		Config:     cfg.Notification,
	}, logger)

	worker.StartNotificationWorker(notificationService)
	slaMonitor := worker.NewSLAMonitor(slaService, cfg.SLA, logger)
	go slaMonitor.Run(ctx)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo, staffRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService, staffService),
		Tickets:        handlers.NewTicketsHandler(ticketService, slaService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, slaService),
		Sessions:       handlers.NewSessionsHandler(sessionService),
		Calendars:      handlers.NewCalendarsHandler(calendarService, slaService),
		Assets:         handlers.NewAssetsHandler(assetService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Filters:        handlers.NewFiltersHandler(filterService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
