package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/issue-workflow/internal/api/http"
	"github.com/spec-kit/issue-workflow/internal/api/http/handlers"
	"github.com/spec-kit/issue-workflow/internal/auth"
	"github.com/spec-kit/issue-workflow/internal/config"
	"github.com/spec-kit/issue-workflow/internal/events"
	"github.com/spec-kit/issue-workflow/internal/observability"
	"github.com/spec-kit/issue-workflow/internal/persistence"
	"github.com/spec-kit/issue-workflow/internal/repository"
	"github.com/spec-kit/issue-workflow/internal/service"
	"github.com/spec-kit/issue-workflow/internal/worker"
	"github.com/spec-kit/issue-workflow/internal/workflow"
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
	metrics := observability.NewMetrics()

	userRepo := repository.NewUserRepository(pool)
	issueRepo := repository.NewIssueRepository(pool)
	templateRepo := repository.NewCachedTemplateRepository(
		repository.NewTemplateRepository(pool), redis.Client, 5*time.Minute, logger)
	valueRepo := repository.NewValueRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	fieldPermRepo := repository.NewFieldPermissionRepository(pool)
	maintenanceRepo := repository.NewMaintenanceRepository(pool)
	uow := repository.NewPgUnitOfWork(pool)

	processor := workflow.NewProcessor(workflow.Dependencies{
		IssueRepo:    issueRepo,
		TemplateRepo: templateRepo,
		ValueRepo:    valueRepo,
		AuditRepo:    auditRepo,
		UserRepo:     userRepo,
		Guard:        service.NewRoleGuard(),
		FieldGuard:   service.NewGroupFieldGuard(fieldPermRepo, userRepo),
	})

	dispatcher := events.NewInMemoryDispatcher()
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	issueService := service.NewIssueService(service.IssueDependencies{
		UnitOfWork: uow,
		Processor:  processor,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authService := service.NewAuthService(userRepo, tokenManager, cfg.Auth, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)
	worker.NewSuspensionWorker(maintenanceRepo, time.Hour, logger).Start(ctx)

	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
