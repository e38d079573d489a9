// Package main provides the FlowVault API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/nkko/flowvault/pkg/backup"
	"github.com/nkko/flowvault/pkg/eventbus"
	"github.com/nkko/flowvault/pkg/locks"
	"github.com/nkko/flowvault/pkg/services"
	"github.com/nkko/flowvault/pkg/validation"
	"github.com/nkko/flowvault/pkg/web"
)

type API struct {
	logger      *slog.Logger
	store       *backup.Store
	validator   *validation.Validator
	lockManager locks.Manager
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store *backup.Store,
	wfValidator *validation.Validator,
	lockManager locks.Manager,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		store:       store,
		validator:   wfValidator,
		lockManager: lockManager,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	a.store.EventBus = a.eventBus

	backupService := services.NewBackup(a.store, a.logger)
	backupService.Tracer = a.tracer

	integrityService := services.NewIntegrity(a.validator, a.logger)

	lockService := services.NewLocks(a.lockManager, a.logger)
	lockService.EventBus = a.eventBus

	handlers := web.NewAPIHandlers(backupService, integrityService, lockService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowVault API")
	})

	w := app.Group("/workflows")
	w.Post("/:id/backups", handlers.CreateBackup)
	w.Get("/:id/backups", handlers.ListBackups)
	w.Get("/:id/backups/diff", handlers.DiffBackups)
	w.Post("/:id/backups/rotate", handlers.RotateBackups)
	w.Post("/:id/backups/:backupId/restore", handlers.RestoreBackup)

	v := app.Group("/validate")
	v.Post("/structure", handlers.ValidateStructure)
	v.Post("/expressions", handlers.ValidateExpressions)

	app.Post("/lint", handlers.LintWorkflow)
	app.Post("/suggestions", handlers.SuggestImprovements)

	l := app.Group("/locks")
	l.Get("/:resourceId", handlers.GetLockStatus)
	l.Get("/:resourceId/deletable", handlers.CheckDeletable)
	l.Put("/:resourceId/holders/:holderId", handlers.AcquireLock)
	l.Delete("/:resourceId/holders/:holderId", handlers.ReleaseLock)
	l.Delete("/holders/:holderId", handlers.ReleaseAllLocks)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
