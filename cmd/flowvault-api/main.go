package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/nkko/flowvault/pkg/backup"
	"github.com/nkko/flowvault/pkg/cmd"
	"github.com/nkko/flowvault/pkg/locks"
	"github.com/nkko/flowvault/pkg/log"
	"github.com/nkko/flowvault/pkg/otelhelper"
	"github.com/nkko/flowvault/pkg/platform"
	"github.com/nkko/flowvault/pkg/validation"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = 9094

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowvault-api",
		Usage:                 "Snapshot, validate and guard workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "backup-root",
				Usage:   "Root directory for workflow snapshots",
				Value:   "./backups",
				Sources: cli.EnvVars("BACKUP_ROOT"),
			},
			&cli.StringFlag{
				Name:     "platform-url",
				Usage:    "Base URL of the workflow platform API",
				Required: true,
				Sources:  cli.EnvVars("PLATFORM_URL"),
			},
			&cli.StringFlag{
				Name:    "platform-api-key",
				Usage:   "API key for the workflow platform",
				Sources: cli.EnvVars("PLATFORM_API_KEY"),
			},
			&cli.IntFlag{
				Name:    "keep-last",
				Usage:   "Number of snapshots to retain per workflow",
				Value:   backup.DefaultKeepLast,
				Sources: cli.EnvVars("KEEP_LAST"),
			},
			&cli.StringFlag{
				Name:    "rotation-schedule",
				Usage:   "Cron schedule for the retention sweep (empty disables it)",
				Sources: cli.EnvVars("ROTATION_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "lock-url",
				Usage:   "Lock manager URL (memory or redis://...)",
				Value:   "memory",
				Sources: cli.EnvVars("LOCK_URL"),
			},
			&cli.DurationFlag{
				Name:    "lock-ttl",
				Usage:   "Time after which an unreleased lock expires",
				Value:   locks.DefaultTTL,
				Sources: cli.EnvVars("LOCK_TTL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing FlowVault API")

			client := platform.NewHTTPClient(
				command.String("platform-url"),
				command.String("platform-api-key"),
			)

			store := backup.NewStore(command.String("backup-root"), client, logger)
			store.KeepLast = command.Int("keep-last")

			wfValidator := validation.NewValidator(client, logger)
			lockManager := cmd.NewLockManager(command.String("lock-url"), command.Duration("lock-ttl"))

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			var tracer trace.Tracer

			if command.Bool("tracing") {
				t, err := otelhelper.NewTracer(ctx, "flowvault-api")
				if err != nil {
					logger.WarnContext(ctx, "Failed to initialize tracer, continuing without tracing", "error", err)
				} else {
					tracer = t
				}
			}

			if schedule := command.String("rotation-schedule"); schedule != "" {
				scheduler := backup.NewRotationScheduler(store, logger, schedule)
				if err := scheduler.Start(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to start rotation scheduler", "error", err)
				} else {
					defer scheduler.Stop()
				}
			}

			api := NewAPI(
				logger,
				store,
				wfValidator,
				lockManager,
				eventBus,
				tracer,
			)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
