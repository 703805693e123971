package main

import (
	"context"
	"os"

	"github.com/dukex/caseflow/pkg/cmd"
	"github.com/dukex/caseflow/pkg/log"
	"github.com/dukex/caseflow/pkg/otelhelper"
	"github.com/dukex/caseflow/pkg/progression"
	"github.com/dukex/caseflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "caseflow-api",
		Usage:                 "Design workflows and move cases through them",
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
				Name:     "database-url",
				Usage:    "Persistence URL (file://<dir>, postgres://..., redis://...)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "seed",
				Usage:   "Load the demo apps, users and cases when the store is empty",
				Sources: cli.EnvVars("SEED_DEMO_DATA"),
			},
			&cli.BoolFlag{
				Name:    "strict-transitions",
				Usage:   "Reject completing a branching step without an explicit next step",
				Sources: cli.EnvVars("STRICT_TRANSITIONS"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
		},
		Action: run,
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}

func run(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("api")

	logger.InfoContext(ctx, "Initializing Caseflow API")

	persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return err
	}

	defer func() {
		err := persistence.Close(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
		}
	}()

	opts := []services.Option{
		services.WithEventPublisher(eventBus),
		services.WithEngine(progression.New(
			progression.WithStrictTransitions(command.Bool("strict-transitions")),
			progression.WithLogger(log.WithModule("progression")),
		)),
	}

	if command.Bool("tracing") {
		tracer, shutdown, err := otelhelper.NewTracer(ctx, "caseflow-api")
		if err != nil {
			return err
		}

		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		opts = append(opts, services.WithTracer(tracer))
	}

	svc := services.New(persistence, opts...)

	if command.Bool("seed") {
		seeded, err := svc.Seed(ctx)
		if err != nil {
			return err
		}

		logger.InfoContext(ctx, "Demo data", "seeded", seeded)
	}

	err = watchActivity(ctx, log.WithModule("activity"), eventBus)
	if err != nil {
		return err
	}

	return NewAPI(logger, svc).Start(command.Int("port"))
}
