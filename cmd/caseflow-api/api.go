// Package main provides the caseflow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/caseflow/pkg/services"
	"github.com/dukex/caseflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	services *services.Services
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, services *services.Services) *API {
	return &API{
		logger:   logger,
		services: services,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.services, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := a.services.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Caseflow API")
	})

	handlers.Routes(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Caseflow API listening", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
