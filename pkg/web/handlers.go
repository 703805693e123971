// Package web provides the HTTP handlers of the caseflow REST API.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/caseflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	services  *services.Services
	validator *validator.Validate
}

func NewAPIHandlers(services *services.Services, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		services:  services,
		validator: validator,
	}
}

// Routes registers every endpoint of the API on router.
func (h *APIHandlers) Routes(router fiber.Router) {
	a := router.Group("/apps")
	a.Get("/", h.GetApps)
	a.Post("/", h.CreateApp)
	a.Get("/:id", h.GetApp)
	a.Patch("/:id", h.UpdateApp)
	a.Delete("/:id", h.DeleteApp)
	a.Get("/:id/board", h.GetBoard)
	a.Get("/:id/summary", h.GetSummary)
	a.Get("/:id/cases", h.GetCases)
	a.Post("/:id/cases", h.CreateCase)

	w := a.Group("/:id/workflow")
	w.Get("/", h.GetWorkflow)
	w.Put("/", h.ReplaceWorkflow)
	w.Get("/columns", h.GetColumns)
	w.Post("/nodes", h.AddNode)
	w.Patch("/nodes/:nodeId", h.UpdateNode)
	w.Post("/nodes/:nodeId/move", h.MoveNode)
	w.Delete("/nodes/:nodeId", h.DeleteNode)
	w.Put("/nodes/:nodeId/form/mode", h.SetFormMode)
	w.Post("/nodes/:nodeId/form/fields", h.AddFormField)
	w.Patch("/nodes/:nodeId/form/fields/:fieldId", h.UpdateFormField)
	w.Delete("/nodes/:nodeId/form/fields/:fieldId", h.DeleteFormField)
	w.Post("/edges", h.Connect)
	w.Delete("/edges/:edgeId", h.Disconnect)

	cs := router.Group("/cases")
	cs.Get("/:id", h.GetCase)
	cs.Patch("/:id", h.UpdateCase)
	cs.Get("/:id/form", h.GetCaseForm)
	cs.Get("/:id/progress", h.GetCaseProgress)
	cs.Post("/:id/complete", h.CompleteStep)
	cs.Post("/:id/step", h.MoveCase)

	u := router.Group("/users")
	u.Get("/", h.GetUsers)
	u.Post("/", h.InviteUser)
	u.Get("/:id", h.GetUser)
	u.Patch("/:id", h.UpdateUser)
	u.Delete("/:id", h.DeleteUser)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.services.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Caseflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "Caseflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// actingUser returns the id of the signed in user.
func actingUser(c fiber.Ctx) (string, bool) {
	id := c.Get(ActingUserHeader)

	return id, id != ""
}

func (h *APIHandlers) GetApps(c fiber.Ctx) error {
	apps, err := h.services.Apps.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(apps)
}

func (h *APIHandlers) GetApp(c fiber.Ctx) error {
	app, err := h.services.Apps.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(app)
}

func (h *APIHandlers) CreateApp(c fiber.Ctx) error {
	var req CreateAppRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	app, err := h.services.Apps.Create(c.Context(), services.CreateAppInput{
		Name:       req.Name,
		Icon:       req.Icon,
		ThemeColor: req.ThemeColor,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *APIHandlers) UpdateApp(c fiber.Ctx) error {
	var req UpdateAppRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	app, err := h.services.Apps.Update(c.Context(), c.Params("id"), services.UpdateAppInput{
		Name:       req.Name,
		Icon:       req.Icon,
		ThemeColor: req.ThemeColor,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(app)
}

func (h *APIHandlers) DeleteApp(c fiber.Ctx) error {
	err := h.services.Apps.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
