package web

import (
	"github.com/dukex/caseflow/pkg/board"
	"github.com/dukex/caseflow/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetBoard(c fiber.Ctx) error {
	appID := c.Params("id")

	app, err := h.services.Apps.FetchByID(c.Context(), appID)
	if err != nil {
		return handleServiceError(c, err)
	}

	columns, err := h.services.Cases.Board(c.Context(), appID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(BoardResponse{App: app, Columns: columns})
}

func (h *APIHandlers) GetSummary(c fiber.Ctx) error {
	counts, err := h.services.Cases.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(counts)
}

// GetCases lists an app's cases newest first, or grouped by status with ?view=status.
func (h *APIHandlers) GetCases(c fiber.Ctx) error {
	cases, err := h.services.Cases.ListByApp(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	switch c.Query("view") {
	case "", "list":
		return c.JSON(cases)
	case "status":
		return c.JSON(board.GroupCasesByStatus(cases))
	default:
		return badRequest(c, "Unknown view "+c.Query("view"))
	}
}

func (h *APIHandlers) CreateCase(c fiber.Ctx) error {
	var req CreateCaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.services.Cases.Create(c.Context(), req.toInput(c.Params("id")))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetCase(c fiber.Ctx) error {
	found, err := h.services.Cases.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(found)
}

func (h *APIHandlers) UpdateCase(c fiber.Ctx) error {
	var req UpdateCaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.services.Cases.Update(c.Context(), c.Params("id"), req.toInput())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

// GetCaseForm renders the current step. Without a signed in user canComplete
// only holds for unassigned steps.
func (h *APIHandlers) GetCaseForm(c fiber.Ctx) error {
	userID, _ := actingUser(c)

	form, err := h.services.Cases.Form(c.Context(), c.Params("id"), userID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(form)
}

func (h *APIHandlers) GetCaseProgress(c fiber.Ctx) error {
	progress, err := h.services.Cases.Progress(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(progress)
}

func (h *APIHandlers) CompleteStep(c fiber.Ctx) error {
	userID, ok := actingUser(c)
	if !ok {
		return unauthorized(c, ActingUserHeader+" header is required")
	}

	var req CompleteStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	updated, err := h.services.Cases.Submit(c.Context(), c.Params("id"), userID, services.SubmitRequest{
		StepID:     req.StepID,
		FormData:   req.FormData,
		NextStepID: req.NextStepID,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) MoveCase(c fiber.Ctx) error {
	var req MoveCaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	moved, err := h.services.Cases.MoveToStep(c.Context(), c.Params("id"), req.StepID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(moved)
}
