package web

import (
	"github.com/dukex/caseflow/pkg/builder"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	doc, err := h.services.Workflows.Document(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(doc)
}

// ReplaceWorkflow stores a whole document. The body is checked against the
// document schema before anything is decoded.
func (h *APIHandlers) ReplaceWorkflow(c fiber.Ctx) error {
	doc, err := h.services.Workflows.Replace(c.Context(), c.Params("id"), c.Body())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(doc)
}

func (h *APIHandlers) GetColumns(c fiber.Ctx) error {
	columns, err := h.services.Workflows.Columns(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(columns)
}

func (h *APIHandlers) AddNode(c fiber.Ctx) error {
	var req AddNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var opts []builder.NodeOption
	if req.ID != "" {
		opts = append(opts, builder.WithNodeID(req.ID))
	}

	if req.Label != "" {
		opts = append(opts, builder.WithLabel(req.Label))
	}

	node, err := h.services.Workflows.AddNode(c.Context(), c.Params("id"), req.Type, models.Position{X: req.X, Y: req.Y}, opts...)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) UpdateNode(c fiber.Ctx) error {
	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.services.Workflows.UpdateNode(c.Context(), c.Params("id"), c.Params("nodeId"), builder.NodePatch{
		Label:       req.Label,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		Form:        req.Form,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return h.GetWorkflow(c)
}

func (h *APIHandlers) MoveNode(c fiber.Ctx) error {
	var req MoveNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	err := h.services.Workflows.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), models.Position{X: req.X, Y: req.Y})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteNode(c fiber.Ctx) error {
	err := h.services.Workflows.DeleteNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Connect answers 201 with the new edge, or 204 when the connection was a
// self loop or duplicate and nothing changed.
func (h *APIHandlers) Connect(c fiber.Ctx) error {
	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var opts []builder.EdgeOption
	if req.Label != "" {
		opts = append(opts, builder.WithEdgeLabel(req.Label))
	}

	edge, err := h.services.Workflows.Connect(c.Context(), c.Params("id"), req.Source, req.Target, opts...)
	if err != nil {
		return handleServiceError(c, err)
	}

	if edge == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}

	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (h *APIHandlers) Disconnect(c fiber.Ctx) error {
	err := h.services.Workflows.Disconnect(c.Context(), c.Params("id"), c.Params("edgeId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) SetFormMode(c fiber.Ctx) error {
	var req SetFormModeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.services.Workflows.SetFormMode(c.Context(), c.Params("id"), c.Params("nodeId"), req.Mode)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) AddFormField(c fiber.Ctx) error {
	var req FormFieldRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	field, err := h.services.Workflows.AddFormField(c.Context(), c.Params("id"), c.Params("nodeId"), req.toField())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(field)
}

func (h *APIHandlers) UpdateFormField(c fiber.Ctx) error {
	var req FormFieldRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.services.Workflows.UpdateFormField(c.Context(), c.Params("id"), c.Params("nodeId"), c.Params("fieldId"), req.toField())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DeleteFormField(c fiber.Ctx) error {
	err := h.services.Workflows.DeleteFormField(c.Context(), c.Params("id"), c.Params("nodeId"), c.Params("fieldId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
