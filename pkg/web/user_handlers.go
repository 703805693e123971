package web

import (
	"github.com/dukex/caseflow/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) GetUsers(c fiber.Ctx) error {
	users, err := h.services.Users.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(users)
}

func (h *APIHandlers) GetUser(c fiber.Ctx) error {
	user, err := h.services.Users.Resolve(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(user)
}

func (h *APIHandlers) InviteUser(c fiber.Ctx) error {
	var req InviteUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.services.Users.Invite(c.Context(), services.InviteUserInput{
		Email: req.Email,
		Role:  req.Role,
		Name:  req.Name,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *APIHandlers) UpdateUser(c fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.services.Users.Update(c.Context(), c.Params("id"), services.UpdateUserInput{
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(user)
}

func (h *APIHandlers) DeleteUser(c fiber.Ctx) error {
	userID, ok := actingUser(c)
	if !ok {
		return unauthorized(c, ActingUserHeader+" header is required")
	}

	err := h.services.Users.Delete(c.Context(), userID, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
