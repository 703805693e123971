package web

import (
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/dukex/caseflow/pkg/services"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func unauthorized(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(401).
		WithInstance(c.Path()).
		WithType("unauthenticated").
		WithDetail(detail)

	return c.Status(fiber.StatusUnauthorized).JSON(problem)
}

// handleServiceError maps service and domain errors to problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsPermissionError(err):
		problem := problems.NewStatusProblem(403).
			WithInstance(c.Path()).
			WithType("permission_denied").
			WithDetail(err.Error())

		return c.Status(fiber.StatusForbidden).JSON(problem)

	case persistence.IsAppNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("app_not_found").
			WithDetail("app not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsCaseNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("case_not_found").
			WithDetail("case not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsUserNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("user_not_found").
			WithDetail("user not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsReferenceError(err):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("unknown_reference").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("transition_conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
