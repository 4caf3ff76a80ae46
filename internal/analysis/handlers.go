package analysis

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var in AnalyzeInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		a, err := svc.Analyze(c.Context(), userID(c), in)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		analyses, err := svc.ListAnalyses(c.Context(), userID(c))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(analyses)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		a, err := svc.GetAnalysis(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(a)
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
