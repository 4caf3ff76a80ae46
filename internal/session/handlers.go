package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req CreateSessionInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sess, err := svc.CreateSession(c.Context(), userID(c), req)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		sessions, err := svc.ListSessions(c.Context(), userID(c))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"sessions": sessions})
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		sess, err := svc.GetSession(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(sess)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req UpdateSessionInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		sess, err := svc.UpdateSession(c.Context(), userID(c), c.Params("id"), req)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(sess)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteSession(c.Context(), userID(c), c.Params("id")); err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"deleted": true})
	})

	r.Post("/:id/items", authMiddleware, func(c *fiber.Ctx) error {
		var req ItemInput
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		item, err := svc.AddItem(c.Context(), userID(c), c.Params("id"), req)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	r.Get("/:id/items", authMiddleware, func(c *fiber.Ctx) error {
		items, err := svc.ListItems(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"items": items})
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// mapError translates the service error taxonomy into HTTP statuses without
// leaking query internals on store failures.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "not your session")
	case errors.Is(err, ErrActiveExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
