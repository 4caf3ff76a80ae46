package storage

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		var in UploadInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		img, err := svc.SaveImage(c.Context(), userID(c), in)
		if err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(img)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		img, data, err := svc.GetImage(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return mapError(err)
		}
		c.Set("Content-Type", img.ContentType)
		return c.Send(data)
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
