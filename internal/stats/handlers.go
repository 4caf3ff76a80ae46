package stats

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/total-time", authMiddleware, func(c *fiber.Ctx) error {
		start, end, ok := timeframeWindow(c.Query("timeframe"), time.Now())
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "timeframe must be today, week, month or all")
		}
		total, err := svc.TotalPracticeTime(c.Context(), userID(c), start, end)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(total)
	})

	r.Get("/streak", authMiddleware, func(c *fiber.Ctx) error {
		days, err := svc.PracticeStreak(c.Context(), userID(c))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(Streak{CurrentStreak: days, Message: streakMessage(days)})
	})

	r.Get("/consistency", authMiddleware, func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		result, err := svc.ConsistencyScore(c.Context(), userID(c), days)
		if err != nil {
			return mapError(err)
		}
		result.Grade = grade(result.ConsistencyPercentage)
		return c.JSON(result)
	})

	r.Get("/top-items", authMiddleware, func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 10)
		items, err := svc.TopItems(c.Context(), userID(c), limit)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"items": items})
	})

	r.Get("/tempo-progression/:itemName", authMiddleware, func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("itemName"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid item name")
		}
		progression, err := svc.TempoProgression(c.Context(), userID(c), name)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(progression)
	})

	r.Get("/session-trends", authMiddleware, func(c *fiber.Ctx) error {
		weeks := c.QueryInt("weeks", 12)
		trends, err := svc.SessionTrends(c.Context(), userID(c), weeks)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"trends": trends})
	})

	r.Get("/instruments", authMiddleware, func(c *fiber.Ctx) error {
		breakdown, err := svc.InstrumentBreakdown(c.Context(), userID(c))
		if err != nil {
			return mapError(err)
		}
		return c.JSON(fiber.Map{"instruments": breakdown})
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
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}
