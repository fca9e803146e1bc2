package handlers

import (
	"github.com/gofiber/fiber/v2"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

func (h *Handlers) UpcomingHandler(c *fiber.Ctx) error {
	if h.Upcoming == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("calendar access is not configured")
	}

	upcoming := *h.Upcoming
	if n := c.QueryInt("max", 0); n > 0 {
		upcoming.Max = int64(n)
	}

	h.Logger.Info("UpcomingHandler", zap.Int64("max", upcoming.Max))

	events, err := upcoming.List(c.UserContext(), h.Pipeline.Now())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).SendString(err.Error())
	}

	return c.JSON(t.BaseResponse[[]t.UpcomingEvent]{Data: events, Message: "ok"})
}

func (h *Handlers) NextEventHandler(c *fiber.Ctx) error {
	if h.Upcoming == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("calendar access is not configured")
	}

	next, err := h.Upcoming.Next(c.UserContext(), h.Pipeline.Now())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).SendString(err.Error())
	}
	if next == nil {
		return c.Status(fiber.StatusNotFound).SendString("No upcoming events")
	}

	h.Logger.Info("NextEventHandler", zap.Any("nextEvent", next))

	return c.JSON(t.BaseResponse[*t.UpcomingEvent]{Data: next, Message: "ok"})
}
