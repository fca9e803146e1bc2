package handlers

import (
	"github.com/gofiber/fiber/v2"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

func (h *Handlers) FeedPreviewHandler(c *fiber.Ctx) error {
	var req t.FeedRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).SendString("url is required")
	}

	h.Logger.Info("FeedPreviewHandler", zap.String("url", req.URL))

	events, err := h.Pipeline.Events(c.UserContext(), h.Feed.Source(req.URL, h.Pipeline.Now()))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).SendString(err.Error())
	}

	h.Logger.Info("FeedPreviewHandler", zap.Int("events", len(events)))

	resp := make([]t.EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventResponse(e))
	}
	return c.JSON(t.BaseResponse[[]t.EventResponse]{Data: resp, Message: "ok"})
}
