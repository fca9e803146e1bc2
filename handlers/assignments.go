package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quesurifn/portal-deadline-sync/portal"
	t "github.com/quesurifn/portal-deadline-sync/types"
	"go.uber.org/zap"
)

func (h *Handlers) PreviewHandler(c *fiber.Ctx) error {
	var req t.AssignmentsRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	h.Logger.Info("PreviewHandler", zap.Int("assignments", len(req.Assignments)))

	events, err := h.Pipeline.Events(c.UserContext(), portal.NewSliceSource(req.Assignments))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	resp := make([]t.EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, eventResponse(e))
	}
	return c.JSON(t.BaseResponse[[]t.EventResponse]{Data: resp, Message: "ok"})
}

func (h *Handlers) RegisterHandler(c *fiber.Ctx) error {
	if h.Pipeline.Registrar == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("calendar access is not configured")
	}

	var req t.AssignmentsRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	h.Logger.Info("RegisterHandler", zap.Int("assignments", len(req.Assignments)))

	h.mu.Lock()
	summary, results, err := h.Pipeline.Run(c.UserContext(), portal.NewSliceSource(req.Assignments))
	h.mu.Unlock()

	resp := t.RunResponse{Summary: summary, Events: make([]t.EventResponse, 0, len(results))}
	for _, r := range results {
		resp.Events = append(resp.Events, resultResponse(r))
	}

	message := "ok"
	status := fiber.StatusOK
	if err != nil {
		h.Logger.Warn("RegisterHandler", zap.Error(err))
		message = err.Error()
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(t.BaseResponse[t.RunResponse]{Data: resp, Message: message})
}
