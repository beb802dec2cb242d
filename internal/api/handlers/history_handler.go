package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentpilot/internal/service"
)

type HistoryHandler struct {
	s service.HistoryService
}

func NewHistoryHandler(service service.HistoryService) *HistoryHandler {
	return &HistoryHandler{s: service}
}

func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	userID := GetUserID(c)

	entries, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list history",
		})
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}
