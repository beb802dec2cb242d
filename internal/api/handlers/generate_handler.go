package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/contentpilot/internal/service"
	"github.com/maheshrc27/contentpilot/internal/transfer"
)

type GenerateHandler struct {
	s     service.GenerationService
	usage service.UsageService
}

func NewGenerateHandler(service service.GenerationService, usage service.UsageService) *GenerateHandler {
	return &GenerateHandler{s: service, usage: usage}
}

func (h *GenerateHandler) GenerateIdeas(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if h.overQuota(c, userID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Daily generation limit reached",
		})
	}

	var req transfer.IdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ideas, err := h.s.GenerateIdeas(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate ideas",
		})
	}

	h.recordUsage(c, userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ideas": ideas,
	})
}

func (h *GenerateHandler) GenerateCaption(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if h.overQuota(c, userID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Daily generation limit reached",
		})
	}

	var req transfer.CaptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.s.GenerateCaption(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate caption",
		})
	}

	h.recordUsage(c, userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"title":   result.Title,
		"content": result.Content,
	})
}

func (h *GenerateHandler) GenerateImage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if h.overQuota(c, userID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Daily generation limit reached",
		})
	}

	var req transfer.IdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	imageURL, err := h.s.GenerateImage(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate image",
		})
	}

	h.recordUsage(c, userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"image_url": imageURL,
	})
}

func (h *GenerateHandler) GenerateVideo(c *fiber.Ctx) error {
	userID := GetUserID(c)

	if h.overQuota(c, userID) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Daily generation limit reached",
		})
	}

	var req transfer.VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ImageURL == "" || req.PostID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "imageUrl and postId are required",
		})
	}

	videoURL, err := h.s.GenerateVideo(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate video",
		})
	}

	h.recordUsage(c, userID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"videoUrl": videoURL,
	})
}

func (h *GenerateHandler) overQuota(c *fiber.Ctx, userID int64) bool {
	allowed, err := h.usage.CanGenerate(c.Context(), userID)
	if err != nil {
		slog.Warn(err.Error())
		return false
	}
	return !allowed
}

// recordUsage counts a successful generation. Failures are logged only; the
// response to the user is already a success at this point.
func (h *GenerateHandler) recordUsage(c *fiber.Ctx, userID int64) {
	if err := h.usage.RecordUsage(c.Context(), userID, service.ActionGeneration); err != nil {
		slog.Warn(fmt.Sprintf("recording usage for user %d: %v", userID, err))
	}
}
