package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/contentpilot/internal/queue"
	"github.com/maheshrc27/contentpilot/internal/service"
	"github.com/maheshrc27/contentpilot/internal/transfer"
)

type PostHandler struct {
	s           service.PostService
	publisher   service.PublishService
	AsynqClient *asynq.Client
}

func NewPostHandler(service service.PostService, publisher service.PublishService, asynqClient *asynq.Client) *PostHandler {
	return &PostHandler{s: service, publisher: publisher, AsynqClient: asynqClient}
}

func (h *PostHandler) SavePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PostSave
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	postID, err := h.s.Save(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": postID,
	})
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userId := GetUserID(c)
	postId := c.QueryInt("id", 0)

	if postId != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postId), userId)
		if err != nil {
			if errors.Is(err, service.ErrPostNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Post not found",
				})
			}
			if errors.Is(err, service.ErrNotOwner) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Forbidden",
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to list posts",
			})
		}

		return c.Status(fiber.StatusOK).JSON(post)
	}

	posts, err := h.s.List(c.Context(), userId)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PostUpdate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.s.Update(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		if errors.Is(err, service.ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postId := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postId))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Post not found",
			})
		}
		if errors.Is(err, service.ErrNotOwner) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PostHandler) PublishPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.PostID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "post_id is required",
		})
	}

	outcome, err := h.publisher.Publish(c.Context(), userID, req.PostID)
	if err != nil {
		return publishErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Published",
		"publishResult": fiber.Map{
			"id": outcome.MediaID,
		},
		"post": outcome.Post,
	})
}

// AutoPost queues background publishing of every remaining draft.
func (h *PostHandler) AutoPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	err := queue.EnqueueAutoPost(h.AsynqClient, queue.AutoPostPayload{UserID: userID})
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling auto-post",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Auto-post scheduled",
	})
}

func publishErrorResponse(c *fiber.Ctx, err error) error {
	var timeoutErr *service.ContainerTimeoutError
	var partialErr *service.PartialFailureError

	switch {
	case errors.Is(err, service.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	case errors.Is(err, service.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
		})
	case errors.Is(err, service.ErrNoActiveAccount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No active Instagram account",
		})
	case errors.Is(err, service.ErrInvalidAccountData):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid account data",
		})
	case errors.Is(err, service.ErrImageUnreachable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image not accessible by FB",
		})
	case errors.Is(err, service.ErrContainerCreation):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Create container failed",
		})
	case errors.As(err, &timeoutErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  "Media container not ready in time",
			"detail": string(timeoutErr.LastStatus),
		})
	case errors.As(err, &partialErr):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":    "Published on Instagram but failed to update DB status",
			"media_id": partialErr.MediaID,
		})
	case errors.Is(err, service.ErrPublishFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Media publish failed",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Publish failed",
		})
	}
}
