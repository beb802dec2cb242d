package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/contentpilot/configs"
	"github.com/maheshrc27/contentpilot/internal/service"
	"github.com/maheshrc27/contentpilot/pkg/utils"
)

type InstagramHandler struct {
	s   service.InstagramService
	cfg config.Config
}

func NewInstagramHandler(cfg config.Config, service service.InstagramService) *InstagramHandler {
	return &InstagramHandler{s: service, cfg: cfg}
}

// AddAccount redirects to the Facebook consent dialog. The session token rides
// along as the OAuth state so the callback can recover the user when the
// cookie does not survive the cross-site redirect.
func (h *InstagramHandler) AddAccount(c *fiber.Ctx) error {
	state := c.Cookies(h.cfg.CookieName)

	authURL := h.s.GetAuthURL(c.Context(), state)
	return c.Redirect(authURL)
}

func (h *InstagramHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing code",
		})
	}

	userID := h.resolveUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	err := h.s.LinkCallback(c.Context(), code, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenExchange):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Failed to get token",
			})
		case errors.Is(err, service.ErrNoPages):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No connected Facebook Pages",
			})
		case errors.Is(err, service.ErrNoInstagramAccounts):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No IG Business accounts linked",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "OAuth failed",
			})
		}
	}

	return c.Redirect(fmt.Sprintf("%s/auth/success", h.cfg.FrontendURL), fiber.StatusFound)
}

// resolveUserID reads the session cookie first and falls back to the token
// carried in the OAuth state parameter.
func (h *InstagramHandler) resolveUserID(c *fiber.Ctx) int64 {
	tokenString := c.Cookies(h.cfg.CookieName)
	if tokenString == "" {
		tokenString = c.Query("state")
	}
	if tokenString == "" {
		return 0
	}

	claims, err := utils.ValidateToken(h.cfg.SecretKey, tokenString)
	if err != nil {
		return 0
	}

	userID, _ := strconv.ParseInt(claims.UserID, 10, 64)
	return userID
}
