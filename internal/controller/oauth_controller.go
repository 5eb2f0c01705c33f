package controller

import (
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOAuthController interface {
	RegisterRoutes(r fiber.Router)
}

type oauthController struct {
	service service.IOAuthService
}

func NewOAuthController(service service.IOAuthService) IOAuthController {
	return &oauthController{service: service}
}

func (c *oauthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Get("/google", c.Login)
	h.Get("/google/callback", c.Callback)
}

func (c *oauthController) Login(ctx *fiber.Ctx) error {
	url, err := c.service.GetLoginURL("google")
	if err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}
	return ctx.Redirect(url, fiber.StatusTemporaryRedirect)
}

func (c *oauthController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return serverutils.NewApiError(fiber.StatusBadRequest, "missing authorization code")
	}

	res, err := c.service.HandleCallback(ctx.Context(), "google", code, ctx.IP(), ctx.Get("User-Agent"))
	if err != nil {
		return serverutils.NewApiError(fiber.StatusUnauthorized, err.Error())
	}
	return ctx.JSON(fiber.Map{
		"message": "Login successful",
		"user":    res.User,
		"tokens":  res.Tokens,
	})
}
