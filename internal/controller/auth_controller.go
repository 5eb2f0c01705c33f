package controller

import (
	"ai-docassist/internal/dto"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Post("/refresh", c.Refresh)
	h.Post("/verify-email", c.VerifyEmail)
	h.Post("/resend-verification", c.ResendVerification)

	h.Get("/verify", serverutils.JwtMiddleware, c.Verify)
	h.Post("/logout", serverutils.JwtMiddleware, c.Logout)
	h.Get("/profile", serverutils.JwtMiddleware, c.Profile)
	h.Put("/profile", serverutils.JwtMiddleware, c.UpdateProfile)
}

// userIdFromLocals reads the user id the JWT middleware stored.
func userIdFromLocals(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, serverutils.NewApiError(fiber.StatusUnauthorized, "Invalid token")
	}
	return userId, nil
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.Register(ctx.Context(), &req, ctx.IP(), ctx.Get("User-Agent"))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    res.User,
		"tokens":  res.Tokens,
	})
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.Login(ctx.Context(), &req, ctx.IP(), ctx.Get("User-Agent"))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Login successful",
		"user":    res.User,
		"tokens":  res.Tokens,
	})
}

// Refresh expects the REFRESH token as the bearer credential.
func (c *authController) Refresh(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return serverutils.NewApiError(fiber.StatusUnauthorized, "Missing token")
	}

	accessToken, err := c.service.Refresh(ctx.Context(), authHeader[7:])
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message":      "Token refreshed",
		"access_token": accessToken,
	})
}

func (c *authController) Verify(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	user, err := c.service.GetUser(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Token is valid",
		"user":    user,
	})
}

func (c *authController) Logout(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	if err := c.service.Logout(ctx.Context(), userId); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (c *authController) Profile(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	user, err := c.service.GetUser(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"user": user})
}

func (c *authController) UpdateProfile(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	user, err := c.service.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

func (c *authController) VerifyEmail(ctx *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	if err := c.service.VerifyEmail(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Email verified successfully"})
}

func (c *authController) ResendVerification(ctx *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	if err := c.service.ResendVerification(ctx.Context(), &req); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Verification code sent"})
}
