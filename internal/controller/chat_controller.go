package controller

import (
	"ai-docassist/internal/dto"
	"ai-docassist/internal/pkg/serverutils"
	"ai-docassist/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat", serverutils.JwtMiddleware)
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions", c.ListSessions)
	h.Get("/sessions/:sessionId", c.GetSession)
	h.Put("/sessions/:sessionId", c.RenameSession)
	h.Delete("/sessions/:sessionId", c.DeleteSession)

	h.Post("/sessions/:sessionId/messages", c.AddMessage)
	h.Get("/sessions/:sessionId/messages", c.ListMessages)
	h.Put("/sessions/:sessionId/messages/:messageId", c.UpdateMessage)
	h.Delete("/sessions/:sessionId/messages/:messageId", c.DeleteMessage)
	h.Delete("/sessions/:sessionId/messages", c.ClearMessages)
}

func pathUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, serverutils.NewApiError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	session, err := c.service.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Session created",
		"session": session,
	})
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}

	sessions, pagination, err := c.service.ListSessions(ctx.Context(), userId, ctx.QueryInt("page", 1), ctx.QueryInt("per_page", 20))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"sessions":   sessions,
		"pagination": pagination,
	})
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	session, err := c.service.GetSession(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"session": session})
}

func (c *chatController) RenameSession(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	session, err := c.service.RenameSession(ctx.Context(), userId, sessionId, req.Title)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Session renamed",
		"session": session,
	})
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Session deleted"})
}

func (c *chatController) AddMessage(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	var req dto.AddMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	message, err := c.service.AddMessage(ctx.Context(), userId, sessionId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message added",
		"data":    message,
	})
}

func (c *chatController) ListMessages(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	messages, pagination, err := c.service.ListMessages(ctx.Context(), userId, sessionId, ctx.QueryInt("page", 1), ctx.QueryInt("per_page", 20))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"messages":   messages,
		"pagination": pagination,
	})
}

func (c *chatController) UpdateMessage(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}
	messageId, err := pathUUID(ctx, "messageId")
	if err != nil {
		return err
	}

	var req struct {
		Content string `json:"content" validate:"required"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return serverutils.NewApiError(fiber.StatusBadRequest, err.Error())
	}

	message, err := c.service.UpdateMessage(ctx.Context(), userId, sessionId, messageId, req.Content)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Message updated",
		"data":    message,
	})
}

func (c *chatController) DeleteMessage(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}
	messageId, err := pathUUID(ctx, "messageId")
	if err != nil {
		return err
	}

	if err := c.service.DeleteMessage(ctx.Context(), userId, sessionId, messageId); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Message deleted"})
}

func (c *chatController) ClearMessages(ctx *fiber.Ctx) error {
	userId, err := userIdFromLocals(ctx)
	if err != nil {
		return err
	}
	sessionId, err := pathUUID(ctx, "sessionId")
	if err != nil {
		return err
	}

	deleted, err := c.service.ClearMessages(ctx.Context(), userId, sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message":       "Messages cleared",
		"deleted_count": deleted,
	})
}
