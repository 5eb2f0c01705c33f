package handler

import (
	"ai-docassist/internal/config"
	"ai-docassist/internal/pkg/logger"
	"ai-docassist/internal/pkg/serverutils"
	internalWS "ai-docassist/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WebSocketHandler upgrades authenticated connections onto the hub so the
// browser receives document processing notifications as they happen.
type WebSocketHandler struct {
	hub    *internalWS.Hub
	cfg    *config.Config
	logger logger.ILogger
}

func NewWebSocketHandler(hub *internalWS.Hub, cfg *config.Config, log logger.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		cfg:    cfg,
		logger: log,
	}
}

func (h *WebSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

func (h *WebSocketHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on the WebSocket handshake, so the token
	// arrives as a query param; tooling may still use the header.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	claims, err := serverutils.ParseToken(h.cfg.JWT.Secret, tokenStr)
	if err != nil {
		h.logger.Warn("websocket", "invalid token in handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}
	if tokenType, _ := claims["type"].(string); tokenType != serverutils.TokenTypeAccess {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token type"})
	}

	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("websocket", "session started", map[string]interface{}{"user_id": userId.String()})
			internalWS.ServeWs(h.hub, conn, userId)
			h.logger.Info("websocket", "session ended", map[string]interface{}{"user_id": userId.String()})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
