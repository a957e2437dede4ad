package controller

import (
	"collab-workspace-be/internal/pkg/serverutils"
	ws "collab-workspace-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IRealtimeController interface {
	RegisterRoutes(r fiber.Router)
}

type realtimeController struct {
	hub *ws.Hub
}

func NewRealtimeController(hub *ws.Hub) IRealtimeController {
	return &realtimeController{hub: hub}
}

func (c *realtimeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/realtime/v1")
	h.Use(serverutils.JwtMiddleware)

	h.Use("/document/:id", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	h.Get("/document/:id", websocket.New(func(conn *websocket.Conn) {
		userIdStr, _ := conn.Locals("user_id").(string)
		userId, err := uuid.Parse(userIdStr)
		if err != nil {
			conn.Close()
			return
		}
		documentId := conn.Params("id")
		if documentId == "" {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, userId, documentId)
	}))
}
