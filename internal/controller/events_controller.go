package controller

import (
	"note-summary-be/internal/pkg/serverutils"
	"note-summary-be/internal/session"
	ws "note-summary-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IEventsController interface {
	RegisterRoutes(r fiber.Router)
}

type eventsController struct {
	hub         *ws.Hub
	requireAuth fiber.Handler
}

func NewEventsController(hub *ws.Hub, requireAuth fiber.Handler) IEventsController {
	return &eventsController{hub: hub, requireAuth: requireAuth}
}

// RegisterRoutes must run before the notes routes so /notes/events is not taken for a note id.
func (c *eventsController) RegisterRoutes(r fiber.Router) {
	r.Get("/notes/events", c.requireAuth, c.upgrade, websocket.New(c.serve))
}

func (c *eventsController) upgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return ctx.Next()
}

func (c *eventsController) serve(conn *websocket.Conn) {
	s, ok := conn.Locals(serverutils.LocalsSession).(*session.Session)
	if !ok || s == nil {
		_ = conn.Close()
		return
	}
	ws.ServeWs(c.hub, conn, s)
}
