package websocket

import (
	"note-summary-be/internal/session"

	"github.com/gofiber/websocket/v2"
)

// ServeWs runs the socket until either side closes it. The caller has already authenticated s.
func ServeWs(hub *Hub, c *websocket.Conn, s *session.Session) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		UserID:    s.UserId,
		SessionID: s.Id,
		Send:      make(chan []byte, sendBuffer),
	}
	if !hub.Register(client) {
		_ = c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
