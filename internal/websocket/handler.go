package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a connection to its document room and runs the pumps.
// Blocks until the connection drops.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, documentID string) {
	client := &Client{
		Hub:    hub,
		Conn:   c,
		UserID: userID,
		RoomID: documentID,
		Send:   make(chan []byte, 256),
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
