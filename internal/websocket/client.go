package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"collab-workspace-be/internal/relay"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Generous enough for large edit deltas and presence rosters; the
	// relay forwards frames regardless of document size, only persistence
	// is size-guarded elsewhere.
	maxMessageSize = 2 << 20
)

// Client is one websocket connection bound to a single document room.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID uuid.UUID
	RoomID string

	// Buffered channel of outbound frames.
	Send chan []byte

	mu sync.Mutex
	// Presence connection id sniffed from the client's track frame, used to
	// synthesize a leave on abrupt disconnect.
	presenceConnID string
}

func (c *Client) presenceConn() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presenceConnID
}

// readPump forwards inbound frames to the hub for room fanout.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected close", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			break
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.Hub.logger.Warn("Hub", "Dropping malformed frame", map[string]interface{}{
				"user_id": c.UserID,
				"room":    c.RoomID,
			})
			continue
		}

		if frame.Event == relay.EventPresenceTrack {
			var track relay.TrackMessage
			if err := json.Unmarshal(frame.Payload, &track); err == nil {
				c.mu.Lock()
				c.presenceConnID = track.ConnID
				c.mu.Unlock()
			}
		}

		c.Hub.Relay(c, data)
	}
}

// writePump drains the send buffer onto the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain whatever queued up behind this frame. Frames are
			// self-contained JSON, so each goes in its own message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				if err := c.Conn.WriteMessage(websocket.TextMessage, <-c.Send); err != nil {
					return
				}
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
