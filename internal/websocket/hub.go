package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/relay"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Frame is one relay message on the wire: an event name plus an opaque
// payload. The hub never interprets payloads, it only routes them.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type relayedFrame struct {
	sender *Client
	room   string
	data   []byte
}

// Hub routes relay frames between the clients of each open document. Every
// frame a client sends is forwarded to the other members of its room, never
// echoed back to the sender. A Redis bridge fans frames out to the same room
// on other instances.
type Hub struct {
	// Room membership: document id -> clients.
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	relayCh    chan relayedFrame

	mu sync.RWMutex

	// Cross-instance fanout. Nil disables the bridge for single-node runs.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

const redisRelayChannel = "relay_events"

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		relayCh:    make(chan relayedFrame, 256),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.RoomID] == nil {
				h.rooms[client.RoomID] = make(map[*Client]bool)
			}
			h.rooms[client.RoomID][client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client joined room", map[string]interface{}{
				"user_id": client.UserID,
				"room":    client.RoomID,
			})

		case client := <-h.unregister:
			h.dropClient(client)

		case frame := <-h.relayCh:
			h.deliverLocal(frame.room, frame.sender, frame.data)
			h.publishToRedis(frame.room, frame.data)
		}
	}
}

func (h *Hub) dropClient(client *Client) {
	h.mu.Lock()
	members, ok := h.rooms[client.RoomID]
	if !ok || !members[client] {
		h.mu.Unlock()
		return
	}
	delete(members, client)
	close(client.Send)
	if len(members) == 0 {
		delete(h.rooms, client.RoomID)
	}
	h.mu.Unlock()

	h.logger.Info("Hub", "Client left room", map[string]interface{}{
		"user_id": client.UserID,
		"room":    client.RoomID,
	})

	// An abrupt disconnect never sends its own leave frame, so the hub
	// synthesizes one from the presence id sniffed off the track frame.
	// Rosters on surviving clients converge either way.
	if conn := client.presenceConn(); conn != "" {
		leave, err := json.Marshal(relay.LeaveMessage{ConnID: conn})
		if err != nil {
			return
		}
		data, err := json.Marshal(Frame{Event: relay.EventPresenceLeave, Payload: leave})
		if err != nil {
			return
		}
		h.deliverLocal(client.RoomID, client, data)
		h.publishToRedis(client.RoomID, data)
	}
}

// Relay queues a frame for every room member except the sender.
func (h *Hub) Relay(sender *Client, data []byte) {
	h.relayCh <- relayedFrame{sender: sender, room: sender.RoomID, data: data}
}

func (h *Hub) deliverLocal(room string, sender *Client, data []byte) {
	h.mu.RLock()
	members := h.rooms[room]
	stale := make([]*Client, 0)
	for client := range members {
		if client == sender {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"user_id": client.UserID,
				"room":    room,
			})
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.dropClient(client)
	}
}

func (h *Hub) publishToRedis(room string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"instance": h.instanceID,
		"room":     room,
		"data":     json.RawMessage(data),
	})
	if err != nil {
		return
	}
	h.rdb.Publish(context.Background(), redisRelayChannel, payload)
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisRelayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			Instance string          `json:"instance"`
			Room     string          `json:"room"`
			Data     json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Malformed cluster relay message", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Instance == h.instanceID {
			continue
		}
		// The sender lives on another instance, so everyone local gets it.
		h.deliverLocal(payload.Room, nil, []byte(payload.Data))
	}
}
