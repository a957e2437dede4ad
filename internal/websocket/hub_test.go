package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/relay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	h := NewHub(nil, logger.Nop{})
	go h.Run()
	return h
}

func joinRoom(t *testing.T, h *Hub, room string) *Client {
	t.Helper()
	c := &Client{
		Hub:    h,
		UserID: uuid.New(),
		RoomID: room,
		Send:   make(chan []byte, 16),
	}
	h.register <- c
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.rooms[room][c]
	}, time.Second, 5*time.Millisecond)
	return c
}

func mustFrame(t *testing.T, event string, payload interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(Frame{Event: event, Payload: raw})
	require.NoError(t, err)
	return data
}

func expectFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case data := <-c.Send:
		var frame Frame
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("no frame delivered")
		return Frame{}
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRelayFansOutToRoomExceptSender(t *testing.T) {
	h := newTestHub()
	sender := joinRoom(t, h, "doc-1")
	peer := joinRoom(t, h, "doc-1")
	outsider := joinRoom(t, h, "doc-2")

	data := mustFrame(t, relay.EventSendChanges, relay.ChangesMessage{
		Delta:      json.RawMessage(`{"insert":"x"}`),
		DocumentID: "doc-1",
	})
	h.Relay(sender, data)

	frame := expectFrame(t, peer)
	assert.Equal(t, relay.EventSendChanges, frame.Event)

	expectSilence(t, sender)
	expectSilence(t, outsider)
}

func TestUnregisterSynthesizesPresenceLeave(t *testing.T) {
	h := newTestHub()
	leaver := joinRoom(t, h, "doc-1")
	peer := joinRoom(t, h, "doc-1")

	// Simulate the track frame sniff that readPump performs.
	leaver.mu.Lock()
	leaver.presenceConnID = "conn-abc"
	leaver.mu.Unlock()

	h.unregister <- leaver

	frame := expectFrame(t, peer)
	require.Equal(t, relay.EventPresenceLeave, frame.Event)
	var leave relay.LeaveMessage
	require.NoError(t, json.Unmarshal(frame.Payload, &leave))
	assert.Equal(t, "conn-abc", leave.ConnID)

	// The leaver's send channel is closed so its write pump exits.
	select {
	case _, ok := <-leaver.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestUnregisterWithoutTrackFrameStaysQuiet(t *testing.T) {
	h := newTestHub()
	leaver := joinRoom(t, h, "doc-1")
	peer := joinRoom(t, h, "doc-1")

	h.unregister <- leaver

	// No presence id was ever sniffed, so there is nothing to synthesize.
	expectSilence(t, peer)
}

func TestEmptyRoomIsDropped(t *testing.T) {
	h := newTestHub()
	only := joinRoom(t, h, "doc-1")

	h.unregister <- only

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.rooms["doc-1"]
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	sender := joinRoom(t, h, "doc-1")
	slow := &Client{
		Hub:    h,
		UserID: uuid.New(),
		RoomID: "doc-1",
		Send:   make(chan []byte), // unbuffered and never read
	}
	h.register <- slow
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.rooms["doc-1"][slow]
	}, time.Second, 5*time.Millisecond)

	data := mustFrame(t, relay.EventSendChanges, relay.ChangesMessage{DocumentID: "doc-1"})
	h.Relay(sender, data)

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return !h.rooms["doc-1"][slow]
	}, time.Second, 5*time.Millisecond)
}
