package presence

import (
	"encoding/json"
	"sync"
	"testing"

	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/relay"
	"collab-workspace-be/pkg/colorgen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu         sync.Mutex
	broadcasts []fakeBroadcast
	handlers   map[string][]relay.Handler
}

type fakeBroadcast struct {
	event   string
	payload interface{}
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string][]relay.Handler)}
}

func (c *fakeChannel) Broadcast(event string, payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcasts = append(c.broadcasts, fakeBroadcast{event: event, payload: payload})
	return nil
}

func (c *fakeChannel) On(event string, handler relay.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

func (c *fakeChannel) Unsubscribe() error { return nil }

func (c *fakeChannel) deliver(t *testing.T, event string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	c.mu.Lock()
	handlers := append([]relay.Handler(nil), c.handlers[event]...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(raw)
	}
}

func (c *fakeChannel) trackMessages() []relay.TrackMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []relay.TrackMessage
	for _, b := range c.broadcasts {
		if b.event == relay.EventPresenceTrack {
			out = append(out, b.payload.(relay.TrackMessage))
		}
	}
	return out
}

// fakeSurface records cursor lifecycle calls.
type fakeSurface struct {
	mu      sync.Mutex
	created map[string]string // id -> color
	moves   map[string][]relay.Range
	removed []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		created: make(map[string]string),
		moves:   make(map[string][]relay.Range),
	}
}

func (s *fakeSurface) CreateCursor(id, _ string, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created[id] = color
}

func (s *fakeSurface) MoveCursor(id string, r relay.Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moves[id] = append(s.moves[id], r)
}

func (s *fakeSurface) RemoveCursor(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, id)
}

func trackFor(peer Peer, connID string, reply bool) relay.TrackMessage {
	return relay.TrackMessage{
		ConnID:      connID,
		Id:          peer.Id,
		DisplayName: peer.DisplayName,
		AvatarRef:   peer.AvatarRef,
		Version:     peer.Version,
		Reply:       reply,
	}
}

func newTestTracker(t *testing.T) (*Tracker, *fakeChannel, *fakeSurface, Peer) {
	t.Helper()
	self := Peer{Id: uuid.New(), DisplayName: "self"}
	ch := newFakeChannel()
	surface := newFakeSurface()
	tr := NewTracker("doc-1", self, ch, surface, colorgen.NewGenerator(), logger.Nop{})
	return tr, ch, surface, self
}

func TestNewTrackerAnnouncesSelf(t *testing.T) {
	tr, ch, _, self := newTestTracker(t)
	defer tr.Close()

	msgs := ch.trackMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, self.Id, msgs[0].Id)
	assert.False(t, msgs[0].Reply, "the initial announcement is not a reply")

	roster := tr.Collaborators()
	require.Len(t, roster, 1)
	assert.Equal(t, self.Id, roster[0].Id)
}

func TestTrackerRepliesToNewcomerOnce(t *testing.T) {
	tr, ch, _, _ := newTestTracker(t)
	defer tr.Close()

	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-a", false))

	msgs := ch.trackMessages()
	require.Len(t, msgs, 2, "announcement plus one reply")
	assert.True(t, msgs[1].Reply)

	// The same connection announcing again is already known; no new reply.
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-a", false))
	assert.Len(t, ch.trackMessages(), 2)
}

func TestTrackerNeverAnswersReplies(t *testing.T) {
	tr, ch, _, _ := newTestTracker(t)
	defer tr.Close()

	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-a", true))

	// Answering a reply would ping-pong forever between two peers.
	assert.Len(t, ch.trackMessages(), 1)
	assert.Len(t, tr.Collaborators(), 2)
}

func TestRosterDeduplicatesByPeerId(t *testing.T) {
	tr, ch, surface, _ := newTestTracker(t)
	defer tr.Close()

	// One user, two browser tabs: two connections, one roster entry.
	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "tab-1", true))
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "tab-2", true))

	assert.Len(t, tr.Collaborators(), 2)
	surface.mu.Lock()
	defer surface.mu.Unlock()
	assert.Len(t, surface.created, 1, "one cursor per peer, not per connection")
}

func TestRosterCreatesCursorsForNewPeersOnly(t *testing.T) {
	tr, ch, surface, self := newTestTracker(t)
	defer tr.Close()

	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-a", true))

	surface.mu.Lock()
	_, selfCursor := surface.created[self.Id.String()]
	color, peerCursor := surface.created[peer.Id.String()]
	surface.mu.Unlock()

	assert.False(t, selfCursor, "no cursor for the local user")
	require.True(t, peerCursor)
	assert.NotEmpty(t, color)
}

func TestLeaveRemovesCursorWhileOtherTabSurvives(t *testing.T) {
	tr, ch, surface, _ := newTestTracker(t)
	defer tr.Close()

	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "tab-1", true))
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "tab-2", true))

	// First tab leaves; the peer is still present through the second tab.
	ch.deliver(t, relay.EventPresenceLeave, relay.LeaveMessage{ConnID: "tab-1"})
	assert.Len(t, tr.Collaborators(), 2)
	surface.mu.Lock()
	removedSoFar := len(surface.removed)
	surface.mu.Unlock()
	assert.Zero(t, removedSoFar)

	// Last tab leaves; now the cursor goes.
	ch.deliver(t, relay.EventPresenceLeave, relay.LeaveMessage{ConnID: "tab-2"})
	assert.Len(t, tr.Collaborators(), 1)
	surface.mu.Lock()
	defer surface.mu.Unlock()
	assert.Equal(t, []string{peer.Id.String()}, surface.removed)
}

func TestCursorMoveFiltersByDocument(t *testing.T) {
	tr, ch, surface, _ := newTestTracker(t)
	defer tr.Close()

	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-a", true))

	ch.deliver(t, relay.EventCursorMove, relay.CursorMoveMessage{
		Range:      relay.Range{Index: 4, Length: 2},
		DocumentID: "doc-1",
		PeerID:     peer.Id.String(),
	})
	ch.deliver(t, relay.EventCursorMove, relay.CursorMoveMessage{
		Range:      relay.Range{Index: 9, Length: 0},
		DocumentID: "doc-other",
		PeerID:     peer.Id.String(),
	})

	surface.mu.Lock()
	defer surface.mu.Unlock()
	moves := surface.moves[peer.Id.String()]
	require.Len(t, moves, 1, "moves for other documents are dropped, not queued")
	assert.Equal(t, relay.Range{Index: 4, Length: 2}, moves[0])
}

func TestCursorMoveForUntrackedPeerIgnored(t *testing.T) {
	tr, ch, surface, _ := newTestTracker(t)
	defer tr.Close()

	ch.deliver(t, relay.EventCursorMove, relay.CursorMoveMessage{
		Range:      relay.Range{Index: 1},
		DocumentID: "doc-1",
		PeerID:     uuid.NewString(),
	})

	surface.mu.Lock()
	defer surface.mu.Unlock()
	assert.Empty(t, surface.moves)
}

func TestBroadcastCursorCarriesDocumentAndPeer(t *testing.T) {
	tr, ch, _, self := newTestTracker(t)
	defer tr.Close()

	tr.BroadcastCursor(relay.Range{Index: 7, Length: 3})

	ch.mu.Lock()
	defer ch.mu.Unlock()
	var msg relay.CursorMoveMessage
	found := false
	for _, b := range ch.broadcasts {
		if b.event == relay.EventCursorMove {
			msg = b.payload.(relay.CursorMoveMessage)
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, "doc-1", msg.DocumentID)
	assert.Equal(t, self.Id.String(), msg.PeerID)
	assert.Equal(t, relay.Range{Index: 7, Length: 3}, msg.Range)
}

func TestCloseBroadcastsLeaveAndClearsCursors(t *testing.T) {
	tr, ch, surface, _ := newTestTracker(t)

	peer := Peer{Id: uuid.New(), DisplayName: "peer"}
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-a", true))

	tr.Close()

	surface.mu.Lock()
	removed := append([]string(nil), surface.removed...)
	surface.mu.Unlock()
	assert.Equal(t, []string{peer.Id.String()}, removed)

	ch.mu.Lock()
	var leaves int
	for _, b := range ch.broadcasts {
		if b.event == relay.EventPresenceLeave {
			leaves++
		}
	}
	ch.mu.Unlock()
	assert.Equal(t, 1, leaves)

	// Close is idempotent and events after close are ignored.
	tr.Close()
	ch.deliver(t, relay.EventPresenceTrack, trackFor(peer, "conn-b", true))
	assert.Len(t, tr.Collaborators(), 2)
}
