package presence

import (
	"encoding/json"
	"sort"
	"sync"

	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/relay"
	"collab-workspace-be/pkg/colorgen"

	"github.com/google/uuid"
)

// Peer is the presence record a collaborator tracks on a document channel.
type Peer struct {
	Id          uuid.UUID
	DisplayName string
	AvatarRef   string
	Version     string
}

// CursorSurface is the slice of the editing widget the tracker drives:
// creation, movement and removal of remote cursor actors keyed by peer id.
type CursorSurface interface {
	CreateCursor(id, label, color string)
	MoveCursor(id string, r relay.Range)
	RemoveCursor(id string)
}

// Tracker reconciles the visible roster of one open document. Roster syncs
// are deduplicated by peer id and diffed against the previous set by id
// only, so repeated syncs with identical membership cause no churn. Cursor
// moves for other documents are ignored, not queued.
type Tracker struct {
	documentID string
	self       Peer
	connID     string
	ch         relay.Channel
	surface    CursorSurface
	colors     *colorgen.Generator
	log        logger.ILogger

	mu      sync.Mutex
	conns   map[string]relay.TrackMessage
	roster  []Peer
	cursors map[string]bool
	closed  bool
}

// NewTracker registers the presence handlers on an already-open document
// channel and announces the local peer. The channel stays owned by the
// caller; Close retires the tracker without unsubscribing it.
func NewTracker(
	documentID string,
	self Peer,
	ch relay.Channel,
	surface CursorSurface,
	colors *colorgen.Generator,
	log logger.ILogger,
) *Tracker {
	t := &Tracker{
		documentID: documentID,
		self:       self,
		connID:     uuid.NewString(),
		ch:         ch,
		surface:    surface,
		colors:     colors,
		log:        log,
		conns:      make(map[string]relay.TrackMessage),
		cursors:    make(map[string]bool),
	}

	ch.On(relay.EventPresenceTrack, t.handleTrack)
	ch.On(relay.EventPresenceLeave, t.handleLeave)
	ch.On(relay.EventCursorMove, t.handleCursorMove)

	t.announce(false)
	t.syncRoster()
	return t
}

func (t *Tracker) announce(reply bool) {
	t.ch.Broadcast(relay.EventPresenceTrack, relay.TrackMessage{
		ConnID:      t.connID,
		Id:          t.self.Id,
		DisplayName: t.self.DisplayName,
		AvatarRef:   t.self.AvatarRef,
		Version:     t.self.Version,
		Reply:       reply,
	})
}

func (t *Tracker) handleTrack(payload []byte) {
	var msg relay.TrackMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.log.Warn("Presence", "Dropping malformed track message", map[string]interface{}{"error": err.Error()})
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	_, known := t.conns[msg.ConnID]
	t.conns[msg.ConnID] = msg
	t.mu.Unlock()

	// Re-announce so a newcomer learns the existing roster. Replies are
	// never answered, otherwise two peers would ping-pong forever.
	if !known && !msg.Reply {
		t.announce(true)
	}
	t.syncRoster()
}

func (t *Tracker) handleLeave(payload []byte) {
	var msg relay.LeaveMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	delete(t.conns, msg.ConnID)
	t.mu.Unlock()

	t.syncRoster()
}

func (t *Tracker) handleCursorMove(payload []byte) {
	var msg relay.CursorMoveMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	// Only the open document's cursors are live; anything else is stale.
	if msg.DocumentID != t.documentID {
		return
	}

	t.mu.Lock()
	live := !t.closed && t.cursors[msg.PeerID]
	t.mu.Unlock()

	if live {
		t.surface.MoveCursor(msg.PeerID, msg.Range)
	}
}

// syncRoster recomputes the deduplicated peer set and applies the id-only
// diff to the cursor surface.
func (t *Tracker) syncRoster() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}

	unique := make(map[uuid.UUID]Peer, len(t.conns)+1)
	unique[t.self.Id] = t.self
	for _, msg := range t.conns {
		unique[msg.Id] = Peer{
			Id:          msg.Id,
			DisplayName: msg.DisplayName,
			AvatarRef:   msg.AvatarRef,
			Version:     msg.Version,
		}
	}

	roster := make([]Peer, 0, len(unique))
	for _, p := range unique {
		roster = append(roster, p)
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].Id.String() < roster[j].Id.String() })

	if sameIDs(t.roster, roster) {
		t.roster = roster
		return
	}
	t.roster = roster

	// Materialize cursors for newly-seen peers, tear down the departed.
	for _, p := range roster {
		if p.Id == t.self.Id {
			continue
		}
		id := p.Id.String()
		if !t.cursors[id] {
			t.surface.CreateCursor(id, p.DisplayName, t.colors.ColorFor(id))
			t.cursors[id] = true
		}
	}
	for id := range t.cursors {
		if _, still := unique[uuid.MustParse(id)]; !still {
			t.surface.RemoveCursor(id)
			delete(t.cursors, id)
		}
	}
}

func sameIDs(a, b []Peer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Id != b[i].Id {
			return false
		}
	}
	return true
}

// Collaborators returns the current deduplicated roster, self included.
func (t *Tracker) Collaborators() []Peer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Peer(nil), t.roster...)
}

// BroadcastCursor announces the local selection to peers.
func (t *Tracker) BroadcastCursor(r relay.Range) {
	t.ch.Broadcast(relay.EventCursorMove, relay.CursorMoveMessage{
		Range:      r,
		DocumentID: t.documentID,
		PeerID:     t.self.Id.String(),
	})
}

// Close retires the tracker: announces the departure and removes all remote
// cursor actors. The channel itself is unsubscribed by its owner.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	cursorIDs := make([]string, 0, len(t.cursors))
	for id := range t.cursors {
		cursorIDs = append(cursorIDs, id)
	}
	t.cursors = make(map[string]bool)
	t.mu.Unlock()

	for _, id := range cursorIDs {
		t.surface.RemoveCursor(id)
	}
	t.ch.Broadcast(relay.EventPresenceLeave, relay.LeaveMessage{ConnID: t.connID})
}
