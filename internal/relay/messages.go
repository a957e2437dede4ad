package relay

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event names spoken on a document channel. The change-feed reconciler never
// sees these; the relay is a separate, ephemeral transport.
const (
	EventSendChanges   = "send-changes"
	EventCursorMove    = "send-cursor-move"
	EventPresenceTrack = "presence-track"
	EventPresenceLeave = "presence-leave"
)

// Range is an opaque editor selection: start index plus length.
type Range struct {
	Index  int `json:"index"`
	Length int `json:"length"`
}

// ChangesMessage relays one opaque edit delta verbatim. The relay never
// interprets the delta; operational transforms live in the editing widget.
type ChangesMessage struct {
	Delta      json.RawMessage `json:"delta"`
	DocumentID string          `json:"document_id"`
}

// CursorMoveMessage announces a peer's selection in a document.
type CursorMoveMessage struct {
	Range      Range  `json:"range"`
	DocumentID string `json:"document_id"`
	PeerID     string `json:"peer_id"`
}

// TrackMessage announces a connection's presence record on the channel.
// Reply marks a re-announcement sent so a newcomer can learn the existing
// roster; it must not trigger further replies.
type TrackMessage struct {
	ConnID      string    `json:"conn_id"`
	Id          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarRef   string    `json:"avatar_ref"`
	Version     string    `json:"version"`
	Reply       bool      `json:"reply,omitempty"`
}

// LeaveMessage retires a connection from the roster.
type LeaveMessage struct {
	ConnID string `json:"conn_id"`
}
