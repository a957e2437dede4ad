package editor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/relay"

	"github.com/google/uuid"
)

// Source labels where an edit originated. Only user-sourced edits are
// broadcast and persisted; edits applied from the relay carry a different
// source so they never echo back.
type Source string

const (
	SourceUser   Source = "user"
	SourceRemote Source = "remote"
)

// MaxContentSize caps the serialized document accepted for persistence.
// Content at exactly this size is still saved; one byte over is rejected.
const MaxContentSize = 1 << 20

// SaveDebounce is the quiet period after the last keystroke before the
// document is persisted.
const SaveDebounce = 850 * time.Millisecond

var ErrContentTooLarge = errors.New("document content exceeds size limit")

// ContentEditor is the editing widget surface the session drives. Deltas are
// opaque; the widget owns the operational-transform semantics.
type ContentEditor interface {
	Contents() string
	UpdateContents(delta json.RawMessage)
	SetContents(data string)
}

// Saver persists the full serialized content of a document.
type Saver interface {
	SaveContent(ctx context.Context, kind entity.Kind, id uuid.UUID, data string) error
}

// Session wires one open document to its relay channel: outbound deltas are
// broadcast immediately and persisted after a debounce window, inbound deltas
// are applied to the widget verbatim. The session owns the channel; Close
// unsubscribes it and clears any pending debounce timer synchronously.
type Session struct {
	documentID uuid.UUID
	kind       entity.Kind
	editor     ContentEditor
	saver      Saver
	ch         relay.Channel
	log        logger.ILogger
	debounce   time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	inflight bool
	pending  bool
	closed   bool
	saveErr  error
}

// NewSession opens a relay channel for the document and seeds the widget
// with the given serialized content.
func NewSession(
	documentID uuid.UUID,
	kind entity.Kind,
	data string,
	contentEditor ContentEditor,
	saver Saver,
	provider relay.Provider,
	log logger.ILogger,
) (*Session, error) {
	ch, err := provider.Channel(documentID.String())
	if err != nil {
		return nil, err
	}

	s := &Session{
		documentID: documentID,
		kind:       kind,
		editor:     contentEditor,
		saver:      saver,
		ch:         ch,
		log:        log,
		debounce:   SaveDebounce,
	}

	contentEditor.SetContents(data)
	ch.On(relay.EventSendChanges, s.handleRemoteChanges)
	return s, nil
}

// Channel exposes the document channel so presence can share it.
func (s *Session) Channel() relay.Channel {
	return s.ch
}

// HandleTextChange processes one local edit. The delta is broadcast to peers
// right away regardless of document size; only persistence is size-guarded.
// Each call restarts the debounce window.
func (s *Session) HandleTextChange(delta json.RawMessage, source Source) {
	if source != SourceUser {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.persist)
	s.mu.Unlock()

	if err := s.ch.Broadcast(relay.EventSendChanges, relay.ChangesMessage{
		Delta:      delta,
		DocumentID: s.documentID.String(),
	}); err != nil {
		s.log.Warn("Editor", "Failed to broadcast changes", map[string]interface{}{
			"document_id": s.documentID.String(),
			"error":       err.Error(),
		})
	}
}

func (s *Session) handleRemoteChanges(payload []byte) {
	var msg relay.ChangesMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	if msg.DocumentID != s.documentID.String() {
		return
	}
	s.editor.UpdateContents(msg.Delta)
}

// persist is the debounce callback. At most one save is in flight at a time;
// edits arriving mid-save queue exactly one follow-up save.
func (s *Session) persist() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.inflight {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.inflight = true
	s.mu.Unlock()

	err := s.Save(context.Background())

	s.mu.Lock()
	s.inflight = false
	s.saveErr = err
	rerun := s.pending && !s.closed
	s.pending = false
	s.mu.Unlock()

	if rerun {
		s.persist()
	}
}

// Save persists the widget's full contents now, bypassing the debounce.
// Oversize content is rejected before any network call; the store and widget
// keep the oversize content locally so nothing the user typed is lost.
func (s *Session) Save(ctx context.Context) error {
	contents := s.editor.Contents()
	if len(contents) > MaxContentSize {
		s.log.Error("Editor", "Refusing to persist oversize document", map[string]interface{}{
			"document_id": s.documentID.String(),
			"size":        len(contents),
			"limit":       MaxContentSize,
		})
		return ErrContentTooLarge
	}

	if err := s.saver.SaveContent(ctx, s.kind, s.documentID, contents); err != nil {
		s.log.Error("Editor", "Failed to persist document", map[string]interface{}{
			"document_id": s.documentID.String(),
			"error":       err.Error(),
		})
		return err
	}
	return nil
}

// LastSaveError reports the outcome of the most recent debounced save.
func (s *Session) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Close tears the session down: the pending debounce timer is cleared and the
// channel unsubscribed before Close returns. Unsaved content is not flushed;
// callers wanting a final write call Save first.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	return s.ch.Unsubscribe()
}
