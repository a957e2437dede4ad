package editor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"collab-workspace-be/internal/entity"
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/relay"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel records broadcasts and registered handlers so tests can inject
// inbound relay traffic.
type fakeChannel struct {
	mu           sync.Mutex
	broadcasts   []fakeBroadcast
	handlers     map[string][]relay.Handler
	unsubscribed bool
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

func (c *fakeChannel) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubscribed = true
	return nil
}

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

func (c *fakeChannel) broadcastCount(event string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.broadcasts {
		if b.event == event {
			n++
		}
	}
	return n
}

type fakeProvider struct {
	ch *fakeChannel
}

func (p *fakeProvider) Channel(string) (relay.Channel, error) {
	return p.ch, nil
}

// fakeWidget is a minimal ContentEditor that appends deltas verbatim.
type fakeWidget struct {
	mu       sync.Mutex
	contents string
	deltas   []string
}

func (w *fakeWidget) Contents() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.contents
}

func (w *fakeWidget) UpdateContents(delta json.RawMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.deltas = append(w.deltas, string(delta))
}

func (w *fakeWidget) SetContents(data string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.contents = data
}

type fakeSaver struct {
	mu    sync.Mutex
	saves []string
	err   error
	delay time.Duration
}

func (s *fakeSaver) SaveContent(_ context.Context, _ entity.Kind, _ uuid.UUID, data string) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves = append(s.saves, data)
	return nil
}

func (s *fakeSaver) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func newTestSession(t *testing.T, data string) (*Session, *fakeChannel, *fakeWidget, *fakeSaver) {
	t.Helper()
	ch := newFakeChannel()
	widget := &fakeWidget{}
	saver := &fakeSaver{}
	s, err := NewSession(uuid.New(), entity.KindFile, data, widget, saver, &fakeProvider{ch: ch}, logger.Nop{})
	require.NoError(t, err)
	s.debounce = 30 * time.Millisecond
	return s, ch, widget, saver
}

func TestNewSessionSeedsWidget(t *testing.T) {
	_, _, widget, _ := newTestSession(t, `{"ops":[]}`)
	assert.Equal(t, `{"ops":[]}`, widget.Contents())
}

func TestHandleTextChangeBroadcastsImmediately(t *testing.T) {
	s, ch, _, saver := newTestSession(t, "")
	defer s.Close()

	s.HandleTextChange(json.RawMessage(`{"insert":"a"}`), SourceUser)

	assert.Equal(t, 1, ch.broadcastCount(relay.EventSendChanges), "delta must go out before the debounce fires")
	assert.Zero(t, saver.saveCount(), "persistence must wait for the debounce")
}

func TestHandleTextChangeIgnoresRemoteSource(t *testing.T) {
	s, ch, _, saver := newTestSession(t, "")
	defer s.Close()

	s.HandleTextChange(json.RawMessage(`{"insert":"a"}`), SourceRemote)

	time.Sleep(3 * s.debounce)
	assert.Zero(t, ch.broadcastCount(relay.EventSendChanges), "remote edits must not echo back")
	assert.Zero(t, saver.saveCount())
}

func TestDebouncedSaveFiresOnce(t *testing.T) {
	s, _, widget, saver := newTestSession(t, "")
	defer s.Close()

	widget.SetContents("typed")
	for i := 0; i < 5; i++ {
		s.HandleTextChange(json.RawMessage(`{"insert":"x"}`), SourceUser)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return saver.saveCount() == 1 }, time.Second, 5*time.Millisecond)
	// Quiet period passed; no further saves.
	time.Sleep(3 * s.debounce)
	assert.Equal(t, 1, saver.saveCount())
	assert.Equal(t, "typed", saver.saves[0])
}

func TestSaveAcceptsContentAtLimit(t *testing.T) {
	s, _, widget, saver := newTestSession(t, "")
	defer s.Close()

	widget.SetContents(strings.Repeat("a", MaxContentSize))
	require.NoError(t, s.Save(context.Background()))
	assert.Equal(t, 1, saver.saveCount())
}

func TestSaveRejectsContentOverLimit(t *testing.T) {
	s, _, widget, saver := newTestSession(t, "")
	defer s.Close()

	widget.SetContents(strings.Repeat("a", MaxContentSize+1))
	err := s.Save(context.Background())
	require.ErrorIs(t, err, ErrContentTooLarge)
	assert.Zero(t, saver.saveCount(), "oversize content must never reach persistence")
	// The widget keeps what the user typed.
	assert.Len(t, widget.Contents(), MaxContentSize+1)
}

func TestOversizeContentStillBroadcasts(t *testing.T) {
	s, ch, widget, saver := newTestSession(t, "")
	defer s.Close()

	widget.SetContents(strings.Repeat("a", MaxContentSize+1))
	s.HandleTextChange(json.RawMessage(`{"insert":"x"}`), SourceUser)

	assert.Equal(t, 1, ch.broadcastCount(relay.EventSendChanges), "collaboration continues even when persistence refuses")

	require.Eventually(t, func() bool {
		return errors.Is(s.LastSaveError(), ErrContentTooLarge)
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, saver.saveCount())
}

func TestRemoteChangesApplyToWidget(t *testing.T) {
	s, ch, widget, _ := newTestSession(t, "")
	defer s.Close()

	ch.deliver(t, relay.EventSendChanges, relay.ChangesMessage{
		Delta:      json.RawMessage(`{"insert":"remote"}`),
		DocumentID: s.documentID.String(),
	})

	require.Len(t, widget.deltas, 1)
	assert.JSONEq(t, `{"insert":"remote"}`, widget.deltas[0])
}

func TestRemoteChangesForOtherDocumentIgnored(t *testing.T) {
	s, ch, widget, _ := newTestSession(t, "")
	defer s.Close()

	ch.deliver(t, relay.EventSendChanges, relay.ChangesMessage{
		Delta:      json.RawMessage(`{"insert":"stale"}`),
		DocumentID: uuid.NewString(),
	})

	assert.Empty(t, widget.deltas)
}

func TestConcurrentEditQueuesOneFollowUpSave(t *testing.T) {
	s, _, widget, saver := newTestSession(t, "")
	defer s.Close()
	saver.delay = 50 * time.Millisecond
	s.debounce = 10 * time.Millisecond

	widget.SetContents("v1")
	s.HandleTextChange(json.RawMessage(`{}`), SourceUser)

	// Fire more edits while the first save is in flight; they collapse into
	// exactly one follow-up save.
	time.Sleep(30 * time.Millisecond)
	widget.SetContents("v2")
	s.HandleTextChange(json.RawMessage(`{}`), SourceUser)
	s.HandleTextChange(json.RawMessage(`{}`), SourceUser)

	require.Eventually(t, func() bool { return saver.saveCount() >= 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, saver.saveCount())
	assert.Equal(t, "v2", saver.saves[len(saver.saves)-1])
}

func TestCloseStopsPendingSaveAndUnsubscribes(t *testing.T) {
	s, ch, widget, saver := newTestSession(t, "")

	widget.SetContents("unsaved")
	s.HandleTextChange(json.RawMessage(`{}`), SourceUser)
	require.NoError(t, s.Close())

	time.Sleep(3 * s.debounce)
	assert.Zero(t, saver.saveCount(), "Close must cancel the pending debounce")
	assert.True(t, ch.unsubscribed)

	// Close is idempotent and edits after close are no-ops.
	require.NoError(t, s.Close())
	s.HandleTextChange(json.RawMessage(`{}`), SourceUser)
	assert.Equal(t, 1, ch.broadcastCount(relay.EventSendChanges))
}
