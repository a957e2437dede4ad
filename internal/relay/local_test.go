package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalChannelDeliversToPeers(t *testing.T) {
	provider := NewLocalProvider()

	a, err := provider.Channel("doc-1")
	require.NoError(t, err)
	defer a.Unsubscribe()
	b, err := provider.Channel("doc-1")
	require.NoError(t, err)
	defer b.Unsubscribe()

	received := make(chan ChangesMessage, 1)
	b.On(EventSendChanges, func(payload []byte) {
		var msg ChangesMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Errorf("unmarshal: %v", err)
			return
		}
		received <- msg
	})

	require.NoError(t, a.Broadcast(EventSendChanges, ChangesMessage{
		Delta:      json.RawMessage(`{"insert":"hi"}`),
		DocumentID: "doc-1",
	}))

	select {
	case msg := <-received:
		assert.Equal(t, "doc-1", msg.DocumentID)
		assert.JSONEq(t, `{"insert":"hi"}`, string(msg.Delta))
	case <-time.After(2 * time.Second):
		t.Fatal("peer never received the broadcast")
	}
}

func TestLocalChannelNeverEchoesToSender(t *testing.T) {
	provider := NewLocalProvider()

	a, err := provider.Channel("doc-1")
	require.NoError(t, err)
	defer a.Unsubscribe()
	b, err := provider.Channel("doc-1")
	require.NoError(t, err)
	defer b.Unsubscribe()

	selfDelivery := make(chan struct{}, 1)
	a.On(EventSendChanges, func([]byte) { selfDelivery <- struct{}{} })
	peerDelivery := make(chan struct{}, 1)
	b.On(EventSendChanges, func([]byte) { peerDelivery <- struct{}{} })

	require.NoError(t, a.Broadcast(EventSendChanges, ChangesMessage{DocumentID: "doc-1"}))

	// The peer receiving proves the broadcast propagated; the sender must
	// still not have seen its own message.
	select {
	case <-peerDelivery:
	case <-time.After(2 * time.Second):
		t.Fatal("peer never received the broadcast")
	}
	select {
	case <-selfDelivery:
		t.Fatal("sender received its own broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLocalChannelsAreScopedByDocument(t *testing.T) {
	provider := NewLocalProvider()

	a, err := provider.Channel("doc-1")
	require.NoError(t, err)
	defer a.Unsubscribe()
	other, err := provider.Channel("doc-2")
	require.NoError(t, err)
	defer other.Unsubscribe()

	leaked := make(chan struct{}, 1)
	other.On(EventSendChanges, func([]byte) { leaked <- struct{}{} })

	require.NoError(t, a.Broadcast(EventSendChanges, ChangesMessage{DocumentID: "doc-1"}))

	select {
	case <-leaked:
		t.Fatal("broadcast leaked across documents")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribedChannelStopsReceiving(t *testing.T) {
	provider := NewLocalProvider()

	a, err := provider.Channel("doc-1")
	require.NoError(t, err)
	defer a.Unsubscribe()
	b, err := provider.Channel("doc-1")
	require.NoError(t, err)

	received := make(chan struct{}, 4)
	b.On(EventSendChanges, func([]byte) { received <- struct{}{} })
	require.NoError(t, b.Unsubscribe())
	// Idempotent.
	require.NoError(t, b.Unsubscribe())

	require.NoError(t, a.Broadcast(EventSendChanges, ChangesMessage{DocumentID: "doc-1"}))

	select {
	case <-received:
		t.Fatal("unsubscribed channel still receiving")
	case <-time.After(100 * time.Millisecond):
	}

	// Broadcasting after unsubscribe is a quiet no-op.
	require.NoError(t, b.Broadcast(EventSendChanges, ChangesMessage{DocumentID: "doc-1"}))
}
