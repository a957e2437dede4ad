package relay

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// LocalProvider is an in-process relay backed by a watermill gochannel
// pub/sub. Every subscriber on the same document topic gets every broadcast;
// the envelope carries the sending connection id so a channel can drop its
// own messages, matching the broadcast-to-peers-only contract.
type LocalProvider struct {
	pubSub *gochannel.GoChannel
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

type envelope struct {
	Sender  string          `json:"sender"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type localChannel struct {
	pubSub *gochannel.GoChannel
	topic  string
	connID string
	cancel context.CancelFunc

	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
}

func (p *LocalProvider) Channel(documentID string) (Channel, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := &localChannel{
		pubSub:   p.pubSub,
		topic:    "relay." + documentID,
		connID:   watermill.NewUUID(),
		cancel:   cancel,
		handlers: make(map[string][]Handler),
	}

	messages, err := p.pubSub.Subscribe(ctx, ch.topic)
	if err != nil {
		cancel()
		return nil, err
	}
	go ch.pump(messages)
	return ch, nil
}

func (c *localChannel) pump(messages <-chan *message.Message) {
	for msg := range messages {
		var env envelope
		if err := json.Unmarshal(msg.Payload, &env); err != nil {
			msg.Ack()
			continue
		}
		msg.Ack()
		if env.Sender == c.connID {
			continue
		}
		c.mu.RLock()
		handlers := append([]Handler(nil), c.handlers[env.Event]...)
		c.mu.RUnlock()
		for _, h := range handlers {
			h(env.Payload)
		}
	}
}

func (c *localChannel) Broadcast(event string, payload interface{}) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope{Sender: c.connID, Event: event, Payload: raw})
	if err != nil {
		return err
	}
	return c.pubSub.Publish(c.topic, message.NewMessage(watermill.NewUUID(), data))
}

func (c *localChannel) On(event string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

func (c *localChannel) Unsubscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	return nil
}
