package feed

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelBus is an in-process change-feed transport backed by a watermill
// gochannel pub/sub. It is used when the server and the sync engine run in
// the same process, and by the engine's tests.
type ChannelBus struct {
	pubSub *gochannel.GoChannel
}

func NewChannelBus() *ChannelBus {
	return &ChannelBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

func (b *ChannelBus) topic(t Table) string {
	return feedSubjectPrefix + string(t)
}

func (b *ChannelBus) Publish(ctx context.Context, event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return b.pubSub.Publish(b.topic(event.Table), msg)
}

func (b *ChannelBus) Subscribe(ctx context.Context, handler Handler) error {
	for _, table := range Tables() {
		messages, err := b.pubSub.Subscribe(ctx, b.topic(table))
		if err != nil {
			return err
		}
		go func() {
			for msg := range messages {
				var event ChangeEvent
				if err := json.Unmarshal(msg.Payload, &event); err != nil {
					log.Printf("Error unmarshalling change event: %v", err)
					msg.Ack()
					continue
				}
				handler(ctx, event)
				msg.Ack()
			}
		}()
	}
	return nil
}

func (b *ChannelBus) Close() error {
	return b.pubSub.Close()
}
