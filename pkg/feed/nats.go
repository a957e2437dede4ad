package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsBus is the durable change-feed transport. Committed catalog writes are
// published to a JetStream stream; each consumer instance folds them with a
// durable cursor, so a dropped connection resumes where it left off.
type NatsBus struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	durable string
}

const (
	feedStream        = "FEED"
	feedSubjectPrefix = "feed."
)

// NewNatsBus connects to NATS and ensures the FEED stream exists.
// durableName scopes the consumer cursor per subscriber instance.
func NewNatsBus(url, durableName string) (*NatsBus, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      feedStream,
		Subjects:  []string{feedSubjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
	})
	if err != nil {
		log.Printf("Warn: Failed to ensure stream %q: %v", feedStream, err)
		// Stream may already exist or NATS isn't ready yet; don't fail hard.
	}

	return &NatsBus{nc: nc, js: js, durable: durableName}, nil
}

// Publish sends a change event to feed.<table>.
func (b *NatsBus) Publish(ctx context.Context, event ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	subject := feedSubjectPrefix + string(event.Table)
	if _, err := b.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish change event to subject %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers a handler for all catalog tables through a durable
// consumer. Malformed messages are acked and dropped; the handler itself
// never fails the delivery.
func (b *NatsBus) Subscribe(ctx context.Context, handler Handler) error {
	consumer, err := b.js.CreateOrUpdateConsumer(ctx, feedStream, jetstream.ConsumerConfig{
		Durable:       b.durable,
		FilterSubject: feedSubjectPrefix + ">",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		var event ChangeEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			log.Printf("Error unmarshalling change event: %v", err)
			msg.Ack()
			return
		}
		handler(ctx, event)
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	return nil
}

// Close closes the NATS connection.
func (b *NatsBus) Close() error {
	if b.nc != nil {
		b.nc.Close()
	}
	return nil
}
