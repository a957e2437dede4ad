package relay

// Handler receives the raw payload of one relay message.
type Handler func(payload []byte)

// Channel is one document's ephemeral low-latency relay: best-effort
// broadcast to currently-subscribed peers, no persistence, no replay. A
// channel never delivers a client's own broadcasts back to it.
//
// Exactly one channel is open per open document; Unsubscribe must be called
// when the document closes. A leaked channel is a defect.
type Channel interface {
	Broadcast(event string, payload interface{}) error
	On(event string, handler Handler)
	Unsubscribe() error
}

// Provider opens the ephemeral channel scoped to one document id.
type Provider interface {
	Channel(documentID string) (Channel, error)
}
