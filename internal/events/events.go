package events

import "context"

// Event types
const (
	EventEscrowCreated       = "escrow_created"
	EventEscrowStatusChanged = "escrow_status_changed"
)

// StreamEscrow is the pub/sub channel carrying escrow lifecycle events.
const StreamEscrow = "events:escrow"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NoopPublisher discards events; useful for tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }
