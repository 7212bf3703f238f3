package ports

import (
	"context"

	"orders/internal/core/integration"
)

// Dead letter reason codes.
const (
	ReasonDeserializationError     = "DeserializationError"
	ReasonMaxDeliveryCountExceeded = "MaxDeliveryCountExceeded"
)

// EventPublisher sends integration events to the message transport.
type EventPublisher interface {
	Publish(ctx context.Context, event integration.Event) error
}

// Message is the transport neutral envelope of an integration event.
type Message struct {
	// ID is the integration event id; transports use it for deduplication.
	ID string

	// Type is the event type tag, e.g. "OrderShipped".
	Type string

	ContentType string
	Body        []byte
}

// MessageSender puts messages on the transport.
type MessageSender interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Delivery is a received message together with its settlement operations.
// Exactly one of Complete, Abandon or DeadLetter must be called per delivery.
type Delivery interface {
	Message() Message

	// DeliveryCount is 1 on the first delivery and grows with each redelivery.
	DeliveryCount() int

	// Complete removes the message from the transport.
	Complete(ctx context.Context) error

	// Abandon releases the message for redelivery. Transports move a message
	// that exhausted its redeliveries to the dead letter destination.
	Abandon(ctx context.Context) error

	// DeadLetter moves the message to the dead letter destination.
	DeadLetter(ctx context.Context, reasonCode, description string) error
}

// MessageReceiver is one consuming session on the transport.
type MessageReceiver interface {
	// Receive invokes onMessage for one delivery at a time until ctx is
	// cancelled or the session fails. A cancelled ctx returns nil.
	Receive(ctx context.Context, onMessage func(ctx context.Context, delivery Delivery)) error

	Close() error
}
