// Package messaging adapts the EventPublisher port to a message transport.
package messaging

import (
	"context"
	"errors"

	"orders/internal/core/integration"
	"orders/internal/core/ports"
)

// Publisher serializes integration events and sends them through a
// MessageSender. Transport errors are returned unmodified.
type Publisher struct {
	sender ports.MessageSender
}

func NewPublisher(sender ports.MessageSender) (*Publisher, error) {
	if sender == nil {
		return nil, errors.New("message sender is required")
	}
	return &Publisher{sender: sender}, nil
}

// Publish encodes event and sends it with the event id as message id, the
// type tag as message type and a JSON content type.
func (p *Publisher) Publish(ctx context.Context, event integration.Event) error {
	body, err := integration.Encode(event)
	if err != nil {
		return err
	}

	return p.sender.Send(ctx, ports.Message{
		ID:          event.EventID().String(),
		Type:        event.TypeTag(),
		ContentType: integration.ContentType,
		Body:        body,
	})
}
