package kafkabus

import (
	"context"
	"fmt"

	"orders/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// Sender publishes messages to the configured topic.
type Sender struct {
	topic  string
	writer *kafka.Writer
}

var _ ports.MessageSender = (*Sender)(nil)

func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	return &Sender{topic: cfg.Topic, writer: newWriter(cfg)}, nil
}

func (s *Sender) Send(ctx context.Context, msg ports.Message) error {
	if err := s.writer.WriteMessages(ctx, toKafkaMessage(s.topic, msg, 1)); err != nil {
		return fmt.Errorf("kafka write to %s: %w", s.topic, err)
	}
	return nil
}

func (s *Sender) Close() error {
	return s.writer.Close()
}

// newWriter has no fixed topic; every message names its own.
func newWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}
