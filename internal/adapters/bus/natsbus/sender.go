package natsbus

import (
	"context"
	"fmt"

	"orders/internal/core/ports"

	"github.com/nats-io/nats.go"
)

type Sender struct {
	subject string
	conn    *nats.Conn
	js      nats.JetStreamContext
}

var _ ports.MessageSender = (*Sender)(nil)

func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid nats config: %w", err)
	}

	conn, js, err := connect(cfg, "orders-publisher")
	if err != nil {
		return nil, err
	}

	return &Sender{subject: cfg.Subject, conn: conn, js: js}, nil
}

func (s *Sender) Send(ctx context.Context, msg ports.Message) error {
	if _, err := s.js.PublishMsg(toNatsMsg(s.subject, msg), nats.Context(ctx)); err != nil {
		return fmt.Errorf("nats publish to %s: %w", s.subject, err)
	}
	return nil
}

func (s *Sender) Close() error {
	return s.conn.Drain()
}
