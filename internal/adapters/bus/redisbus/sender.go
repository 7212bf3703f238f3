package redisbus

import (
	"context"
	"fmt"

	"orders/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type Sender struct {
	cfg    Config
	client *redis.Client
}

var _ ports.MessageSender = (*Sender)(nil)

func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}
	return &Sender{cfg: cfg, client: newClient(cfg)}, nil
}

func (s *Sender) Send(ctx context.Context, msg ports.Message) error {
	if err := s.client.XAdd(ctx, addArgs(s.cfg.Stream, s.cfg.MaxLen, msg, 1)).Err(); err != nil {
		return fmt.Errorf("redis xadd to %s: %w", s.cfg.Stream, err)
	}
	return nil
}

func (s *Sender) Close() error {
	return s.client.Close()
}
