// Package redisbus is the Redis Streams message transport built on go-redis.
//
// Receivers read through a consumer group and settle with XACK. Abandon
// appends a copy carrying the next delivery count and acknowledges the
// original in one transaction. Dead letters go to "<stream>.dlq".
//
// A session first redelivers the entries its consumer left unacknowledged,
// then periodically claims entries idle in other consumers for ClaimMinIdle.
package redisbus

import (
	"errors"
	"time"

	"orders/internal/adapters/bus"
)

type Config struct {
	Addr     string
	Password string
	DB       int

	Stream   string
	Group    string
	Consumer string

	// DeadLetterStream defaults to "<Stream>.dlq".
	DeadLetterStream string

	MaxDeliveries int
	Block         time.Duration
	MaxLen        int64

	// ClaimMinIdle is how long an entry stays unacknowledged by a consumer
	// before another consumer of the group takes it over.
	ClaimMinIdle time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:          "localhost:6379",
		Stream:        "orders.events",
		Group:         "orders-notifications",
		Consumer:      "orders-1",
		MaxDeliveries: bus.DefaultMaxDeliveries,
		Block:         5 * time.Second,
		ClaimMinIdle:  time.Minute,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.Stream == "" {
		errs = append(errs, errors.New("stream is required"))
	}
	if c.MaxDeliveries < 0 {
		errs = append(errs, errors.New("max deliveries cannot be negative"))
	}
	if c.Block < 0 {
		errs = append(errs, errors.New("block timeout cannot be negative"))
	}
	if c.ClaimMinIdle < 0 {
		errs = append(errs, errors.New("claim min idle cannot be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) validateConsumer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errs []error
	if c.Group == "" {
		errs = append(errs, errors.New("consumer group is required"))
	}
	if c.Consumer == "" {
		errs = append(errs, errors.New("consumer name is required"))
	}
	return errors.Join(errs...)
}

func (c Config) deadLetterStream() string {
	if c.DeadLetterStream != "" {
		return c.DeadLetterStream
	}
	return bus.DeadLetterName(c.Stream)
}

func (c Config) block() time.Duration {
	if c.Block <= 0 {
		return 5 * time.Second
	}
	return c.Block
}

func (c Config) claimMinIdle() time.Duration {
	if c.ClaimMinIdle <= 0 {
		return time.Minute
	}
	return c.ClaimMinIdle
}

func (c Config) maxDeliveries() int {
	if c.MaxDeliveries <= 0 {
		return bus.DefaultMaxDeliveries
	}
	return c.MaxDeliveries
}
