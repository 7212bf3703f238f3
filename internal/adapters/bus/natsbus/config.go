// Package natsbus is the NATS JetStream message transport.
//
// Messages are published with the Nats-Msg-Id header so the stream drops
// duplicates. Receivers pull from a durable consumer with explicit acks:
// Complete acks, Abandon naks for redelivery, DeadLetter publishes to the
// dead letter subject and terminates the original.
package natsbus

import (
	"errors"
	"time"

	"orders/internal/adapters/bus"
)

type Config struct {
	URL     string
	Stream  string
	Subject string
	Durable string

	// DeadLetterSubject defaults to "<Subject>.dlq".
	DeadLetterSubject string

	MaxDeliveries int
	AckWait       time.Duration
	FetchWait     time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Stream:        "ORDERS",
		Subject:       "orders.events",
		Durable:       "orders-notifications",
		MaxDeliveries: bus.DefaultMaxDeliveries,
		AckWait:       time.Minute,
		FetchWait:     5 * time.Second,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if c.Stream == "" {
		errs = append(errs, errors.New("stream is required"))
	}
	if c.Subject == "" {
		errs = append(errs, errors.New("subject is required"))
	}
	if c.MaxDeliveries < 0 {
		errs = append(errs, errors.New("max deliveries cannot be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) validateConsumer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Durable == "" {
		return errors.New("durable consumer name is required")
	}
	return nil
}

func (c Config) deadLetterSubject() string {
	if c.DeadLetterSubject != "" {
		return c.DeadLetterSubject
	}
	return bus.DeadLetterName(c.Subject)
}

func (c Config) maxDeliveries() int {
	if c.MaxDeliveries <= 0 {
		return bus.DefaultMaxDeliveries
	}
	return c.MaxDeliveries
}

func (c Config) fetchWait() time.Duration {
	if c.FetchWait <= 0 {
		return 5 * time.Second
	}
	return c.FetchWait
}
