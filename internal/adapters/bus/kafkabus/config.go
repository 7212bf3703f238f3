// Package kafkabus is the Kafka message transport built on segmentio/kafka-go.
//
// A delivery is settled by committing its offset. Abandon re-publishes the
// message with an incremented delivery count before committing, and a
// message that exhausted its deliveries goes to the "<topic>.dlq" topic.
package kafkabus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orders/internal/adapters/bus"
)

type Config struct {
	Brokers       []string
	Topic         string
	GroupID       string
	MaxDeliveries int

	// DeadLetterTopic defaults to "<Topic>.dlq".
	DeadLetterTopic string

	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Brokers:       []string{"localhost:9092"},
		Topic:         "orders.events",
		GroupID:       "orders-notifications",
		MaxDeliveries: bus.DefaultMaxDeliveries,
		MinBytes:      1,
		MaxBytes:      10e6,
		MaxWait:       time.Second,
	}
}

func (c Config) Validate() error {
	var errs []error
	if len(c.Brokers) == 0 {
		errs = append(errs, errors.New("brokers cannot be empty"))
	}
	for i, broker := range c.Brokers {
		if !strings.Contains(broker, ":") {
			errs = append(errs, fmt.Errorf("broker[%d] must be in format host:port", i))
		}
	}
	if c.Topic == "" {
		errs = append(errs, errors.New("topic is required"))
	}
	if c.MaxDeliveries < 0 {
		errs = append(errs, errors.New("max deliveries cannot be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) deadLetterTopic() string {
	if c.DeadLetterTopic != "" {
		return c.DeadLetterTopic
	}
	return bus.DeadLetterName(c.Topic)
}

func (c Config) validateConsumer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GroupID == "" {
		return errors.New("consumer group is required")
	}
	return nil
}
