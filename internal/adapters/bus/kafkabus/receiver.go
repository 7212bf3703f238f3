package kafkabus

import (
	"context"
	"errors"
	"fmt"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// Receiver is one consumer group member. Offsets are committed explicitly
// when a delivery is settled.
type Receiver struct {
	cfg    Config
	reader *kafka.Reader
	writer *kafka.Writer
}

var _ ports.MessageReceiver = (*Receiver)(nil)

func NewReceiver(cfg Config) (*Receiver, error) {
	if err := cfg.validateConsumer(); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})

	return &Receiver{cfg: cfg, reader: reader, writer: newWriter(cfg)}, nil
}

func (r *Receiver) Receive(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	for {
		m, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka fetch from %s: %w", r.cfg.Topic, err)
		}

		msg, count := fromKafkaMessage(m)
		onMessage(ctx, &delivery{receiver: r, raw: m, msg: msg, count: count})
	}
}

func (r *Receiver) Close() error {
	return errors.Join(r.reader.Close(), r.writer.Close())
}

type delivery struct {
	receiver *Receiver
	raw      kafka.Message
	msg      ports.Message
	count    int
}

func (d *delivery) Message() ports.Message {
	return d.msg
}

func (d *delivery) DeliveryCount() int {
	return d.count
}

func (d *delivery) Complete(ctx context.Context) error {
	return d.commit(ctx)
}

func (d *delivery) Abandon(ctx context.Context) error {
	if bus.Exhausted(d.count, d.receiver.cfg.MaxDeliveries) {
		return d.DeadLetter(ctx, ports.ReasonMaxDeliveryCountExceeded, bus.ExhaustedDescription(d.count))
	}

	retry := toKafkaMessage(d.receiver.cfg.Topic, d.msg, d.count+1)
	if err := d.receiver.writer.WriteMessages(ctx, retry); err != nil {
		return fmt.Errorf("kafka redeliver %s: %w", d.msg.ID, err)
	}
	return d.commit(ctx)
}

func (d *delivery) DeadLetter(ctx context.Context, reasonCode, description string) error {
	topic := d.receiver.cfg.deadLetterTopic()
	dead := toKafkaMessage(topic, d.msg, d.count,
		kafka.Header{Key: bus.HeaderReasonCode, Value: []byte(reasonCode)},
		kafka.Header{Key: bus.HeaderDescription, Value: []byte(description)},
	)

	if err := d.receiver.writer.WriteMessages(ctx, dead); err != nil {
		return fmt.Errorf("kafka dead letter %s to %s: %w", d.msg.ID, topic, err)
	}
	return d.commit(ctx)
}

func (d *delivery) commit(ctx context.Context) error {
	if err := d.receiver.reader.CommitMessages(ctx, d.raw); err != nil {
		return fmt.Errorf("kafka commit %s: %w", d.msg.ID, err)
	}
	return nil
}
