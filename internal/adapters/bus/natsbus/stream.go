package natsbus

import (
	"errors"
	"fmt"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"

	"github.com/nats-io/nats.go"
)

func connect(cfg Config, name string) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("open jetstream: %w", err)
	}

	if err := ensureStream(js, cfg); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return nc, js, nil
}

// ensureStream creates the stream holding both the event and the dead letter
// subjects when it does not exist yet.
func ensureStream(js nats.JetStreamContext, cfg Config) error {
	_, err := js.StreamInfo(cfg.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("stream %s info: %w", cfg.Stream, err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject, cfg.deadLetterSubject()},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", cfg.Stream, err)
	}
	return nil
}

func ensureConsumer(js nats.JetStreamContext, cfg Config) error {
	_, err := js.ConsumerInfo(cfg.Stream, cfg.Durable)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrConsumerNotFound) {
		return fmt.Errorf("consumer %s info: %w", cfg.Durable, err)
	}

	_, err = js.AddConsumer(cfg.Stream, &nats.ConsumerConfig{
		Durable:       cfg.Durable,
		FilterSubject: cfg.Subject,
		AckPolicy:     nats.AckExplicitPolicy,
		DeliverPolicy: nats.DeliverAllPolicy,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.maxDeliveries(),
	})
	if err != nil {
		return fmt.Errorf("add consumer %s: %w", cfg.Durable, err)
	}
	return nil
}

func toNatsMsg(subject string, msg ports.Message) *nats.Msg {
	m := nats.NewMsg(subject)
	m.Data = msg.Body
	m.Header.Set(nats.MsgIdHdr, msg.ID)
	m.Header.Set(bus.HeaderMessageID, msg.ID)
	m.Header.Set(bus.HeaderType, msg.Type)
	m.Header.Set(bus.HeaderContentType, msg.ContentType)
	return m
}

func fromNatsMsg(m *nats.Msg) ports.Message {
	msg := ports.Message{Body: m.Data}
	if m.Header == nil {
		return msg
	}

	msg.ID = m.Header.Get(bus.HeaderMessageID)
	if msg.ID == "" {
		msg.ID = m.Header.Get(nats.MsgIdHdr)
	}
	msg.Type = m.Header.Get(bus.HeaderType)
	msg.ContentType = m.Header.Get(bus.HeaderContentType)
	return msg
}
