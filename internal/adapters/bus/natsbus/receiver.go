package natsbus

import (
	"context"
	"errors"
	"fmt"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"

	"github.com/nats-io/nats.go"
)

// Receiver pulls one message at a time from a durable consumer bound to the
// stream. Unsubscribing from a bound consumer keeps it on the server.
type Receiver struct {
	cfg  Config
	conn *nats.Conn
	js   nats.JetStreamContext
	sub  *nats.Subscription
}

var _ ports.MessageReceiver = (*Receiver)(nil)

func NewReceiver(cfg Config) (*Receiver, error) {
	if err := cfg.validateConsumer(); err != nil {
		return nil, fmt.Errorf("invalid nats config: %w", err)
	}

	conn, js, err := connect(cfg, "orders-"+cfg.Durable)
	if err != nil {
		return nil, err
	}

	if err := ensureConsumer(js, cfg); err != nil {
		conn.Close()
		return nil, err
	}

	sub, err := js.PullSubscribe(cfg.Subject, cfg.Durable, nats.Bind(cfg.Stream, cfg.Durable))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("pull subscribe %s: %w", cfg.Durable, err)
	}

	return &Receiver{cfg: cfg, conn: conn, js: js, sub: sub}, nil
}

func (r *Receiver) Receive(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := r.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("nats fetch from %s: %w", r.cfg.Durable, err)
		}

		for _, m := range msgs {
			onMessage(ctx, r.newDelivery(m))
		}
	}
}

// fetch waits at most FetchWait for one message. An empty wait is not an error.
func (r *Receiver) fetch(ctx context.Context) ([]*nats.Msg, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.fetchWait())
	defer cancel()

	msgs, err := r.sub.Fetch(1, nats.Context(fetchCtx))
	if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return nil, nil
	}
	return msgs, err
}

func (r *Receiver) Close() error {
	return errors.Join(r.sub.Unsubscribe(), r.conn.Drain())
}

func (r *Receiver) newDelivery(m *nats.Msg) *delivery {
	count := 1
	if meta, err := m.Metadata(); err == nil && meta.NumDelivered > 0 {
		count = int(meta.NumDelivered)
	}
	return &delivery{receiver: r, raw: m, msg: fromNatsMsg(m), count: count}
}

type delivery struct {
	receiver *Receiver
	raw      *nats.Msg
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
	if err := d.raw.AckSync(nats.Context(ctx)); err != nil {
		return fmt.Errorf("nats ack %s: %w", d.msg.ID, err)
	}
	return nil
}

func (d *delivery) Abandon(ctx context.Context) error {
	if bus.Exhausted(d.count, d.receiver.cfg.MaxDeliveries) {
		return d.DeadLetter(ctx, ports.ReasonMaxDeliveryCountExceeded, bus.ExhaustedDescription(d.count))
	}

	if err := d.raw.Nak(nats.Context(ctx)); err != nil {
		return fmt.Errorf("nats nak %s: %w", d.msg.ID, err)
	}
	return nil
}

func (d *delivery) DeadLetter(ctx context.Context, reasonCode, description string) error {
	subject := d.receiver.cfg.deadLetterSubject()

	dead := toNatsMsg(subject, d.msg)
	// The original id would be dropped by the stream's duplicate window.
	dead.Header.Del(nats.MsgIdHdr)
	dead.Header.Set(bus.HeaderReasonCode, reasonCode)
	dead.Header.Set(bus.HeaderDescription, description)
	dead.Header.Set(bus.HeaderDeliveryCount, fmt.Sprint(d.count))

	if _, err := d.receiver.js.PublishMsg(dead, nats.Context(ctx)); err != nil {
		return fmt.Errorf("nats dead letter %s to %s: %w", d.msg.ID, subject, err)
	}
	if err := d.raw.Term(nats.Context(ctx)); err != nil {
		return fmt.Errorf("nats term %s: %w", d.msg.ID, err)
	}
	return nil
}
