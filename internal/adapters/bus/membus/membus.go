// Package membus is an in-process message transport backed by a buffered
// channel. It serves single-binary deployments and tests.
package membus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"orders/internal/adapters/bus"
	"orders/internal/core/ports"
)

var (
	ErrBusClosed      = errors.New("message bus is closed")
	ErrAlreadySettled = errors.New("delivery is already settled")
)

// DefaultCapacity is the queue size used when New is given none.
const DefaultCapacity = 1024

// DeadLetter is a message moved off the queue for good.
type DeadLetter struct {
	Message       ports.Message
	DeliveryCount int
	ReasonCode    string
	Description   string
}

type envelope struct {
	msg   ports.Message
	count int
}

// Bus is both the sender and the source of receivers. Competing receivers
// share one queue, so each message reaches exactly one of them. Abandoned
// messages wait in an unbounded retry list that receivers drain before the
// queue, so a full queue never blocks a redelivery.
type Bus struct {
	queue         chan envelope
	retryReady    chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
	maxDeliveries int

	mu          sync.Mutex
	retries     []envelope
	deadLetters []DeadLetter
}

var _ ports.MessageSender = (*Bus)(nil)

func New(capacity, maxDeliveries int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxDeliveries <= 0 {
		maxDeliveries = bus.DefaultMaxDeliveries
	}
	return &Bus{
		queue:         make(chan envelope, capacity),
		retryReady:    make(chan struct{}, 1),
		done:          make(chan struct{}),
		maxDeliveries: maxDeliveries,
	}
}

// Send enqueues msg, waiting for room while ctx allows.
func (b *Bus) Send(ctx context.Context, msg ports.Message) error {
	return b.enqueue(ctx, envelope{msg: msg, count: 1})
}

// Close stops all receivers. Messages still queued are dropped.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}

// Receiver returns a new consuming session on the bus.
func (b *Bus) Receiver() ports.MessageReceiver {
	return &receiver{bus: b}
}

// DeadLetters returns a copy of everything dead lettered so far.
func (b *Bus) DeadLetters() []DeadLetter {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]DeadLetter, len(b.deadLetters))
	copy(out, b.deadLetters)
	return out
}

// Pending is the number of queued messages, redeliveries included.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.queue) + len(b.retries)
}

func (b *Bus) enqueue(ctx context.Context, env envelope) error {
	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}

	select {
	case b.queue <- env:
		return nil
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) requeue(env envelope) {
	b.mu.Lock()
	b.retries = append(b.retries, env)
	b.mu.Unlock()

	select {
	case b.retryReady <- struct{}{}:
	default:
	}
}

func (b *Bus) nextRetry() (envelope, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.retries) == 0 {
		return envelope{}, false
	}
	env := b.retries[0]
	b.retries = b.retries[1:]
	return env, true
}

func (b *Bus) deadLetter(env envelope, reasonCode, description string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.deadLetters = append(b.deadLetters, DeadLetter{
		Message:       env.msg,
		DeliveryCount: env.count,
		ReasonCode:    reasonCode,
		Description:   description,
	})
}

type receiver struct {
	bus *Bus
}

func (r *receiver) Receive(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.bus.done:
			return nil
		default:
		}

		if env, ok := r.bus.nextRetry(); ok {
			onMessage(ctx, &delivery{bus: r.bus, env: env})
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-r.bus.done:
			return nil
		case <-r.bus.retryReady:
		case env := <-r.bus.queue:
			onMessage(ctx, &delivery{bus: r.bus, env: env})
		}
	}
}

// Close is a no-op; the queue belongs to the Bus.
func (r *receiver) Close() error {
	return nil
}

type delivery struct {
	bus     *Bus
	env     envelope
	settled atomic.Bool
}

func (d *delivery) Message() ports.Message {
	return d.env.msg
}

func (d *delivery) DeliveryCount() int {
	return d.env.count
}

func (d *delivery) Complete(_ context.Context) error {
	return d.settle()
}

func (d *delivery) Abandon(_ context.Context) error {
	if err := d.settle(); err != nil {
		return err
	}

	if bus.Exhausted(d.env.count, d.bus.maxDeliveries) {
		d.bus.deadLetter(d.env, ports.ReasonMaxDeliveryCountExceeded, bus.ExhaustedDescription(d.env.count))
		return nil
	}

	d.bus.requeue(envelope{msg: d.env.msg, count: d.env.count + 1})
	return nil
}

func (d *delivery) DeadLetter(_ context.Context, reasonCode, description string) error {
	if err := d.settle(); err != nil {
		return err
	}
	d.bus.deadLetter(d.env, reasonCode, description)
	return nil
}

func (d *delivery) settle() error {
	if !d.settled.CompareAndSwap(false, true) {
		return ErrAlreadySettled
	}
	return nil
}
