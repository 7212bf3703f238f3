package inbound

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"orders/internal/core/integration"
	"orders/internal/core/ports"

	"golang.org/x/sync/errgroup"
)

// DispatcherStats are cumulative counters since the dispatcher was created.
type DispatcherStats struct {
	Received       int64
	Completed      int64
	Abandoned      int64
	DeadLettered   int64
	Unknown        int64
	SettleFailures int64
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHandlerTimeout bounds how long one message may take to be handled and
// settled, including during shutdown.
func WithHandlerTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.handlerTimeout = timeout
		}
	}
}

// Dispatcher routes received messages to their registered handler and settles
// every delivery exactly once:
//   - no handler for the type tag: warn and Complete
//   - body does not decode into the event type: DeadLetter with DeserializationError
//   - handler fails: Abandon, so the transport redelivers
//   - handler succeeds: Complete
//
// A message that was taken off the transport is always handled and settled on
// a context detached from the session's cancellation, so shutting down never
// leaves a message half processed.
type Dispatcher struct {
	registry       *Registry
	logger         *slog.Logger
	handlerTimeout time.Duration

	received       atomic.Int64
	completed      atomic.Int64
	abandoned      atomic.Int64
	deadLettered   atomic.Int64
	unknown        atomic.Int64
	settleFailures atomic.Int64
}

func NewDispatcher(registry *Registry, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry:       registry,
		logger:         logger.With("component", "inbound-dispatcher"),
		handlerTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run consumes from receiver until ctx is cancelled, then closes the receiver.
func (d *Dispatcher) Run(ctx context.Context, receiver ports.MessageReceiver) error {
	d.logger.InfoContext(ctx, "inbound dispatcher started", slog.Any("types", d.registry.TypeTags()))

	err := receiver.Receive(ctx, d.Dispatch)

	if closeErr := receiver.Close(); closeErr != nil {
		d.logger.ErrorContext(ctx, "failed to close receiver", slog.String("error", closeErr.Error()))
	}

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("receive: %w", err)
	}

	d.logger.InfoContext(ctx, "inbound dispatcher stopped")
	return nil
}

// RunSessions runs one independent session per receiver. Sessions share
// only the registry; each processes one message at a time. The first session
// failure cancels the others.
func (d *Dispatcher) RunSessions(ctx context.Context, receivers []ports.MessageReceiver) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, receiver := range receivers {
		g.Go(func() error {
			return d.Run(ctx, receiver)
		})
	}
	return g.Wait()
}

// Dispatch processes and settles a single delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery ports.Delivery) {
	d.received.Add(1)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.handlerTimeout)
	defer cancel()

	msg := delivery.Message()
	logger := d.logger.With(
		slog.String("message_id", msg.ID),
		slog.String("type", msg.Type),
		slog.Int("delivery_count", delivery.DeliveryCount()),
	)

	route, ok := d.registry.Resolve(msg.Type)
	if !ok {
		d.unknown.Add(1)
		logger.WarnContext(ctx, "no handler registered for message type, completing")
		d.settle(ctx, logger, "complete", delivery.Complete, &d.completed)
		return
	}

	event, err := route.Decode(msg.Body)
	if err != nil {
		logger.ErrorContext(ctx, "failed to decode message, dead-lettering", slog.String("error", err.Error()))
		d.settle(ctx, logger, "dead-letter", func(ctx context.Context) error {
			return delivery.DeadLetter(ctx, ports.ReasonDeserializationError, err.Error())
		}, &d.deadLettered)
		return
	}

	if err = d.handle(ctx, route, event); err != nil {
		logger.ErrorContext(ctx, "handler failed, abandoning for redelivery", slog.String("error", err.Error()))
		d.settle(ctx, logger, "abandon", delivery.Abandon, &d.abandoned)
		return
	}

	d.settle(ctx, logger, "complete", delivery.Complete, &d.completed)
	logger.InfoContext(ctx, "message handled")
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Received:       d.received.Load(),
		Completed:      d.completed.Load(),
		Abandoned:      d.abandoned.Load(),
		DeadLettered:   d.deadLettered.Load(),
		Unknown:        d.unknown.Load(),
		SettleFailures: d.settleFailures.Load(),
	}
}

func (d *Dispatcher) handle(ctx context.Context, route Route, event integration.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler for %s panicked: %v", route.TypeTag(), r)
		}
	}()

	return route.Handle(ctx, event)
}

func (d *Dispatcher) settle(
	ctx context.Context,
	logger *slog.Logger,
	action string,
	fn func(context.Context) error,
	counter *atomic.Int64,
) {
	if err := fn(ctx); err != nil {
		d.settleFailures.Add(1)
		logger.ErrorContext(ctx, "failed to settle message",
			slog.String("action", action),
			slog.String("error", err.Error()))
		return
	}
	counter.Add(1)
}
