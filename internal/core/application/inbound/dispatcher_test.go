package inbound_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orders/internal/core/application/inbound"
	"orders/internal/core/integration"
	"orders/internal/core/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type settlement struct {
	action      string
	reasonCode  string
	description string
	ctxErr      error
}

type fakeDelivery struct {
	msg       ports.Message
	settleErr error

	mu      sync.Mutex
	settled []settlement
}

func (d *fakeDelivery) Message() ports.Message { return d.msg }
func (d *fakeDelivery) DeliveryCount() int     { return 1 }

func (d *fakeDelivery) Complete(ctx context.Context) error {
	return d.record(settlement{action: "complete", ctxErr: ctx.Err()})
}

func (d *fakeDelivery) Abandon(ctx context.Context) error {
	return d.record(settlement{action: "abandon", ctxErr: ctx.Err()})
}

func (d *fakeDelivery) DeadLetter(ctx context.Context, reasonCode, description string) error {
	return d.record(settlement{action: "dead-letter", reasonCode: reasonCode, description: description, ctxErr: ctx.Err()})
}

func (d *fakeDelivery) record(s settlement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settled = append(d.settled, s)
	return d.settleErr
}

func (d *fakeDelivery) only(t *testing.T) settlement {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.Len(t, d.settled, 1, "a delivery is settled exactly once")
	return d.settled[0]
}

func deliveryOf(t *testing.T, event integration.Event) *fakeDelivery {
	t.Helper()
	body, err := integration.Encode(event)
	require.NoError(t, err)
	return &fakeDelivery{msg: ports.Message{
		ID:          event.EventID().String(),
		Type:        event.TypeTag(),
		ContentType: integration.ContentType,
		Body:        body,
	}}
}

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("handled message is completed", func(t *testing.T) {
		registry := inbound.NewRegistry()
		var calls int
		require.NoError(t, inbound.Register(registry, func(_ context.Context, e integration.OrderProcessed) error {
			calls++
			return nil
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		delivery := deliveryOf(t, integration.NewOrderProcessed(uuid.New(), time.Now(), time.Now()))

		dispatcher.Dispatch(t.Context(), delivery)

		assert.Equal(t, 1, calls)
		assert.Equal(t, "complete", delivery.only(t).action)
		assert.Equal(t, int64(1), dispatcher.Stats().Completed)
	})

	t.Run("unknown type is completed without invoking any handler", func(t *testing.T) {
		registry := inbound.NewRegistry()
		var calls int
		require.NoError(t, inbound.Register(registry, func(context.Context, integration.OrderShipped) error {
			calls++
			return nil
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		delivery := &fakeDelivery{msg: ports.Message{ID: "1", Type: "OrderRefunded", Body: []byte(`{}`)}}

		dispatcher.Dispatch(t.Context(), delivery)

		assert.Zero(t, calls)
		assert.Equal(t, "complete", delivery.only(t).action)
		stats := dispatcher.Stats()
		assert.Equal(t, int64(1), stats.Unknown)
		assert.Equal(t, int64(1), stats.Completed)
	})

	t.Run("shipped message without shippedDate is dead-lettered", func(t *testing.T) {
		registry := inbound.NewRegistry()
		var calls int
		require.NoError(t, inbound.Register(registry, func(context.Context, integration.OrderShipped) error {
			calls++
			return nil
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		body := `{"id":"` + uuid.NewString() + `","occurredOn":"2025-05-04T08:30:00Z","orderId":"` + uuid.NewString() + `"}`
		delivery := &fakeDelivery{msg: ports.Message{ID: "2", Type: "OrderShipped", Body: []byte(body)}}

		dispatcher.Dispatch(t.Context(), delivery)

		assert.Zero(t, calls)
		settled := delivery.only(t)
		assert.Equal(t, "dead-letter", settled.action)
		assert.Equal(t, "DeserializationError", settled.reasonCode)
		assert.Contains(t, settled.description, "ShippedDate")
		assert.Equal(t, int64(1), dispatcher.Stats().DeadLettered)
	})

	t.Run("created message without money fields is dead-lettered", func(t *testing.T) {
		registry := inbound.NewRegistry()
		var calls int
		require.NoError(t, inbound.Register(registry, func(context.Context, integration.OrderCreated) error {
			calls++
			return nil
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		header := `{"id":"` + uuid.NewString() + `","occurredOn":"2025-05-04T08:30:00Z","orderId":"` + uuid.NewString() + `","customerId":"c",`
		withoutTotal := &fakeDelivery{msg: ports.Message{ID: "3", Type: "OrderCreated", Body: []byte(
			header + `"items":[{"productId":"sku-1","quantity":1,"unitPrice":"5"}]}`)}}
		withoutPrice := &fakeDelivery{msg: ports.Message{ID: "4", Type: "OrderCreated", Body: []byte(
			header + `"items":[{"productId":"sku-1","quantity":1}],"totalAmount":"5"}`)}}

		dispatcher.Dispatch(t.Context(), withoutTotal)
		dispatcher.Dispatch(t.Context(), withoutPrice)

		assert.Zero(t, calls)
		for _, delivery := range []*fakeDelivery{withoutTotal, withoutPrice} {
			settled := delivery.only(t)
			assert.Equal(t, "dead-letter", settled.action)
			assert.Equal(t, "DeserializationError", settled.reasonCode)
		}
		assert.Contains(t, withoutTotal.only(t).description, "totalAmount")
		assert.Contains(t, withoutPrice.only(t).description, "unitPrice")
		assert.Equal(t, int64(2), dispatcher.Stats().DeadLettered)
	})

	t.Run("handler error abandons the message", func(t *testing.T) {
		registry := inbound.NewRegistry()
		require.NoError(t, inbound.Register(registry, func(context.Context, integration.OrderCancelled) error {
			return errors.New("smtp unavailable")
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		delivery := deliveryOf(t, integration.NewOrderCancelled(uuid.New(), time.Now(), "", time.Now()))

		dispatcher.Dispatch(t.Context(), delivery)

		assert.Equal(t, "abandon", delivery.only(t).action)
		assert.Equal(t, int64(1), dispatcher.Stats().Abandoned)
	})

	t.Run("handler panic abandons the message", func(t *testing.T) {
		registry := inbound.NewRegistry()
		require.NoError(t, inbound.Register(registry, func(context.Context, integration.OrderCompleted) error {
			panic("boom")
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		delivery := deliveryOf(t, integration.NewOrderCompleted(uuid.New(), time.Now(), time.Now()))

		dispatcher.Dispatch(t.Context(), delivery)

		assert.Equal(t, "abandon", delivery.only(t).action)
	})

	t.Run("settlement failure is counted and not retried", func(t *testing.T) {
		registry := inbound.NewRegistry()
		require.NoError(t, inbound.Register(registry, func(context.Context, integration.OrderCompleted) error { return nil }))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		delivery := deliveryOf(t, integration.NewOrderCompleted(uuid.New(), time.Now(), time.Now()))
		delivery.settleErr = errors.New("lock lost")

		dispatcher.Dispatch(t.Context(), delivery)

		delivery.only(t)
		stats := dispatcher.Stats()
		assert.Equal(t, int64(1), stats.SettleFailures)
		assert.Zero(t, stats.Completed)
	})

	t.Run("in-flight message is handled and settled after cancellation", func(t *testing.T) {
		registry := inbound.NewRegistry()
		var handlerCtxErr error
		require.NoError(t, inbound.Register(registry, func(ctx context.Context, _ integration.OrderProcessed) error {
			handlerCtxErr = ctx.Err()
			return nil
		}))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())
		delivery := deliveryOf(t, integration.NewOrderProcessed(uuid.New(), time.Now(), time.Now()))

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		dispatcher.Dispatch(ctx, delivery)

		require.NoError(t, handlerCtxErr)
		settled := delivery.only(t)
		assert.Equal(t, "complete", settled.action)
		require.NoError(t, settled.ctxErr)
	})
}

type fakeReceiver struct {
	deliveries []ports.Delivery
	closed     bool
	err        error
}

func (r *fakeReceiver) Receive(ctx context.Context, onMessage func(context.Context, ports.Delivery)) error {
	for _, d := range r.deliveries {
		onMessage(ctx, d)
	}
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (r *fakeReceiver) Close() error {
	r.closed = true
	return nil
}

func TestDispatcher_Run(t *testing.T) {
	t.Run("should process deliveries and close the receiver on shutdown", func(t *testing.T) {
		registry := inbound.NewRegistry()
		require.NoError(t, inbound.NewNotificationHandlers(discardLogger()).RegisterAll(registry))
		dispatcher := inbound.NewDispatcher(registry, discardLogger(), inbound.WithHandlerTimeout(time.Second))

		first := deliveryOf(t, integration.NewOrderShipped(uuid.New(), time.Now(), "", time.Now()))
		receiver := &fakeReceiver{deliveries: []ports.Delivery{first}}

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		require.NoError(t, dispatcher.Run(ctx, receiver))
		assert.True(t, receiver.closed)
		assert.Equal(t, "complete", first.only(t).action)
	})
}

func TestDispatcher_RunSessions(t *testing.T) {
	t.Run("should run every session and stop them together", func(t *testing.T) {
		registry := inbound.NewRegistry()
		require.NoError(t, inbound.NewNotificationHandlers(discardLogger()).RegisterAll(registry))
		dispatcher := inbound.NewDispatcher(registry, discardLogger())

		deliveries := []*fakeDelivery{
			deliveryOf(t, integration.NewOrderCompleted(uuid.New(), time.Now(), time.Now())),
			deliveryOf(t, integration.NewOrderCancelled(uuid.New(), time.Now(), "r", time.Now())),
		}
		receivers := []ports.MessageReceiver{
			&fakeReceiver{deliveries: []ports.Delivery{deliveries[0]}},
			&fakeReceiver{deliveries: []ports.Delivery{deliveries[1]}},
		}

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		require.NoError(t, dispatcher.RunSessions(ctx, receivers))
		for _, d := range deliveries {
			assert.Equal(t, "complete", d.only(t).action)
		}
		for _, r := range receivers {
			assert.True(t, r.(*fakeReceiver).closed)
		}
		assert.Equal(t, int64(2), dispatcher.Stats().Received)
	})

	t.Run("should surface a failing session", func(t *testing.T) {
		dispatcher := inbound.NewDispatcher(inbound.NewRegistry(), discardLogger())
		broken := &fakeReceiver{err: errors.New("connection lost")}
		healthy := &fakeReceiver{}

		err := dispatcher.RunSessions(t.Context(), []ports.MessageReceiver{broken, healthy})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection lost")
		assert.True(t, broken.closed)
		assert.True(t, healthy.closed)
	})
}
