// Package eventhandlers turns domain events raised by the order aggregate
// into integration events and hands them to the outbound publisher.
package eventhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"orders/internal/core/domain/model/order"
	"orders/internal/core/integration"
	"orders/internal/core/ports"
)

// ErrUnsupportedEvent is returned for a domain event the bridge has no mapping for.
var ErrUnsupportedEvent = errors.New("unsupported domain event")

// OrderEventsBridge maps each order domain event to exactly one integration
// event and publishes it. Publish failures are logged and returned; retrying
// is left to the caller.
type OrderEventsBridge struct {
	publisher ports.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewOrderEventsBridge(publisher ports.EventPublisher, logger *slog.Logger) *OrderEventsBridge {
	return &OrderEventsBridge{
		publisher: publisher,
		logger:    logger.With("component", "order-events-bridge"),
		now:       time.Now,
	}
}

// Handle publishes the integration event matching event.
func (b *OrderEventsBridge) Handle(ctx context.Context, event order.Event) error {
	switch e := event.(type) {
	case order.CreatedEvent:
		return b.onCreated(ctx, e)
	case order.ProcessedEvent:
		return b.onProcessed(ctx, e)
	case order.ShippedEvent:
		return b.onShipped(ctx, e)
	case order.CompletedEvent:
		return b.onCompleted(ctx, e)
	case order.CancelledEvent:
		return b.onCancelled(ctx, e)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEvent, event)
	}
}

func (b *OrderEventsBridge) onCreated(ctx context.Context, e order.CreatedEvent) error {
	lineItems := e.Items()
	items := make([]integration.OrderItem, 0, len(lineItems))
	for _, item := range lineItems {
		items = append(items, integration.OrderItem{
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	return b.publish(ctx, integration.NewOrderCreated(
		e.OrderID().Google(), e.CustomerID(), items, e.TotalAmount(), b.now(),
	))
}

func (b *OrderEventsBridge) onProcessed(ctx context.Context, e order.ProcessedEvent) error {
	return b.publish(ctx, integration.NewOrderProcessed(e.OrderID().Google(), e.OccurredAt(), b.now()))
}

func (b *OrderEventsBridge) onShipped(ctx context.Context, e order.ShippedEvent) error {
	return b.publish(ctx, integration.NewOrderShipped(e.OrderID().Google(), e.OccurredAt(), e.TrackingNumber(), b.now()))
}

func (b *OrderEventsBridge) onCompleted(ctx context.Context, e order.CompletedEvent) error {
	return b.publish(ctx, integration.NewOrderCompleted(e.OrderID().Google(), e.OccurredAt(), b.now()))
}

func (b *OrderEventsBridge) onCancelled(ctx context.Context, e order.CancelledEvent) error {
	return b.publish(ctx, integration.NewOrderCancelled(e.OrderID().Google(), e.OccurredAt(), e.Reason(), b.now()))
}

func (b *OrderEventsBridge) publish(ctx context.Context, event integration.Event) error {
	if err := b.publisher.Publish(ctx, event); err != nil {
		b.logger.ErrorContext(ctx, "failed to publish integration event",
			slog.String("type", event.TypeTag()),
			slog.String("event_id", event.EventID().String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("publish %s: %w", event.TypeTag(), err)
	}

	b.logger.InfoContext(ctx, "integration event published",
		slog.String("type", event.TypeTag()),
		slog.String("event_id", event.EventID().String()))
	return nil
}
