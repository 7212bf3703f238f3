package inbound

import (
	"context"
	"errors"
	"log/slog"

	"orders/internal/core/integration"
)

// NotificationHandlers notify about order lifecycle changes. Delivering the
// notification is logging it; a mail or push gateway would hook in here.
type NotificationHandlers struct {
	logger *slog.Logger
}

func NewNotificationHandlers(logger *slog.Logger) *NotificationHandlers {
	return &NotificationHandlers{logger: logger.With("component", "notifications")}
}

// RegisterAll binds every handler to its event type.
func (h *NotificationHandlers) RegisterAll(registry *Registry) error {
	return errors.Join(
		Register(registry, h.OrderCreated),
		Register(registry, h.OrderProcessed),
		Register(registry, h.OrderShipped),
		Register(registry, h.OrderCompleted),
		Register(registry, h.OrderCancelled),
	)
}

func (h *NotificationHandlers) OrderCreated(ctx context.Context, e integration.OrderCreated) error {
	h.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", e.OrderID.String()),
		slog.String("customer_id", e.CustomerID),
		slog.Int("items", len(e.Items)),
		slog.String("total_amount", e.TotalAmount.String()))
	return nil
}

func (h *NotificationHandlers) OrderProcessed(ctx context.Context, e integration.OrderProcessed) error {
	h.logger.InfoContext(ctx, "order is being processed",
		slog.String("order_id", e.OrderID.String()),
		slog.Time("processed_date", e.ProcessedDate))
	return nil
}

func (h *NotificationHandlers) OrderShipped(ctx context.Context, e integration.OrderShipped) error {
	tracking := e.TrackingNumber
	if tracking == "" {
		tracking = "N/A"
	}
	h.logger.InfoContext(ctx, "order shipped",
		slog.String("order_id", e.OrderID.String()),
		slog.Time("shipped_date", e.ShippedDate),
		slog.String("tracking_number", tracking))
	return nil
}

func (h *NotificationHandlers) OrderCompleted(ctx context.Context, e integration.OrderCompleted) error {
	h.logger.InfoContext(ctx, "order completed",
		slog.String("order_id", e.OrderID.String()),
		slog.Time("completed_date", e.CompletedDate))
	return nil
}

func (h *NotificationHandlers) OrderCancelled(ctx context.Context, e integration.OrderCancelled) error {
	reason := e.Reason
	if reason == "" {
		reason = "N/A"
	}
	h.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", e.OrderID.String()),
		slog.Time("cancelled_date", e.CancelledDate),
		slog.String("reason", reason))
	return nil
}
