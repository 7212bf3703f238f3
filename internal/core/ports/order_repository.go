package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a newly placed order together with its line items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the mutable state of an order (status, tracking number,
	// cancellation reason). It fails with errs.ErrConcurrencyConflict when the
	// stored version differs from aggregate.Version(), and with
	// errs.ErrObjectNotFound when the order does not exist.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with its items. A missing order is reported as
	// errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
