package commands

import (
	"context"
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// CreateOrderCommandHandler places new orders.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, bridge)
//	orderID, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrEventPublishFailed):
//	    // the order exists, only the OrderCreated message is missing
//	case err != nil:
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	events     DomainEventHandler
	now        func() time.Time
}

func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory, events DomainEventHandler) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		events:     events,
		now:        time.Now,
	}
}

// Handle builds the order, stores it, commits, and then raises the order's
// CreatedEvent. Validation errors are returned before a transaction is opened.
// If only raising the event fails, the id of the stored order is returned
// together with an error wrapping ErrEventPublishFailed.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	aggregate, err := h.newOrder(cmd)
	if err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return aggregate.ID(), raise(ctx, h.events, aggregate.CreatedEvent())
}

func (h CreateOrderCommandHandler) newOrder(cmd CreateOrderCommand) (*order.Order, error) {
	requested := cmd.Items()
	items := make([]order.LineItem, 0, len(requested))

	var itemErrs []error
	for _, item := range requested {
		lineItem, err := order.NewLineItem(kernel.NewUUID(), item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			itemErrs = append(itemErrs, err)
			continue
		}
		items = append(items, lineItem)
	}
	if err := errors.Join(itemErrs...); err != nil {
		return nil, err
	}

	return order.NewOrder(kernel.NewUUID(), cmd.CustomerID(), items, h.now())
}
