package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
)

// CompleteOrderCommandHandler moves shipped orders to Completed.
type CompleteOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewCompleteOrderCommandHandler(uowFactory OrderUoWFactory, events DomainEventHandler) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		transitioner: newOrderTransitioner(uowFactory, events),
	}
}

func (h CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	return h.transitioner.apply(ctx, cmd.OrderID(), func(o *order.Order, at time.Time) order.TransitionResult {
		return o.Complete(at)
	})
}
