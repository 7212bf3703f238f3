package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
)

// ProcessOrderCommandHandler moves pending orders to Processing.
//
// Example:
//
//	handler := NewProcessOrderCommandHandler(uowFactory, bridge)
//	result, err := handler.Handle(ctx, cmd)
//	if err == nil && result == NotAllowed {
//	    // the order is no longer pending
//	}
type ProcessOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewProcessOrderCommandHandler(uowFactory OrderUoWFactory, events DomainEventHandler) ProcessOrderCommandHandler {
	return ProcessOrderCommandHandler{
		transitioner: newOrderTransitioner(uowFactory, events),
	}
}

// Handle returns Applied, NotFound or NotAllowed. An error wrapping
// ErrEventPublishFailed accompanies Applied when only the event failed.
func (h ProcessOrderCommandHandler) Handle(ctx context.Context, cmd ProcessOrderCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	return h.transitioner.apply(ctx, cmd.OrderID(), func(o *order.Order, at time.Time) order.TransitionResult {
		return o.Process(at)
	})
}
