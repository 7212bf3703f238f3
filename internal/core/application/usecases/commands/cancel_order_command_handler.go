package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
)

// CancelOrderCommandHandler cancels pending and processing orders.
//
// Cancelling an already cancelled order returns Unchanged: nothing is stored,
// the original reason is kept and no second OrderCancelled event is published.
type CancelOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, events DomainEventHandler) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		transitioner: newOrderTransitioner(uowFactory, events),
	}
}

// Handle returns Applied, Unchanged, NotFound or NotAllowed. An error wrapping
// ErrEventPublishFailed accompanies Applied when only the event failed.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	return h.transitioner.apply(ctx, cmd.OrderID(), func(o *order.Order, at time.Time) order.TransitionResult {
		return o.Cancel(cmd.Reason(), at)
	})
}
