package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/order"
)

// ShipOrderCommandHandler moves processing orders to Shipped and records the
// tracking number.
type ShipOrderCommandHandler struct {
	transitioner orderTransitioner
}

func NewShipOrderCommandHandler(uowFactory OrderUoWFactory, events DomainEventHandler) ShipOrderCommandHandler {
	return ShipOrderCommandHandler{
		transitioner: newOrderTransitioner(uowFactory, events),
	}
}

// Handle returns Applied, NotFound or NotAllowed. An error wrapping
// ErrEventPublishFailed accompanies Applied when only the event failed.
func (h ShipOrderCommandHandler) Handle(ctx context.Context, cmd ShipOrderCommand) (Result, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	return h.transitioner.apply(ctx, cmd.OrderID(), func(o *order.Order, at time.Time) order.TransitionResult {
		return o.Ship(cmd.TrackingNumber(), at)
	})
}
