package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
)

// transition applies one lifecycle move to a loaded order.
type transition func(o *order.Order, at time.Time) order.TransitionResult

// orderTransitioner runs the flow shared by Process, Ship, Complete and Cancel:
// load, transition, store, commit and then raise the event.
type orderTransitioner struct {
	uowFactory OrderUoWFactory
	events     DomainEventHandler
	now        func() time.Time
}

func newOrderTransitioner(uowFactory OrderUoWFactory, events DomainEventHandler) orderTransitioner {
	return orderTransitioner{
		uowFactory: uowFactory,
		events:     events,
		now:        time.Now,
	}
}

func (t orderTransitioner) apply(ctx context.Context, orderID kernel.UUID, move transition) (Result, error) {
	uow := t.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, orderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return NotFound, nil
	}
	if err != nil {
		return 0, err
	}

	result := move(aggregate, t.now())
	switch result.Outcome() {
	case order.Rejected:
		return NotAllowed, nil
	case order.Unchanged:
		return Unchanged, nil
	case order.Applied:
	default:
		return 0, fmt.Errorf("unexpected transition outcome %s", result.Outcome())
	}

	if err = orderRepo.Update(ctx, aggregate); err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return Applied, raise(ctx, t.events, result.Event())
}

// raise hands a committed event to the bridge. Failures never undo the commit.
func raise(ctx context.Context, events DomainEventHandler, event order.Event) error {
	if err := events.Handle(ctx, event); err != nil {
		return fmt.Errorf("%w: %w", ErrEventPublishFailed, err)
	}
	return nil
}
