package commands_test

import (
	"errors"
	"testing"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateOrderCommand(t *testing.T) commands.CreateOrderCommand {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand("customer-1", []commands.OrderItem{
		{ProductID: "sku-1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		{ProductID: "sku-2", Quantity: 1, UnitPrice: decimal.RequireFromString("5.50")},
	})
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd := newCreateOrderCommand(t)

	var stored *order.Order
	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	events := new(MockDomainEventHandler)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*order.Order) }).
			Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		events.On("Handle", ctx, mock.AnythingOfType("order.CreatedEvent")).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, events)
	orderID, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, orderID.IsEqual(stored.ID()))
	assert.Equal(t, order.Pending, stored.Status())
	assert.True(t, decimal.RequireFromString("25.50").Equal(stored.TotalAmount()))

	event := events.Calls[0].Arguments.Get(1).(order.CreatedEvent)
	assert.True(t, event.OrderID().IsEqual(orderID))
	assert.True(t, stored.TotalAmount().Equal(event.TotalAmount()))

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	factory := new(MockOrderUoWFactory)
	events := new(MockDomainEventHandler)
	h := commands.NewCreateOrderCommandHandler(factory, events)

	t.Run("command not constructed", func(t *testing.T) {
		_, err := h.Handle(ctx, commands.CreateOrderCommand{})

		require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
	})

	t.Run("invalid items never reach the repository", func(t *testing.T) {
		cmd, err := commands.NewCreateOrderCommand("customer-1", []commands.OrderItem{
			{ProductID: "", Quantity: 0, UnitPrice: decimal.NewFromInt(-1)},
			{ProductID: "sku-2", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)

		orderID, err := h.Handle(ctx, cmd)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, kernel.UUID{}, orderID)
	})

	factory.AssertNotCalled(t, "Create")
	events.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	expectedError := errors.New("begin error")

	uow := new(MockOrderUoW)
	factory := new(MockOrderUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(expectedError).Once(),
	)

	h := commands.NewCreateOrderCommandHandler(factory, new(MockDomainEventHandler))
	_, err := h.Handle(ctx, newCreateOrderCommand(t))

	require.ErrorIs(t, err, expectedError)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	expectedError := errors.New("add error")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	events := new(MockDomainEventHandler)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(expectedError).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, events)
	_, err := h.Handle(ctx, newCreateOrderCommand(t))

	require.ErrorIs(t, err, expectedError)
	uow.AssertNotCalled(t, "Commit", ctx)
	events.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	expectedError := errors.New("commit error")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	events := new(MockDomainEventHandler)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(expectedError).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, events)
	_, err := h.Handle(ctx, newCreateOrderCommand(t))

	require.ErrorIs(t, err, expectedError)
	events.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestCreateOrderCommandHandler_Handle_PublishError(t *testing.T) {
	ctx := t.Context()
	publishError := errors.New("broker unavailable")

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	events := new(MockDomainEventHandler)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		events.On("Handle", ctx, mock.AnythingOfType("order.CreatedEvent")).Return(publishError).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateOrderCommandHandler(factory, events)
	orderID, err := h.Handle(ctx, newCreateOrderCommand(t))

	require.ErrorIs(t, err, commands.ErrEventPublishFailed)
	require.ErrorIs(t, err, publishError)
	require.NoError(t, orderID.Validate(), "the stored order id is still returned")
	uow.AssertExpectations(t)
	events.AssertExpectations(t)
}
