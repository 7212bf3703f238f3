package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid request body")
	}

	items := make([]commands.OrderItem, 0, len(req.ProductItems))
	for _, item := range req.ProductItems {
		items = append(items, commands.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(req.CustomerID, items)
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid order data: "+err.Error())
	}

	orderID, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if errors.Is(err, commands.ErrEventPublishFailed) {
			s.logger.ErrorContext(ctx.Request().Context(), "order created without event",
				slog.String("order_id", orderID.String()), slog.Any("error", err))
			return ctx.JSON(http.StatusBadGateway, CreateOrderResponse{ID: orderID.String()})
		}
		return s.failWith(ctx, err, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{ID: orderID.String()})
}

// GetOrder handles GET /api/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.ParseUUID(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid order id")
	}

	query, err := queries.NewGetOrderByIDQuery(orderID)
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid order id")
	}

	view, err := s.handlers.GetOrderByID.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.failWith(ctx, err, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, toOrder(view))
}

// ProcessOrder handles PUT /api/orders/:id/process.
func (s *Server) ProcessOrder(ctx echo.Context) error {
	return s.transition(ctx, func(c context.Context, orderID kernel.UUID) (commands.Result, error) {
		cmd, err := commands.NewProcessOrderCommand(orderID)
		if err != nil {
			return 0, err
		}
		return s.handlers.ProcessOrder.Handle(c, cmd)
	})
}

// ShipOrder handles PUT /api/orders/:id/ship with an optional tracking number.
func (s *Server) ShipOrder(ctx echo.Context) error {
	var req ShipOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid request body")
	}

	return s.transition(ctx, func(c context.Context, orderID kernel.UUID) (commands.Result, error) {
		cmd, err := commands.NewShipOrderCommand(orderID, req.TrackingNumber)
		if err != nil {
			return 0, err
		}
		return s.handlers.ShipOrder.Handle(c, cmd)
	})
}

// CompleteOrder handles PUT /api/orders/:id/complete.
func (s *Server) CompleteOrder(ctx echo.Context) error {
	return s.transition(ctx, func(c context.Context, orderID kernel.UUID) (commands.Result, error) {
		cmd, err := commands.NewCompleteOrderCommand(orderID)
		if err != nil {
			return 0, err
		}
		return s.handlers.CompleteOrder.Handle(c, cmd)
	})
}

// CancelOrder handles PUT /api/orders/:id/cancel with an optional reason.
func (s *Server) CancelOrder(ctx echo.Context) error {
	var req CancelOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid request body")
	}

	return s.transition(ctx, func(c context.Context, orderID kernel.UUID) (commands.Result, error) {
		cmd, err := commands.NewCancelOrderCommand(orderID, req.Reason)
		if err != nil {
			return 0, err
		}
		return s.handlers.CancelOrder.Handle(c, cmd)
	})
}

type transitionFunc func(ctx context.Context, orderID kernel.UUID) (commands.Result, error)

// transition maps a command Result onto the response status:
// Applied and Unchanged are 200, NotFound is 404, NotAllowed is 409.
func (s *Server) transition(ctx echo.Context, run transitionFunc) error {
	orderID, err := kernel.ParseUUID(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, http.StatusBadRequest, "Invalid order id")
	}

	result, err := run(ctx.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, commands.ErrEventPublishFailed) {
			s.logger.ErrorContext(ctx.Request().Context(), "order transition saved without event",
				slog.String("order_id", orderID.String()), slog.Any("error", err))
			return s.fail(ctx, http.StatusBadGateway, "Order was updated but its event could not be published")
		}
		return s.failWith(ctx, err, "Failed to update order")
	}

	switch result {
	case commands.Applied, commands.Unchanged:
		return ctx.JSON(http.StatusOK, TransitionResponse{ID: orderID.String(), Result: result.String()})
	case commands.NotFound:
		return s.fail(ctx, http.StatusNotFound, "Order not found")
	case commands.NotAllowed:
		return s.fail(ctx, http.StatusConflict, "Transition is not allowed in the current order status")
	default:
		return s.fail(ctx, http.StatusInternalServerError, "Unexpected command result "+result.String())
	}
}

// failWith picks the status for a use case error.
func (s *Server) failWith(ctx echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return s.fail(ctx, http.StatusNotFound, "Order not found")
	case errors.Is(err, errs.ErrConcurrencyConflict):
		return s.fail(ctx, http.StatusConflict, "Order was modified concurrently, retry the request")
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return s.fail(ctx, http.StatusBadRequest, err.Error())
	}

	s.logger.ErrorContext(ctx.Request().Context(), message,
		slog.String("path", ctx.Path()), slog.Any("error", err))
	return s.fail(ctx, http.StatusInternalServerError, message)
}

func (s *Server) fail(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, Error{Code: code, Message: message})
}
