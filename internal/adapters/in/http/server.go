// Package http exposes the order use cases over a JSON API built on echo.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Use case handlers the server depends on.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (kernel.UUID, error)
	}

	ProcessOrderHandler interface {
		Handle(ctx context.Context, cmd commands.ProcessOrderCommand) (commands.Result, error)
	}

	ShipOrderHandler interface {
		Handle(ctx context.Context, cmd commands.ShipOrderCommand) (commands.Result, error)
	}

	CompleteOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CompleteOrderCommand) (commands.Result, error)
	}

	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) (commands.Result, error)
	}

	GetOrderByIDHandler interface {
		Handle(ctx context.Context, query queries.GetOrderByIDQuery) (queries.GetOrderByIDQueryResponse, error)
	}
)

// Handlers groups the use cases served by Server.
type Handlers struct {
	CreateOrder   CreateOrderHandler
	ProcessOrder  ProcessOrderHandler
	ShipOrder     ShipOrderHandler
	CompleteOrder CompleteOrderHandler
	CancelOrder   CancelOrderHandler
	GetOrderByID  GetOrderByIDHandler
}

// Server coordinates between HTTP requests and the application use cases.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With("component", "http-server"),
	}
}

// NewEcho builds the echo instance with middleware and every route registered.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.InfoContext(c.Request().Context(), "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	s.Register(e)
	return e
}

// Register adds the API routes to e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/orders")
	api.POST("", s.CreateOrder)
	api.GET("/:id", s.GetOrder)
	api.PUT("/:id/process", s.ProcessOrder)
	api.PUT("/:id/ship", s.ShipOrder)
	api.PUT("/:id/complete", s.CompleteOrder)
	api.PUT("/:id/cancel", s.CancelOrder)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}
