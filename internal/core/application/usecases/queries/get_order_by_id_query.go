package queries

import (
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderByIDQueryIsNotConstructed = errors.New(
		"GetOrderByIDQuery must be created via NewGetOrderByIDQuery constructor",
	)
)

// GetOrderByIDQuery reads one order with its items.
//
// Example:
//
//	query, err := NewGetOrderByIDQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	view, err := NewGetOrderByIDQueryHandler(db).Handle(ctx, query)
type GetOrderByIDQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderByIDQuery(orderID kernel.UUID) (GetOrderByIDQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderByIDQuery{}, err
	}
	return GetOrderByIDQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderByIDQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Validate ensures the query was created through the constructor.
func (q GetOrderByIDQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderByIDQueryIsNotConstructed)
}

// GetOrderByIDQueryResponse is the read model of an order. TotalAmount is the
// sum of the item amounts. Final is set once no transition can change the order.
type GetOrderByIDQueryResponse struct {
	ID                 kernel.UUID
	CustomerID         string
	OrderDate          time.Time
	Status             string
	Final              bool
	TrackingNumber     string
	CancellationReason string
	TotalAmount        decimal.Decimal
	Items              []OrderItemView
}

type OrderItemView struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}
