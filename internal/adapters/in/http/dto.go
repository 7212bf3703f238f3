package http

import (
	"time"

	"orders/internal/core/application/usecases/queries"

	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ProductItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type CreateOrderRequest struct {
	CustomerID   string        `json:"customerId"`
	ProductItems []ProductItem `json:"productItems"`
}

type CreateOrderResponse struct {
	ID string `json:"id"`
}

type ShipOrderRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// TransitionResponse reports the outcome of a transition that left the order
// in the requested state: "Applied" or "Unchanged".
type TransitionResponse struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

type Order struct {
	ID                 string          `json:"id"`
	CustomerID         string          `json:"customerId"`
	OrderDate          time.Time       `json:"orderDate"`
	Status             string          `json:"status"`
	Final              bool            `json:"final"`
	TrackingNumber     string          `json:"trackingNumber,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Items              []ProductItem   `json:"items"`
}

func toOrder(view queries.GetOrderByIDQueryResponse) Order {
	items := make([]ProductItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, ProductItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return Order{
		ID:                 view.ID.String(),
		CustomerID:         view.CustomerID,
		OrderDate:          view.OrderDate,
		Status:             view.Status,
		Final:              view.Final,
		TrackingNumber:     view.TrackingNumber,
		CancellationReason: view.CancellationReason,
		TotalAmount:        view.TotalAmount,
		Items:              items,
	}
}
