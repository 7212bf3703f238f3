package integration

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type tags shared by the publisher and the inbound handler registry.
// They are case sensitive.
const (
	TypeOrderCreated   = "OrderCreated"
	TypeOrderProcessed = "OrderProcessed"
	TypeOrderShipped   = "OrderShipped"
	TypeOrderCompleted = "OrderCompleted"
	TypeOrderCancelled = "OrderCancelled"
)

// Event is implemented by OrderCreated, OrderProcessed, OrderShipped,
// OrderCompleted and OrderCancelled only.
type Event interface {
	EventID() uuid.UUID
	OccurredAt() time.Time
	TypeTag() string

	isIntegrationEvent()
}

// Header is embedded into every event; its fields are flattened into the payload.
type Header struct {
	ID         uuid.UUID `json:"id" validate:"required"`
	OccurredOn time.Time `json:"occurredOn" validate:"required"`
}

// NewHeader assigns a fresh id and stamps now in UTC.
func NewHeader(now time.Time) Header {
	return Header{ID: uuid.New(), OccurredOn: now.UTC()}
}

func (h Header) EventID() uuid.UUID {
	return h.ID
}

func (h Header) OccurredAt() time.Time {
	return h.OccurredOn
}

func (Header) isIntegrationEvent() {}

// OrderItem is a line of an OrderCreated payload.
type OrderItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// UnmarshalJSON requires unitPrice to be present and not negative; a zero
// decimal cannot tell a free item from a missing price.
func (i *OrderItem) UnmarshalJSON(data []byte) error {
	type plain OrderItem
	var wire struct {
		plain
		UnitPrice *decimal.Decimal `json:"unitPrice"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	price, err := requiredAmount("unitPrice", wire.UnitPrice)
	if err != nil {
		return err
	}

	*i = OrderItem(wire.plain)
	i.UnitPrice = price
	return nil
}

type OrderCreated struct {
	Header

	OrderID     uuid.UUID       `json:"orderId" validate:"required"`
	CustomerID  string          `json:"customerId" validate:"required"`
	Items       []OrderItem     `json:"items" validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func NewOrderCreated(
	orderID uuid.UUID,
	customerID string,
	items []OrderItem,
	totalAmount decimal.Decimal,
	now time.Time,
) OrderCreated {
	return OrderCreated{
		Header:      NewHeader(now),
		OrderID:     orderID,
		CustomerID:  customerID,
		Items:       items,
		TotalAmount: totalAmount,
	}
}

func (OrderCreated) TypeTag() string { return TypeOrderCreated }

// UnmarshalJSON requires totalAmount to be present and not negative.
func (e *OrderCreated) UnmarshalJSON(data []byte) error {
	type plain OrderCreated
	var wire struct {
		plain
		TotalAmount *decimal.Decimal `json:"totalAmount"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	total, err := requiredAmount("totalAmount", wire.TotalAmount)
	if err != nil {
		return err
	}

	*e = OrderCreated(wire.plain)
	e.TotalAmount = total
	return nil
}

func requiredAmount(name string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Decimal{}, errors.New(name + " is required")
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, errors.New(name + " cannot be negative")
	}
	return *amount, nil
}

type OrderProcessed struct {
	Header

	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	ProcessedDate time.Time `json:"processedDate" validate:"required"`
}

func NewOrderProcessed(orderID uuid.UUID, processedDate, now time.Time) OrderProcessed {
	return OrderProcessed{
		Header:        NewHeader(now),
		OrderID:       orderID,
		ProcessedDate: processedDate.UTC(),
	}
}

func (OrderProcessed) TypeTag() string { return TypeOrderProcessed }

type OrderShipped struct {
	Header

	OrderID        uuid.UUID `json:"orderId" validate:"required"`
	ShippedDate    time.Time `json:"shippedDate" validate:"required"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
}

func NewOrderShipped(orderID uuid.UUID, shippedDate time.Time, trackingNumber string, now time.Time) OrderShipped {
	return OrderShipped{
		Header:         NewHeader(now),
		OrderID:        orderID,
		ShippedDate:    shippedDate.UTC(),
		TrackingNumber: trackingNumber,
	}
}

func (OrderShipped) TypeTag() string { return TypeOrderShipped }

type OrderCompleted struct {
	Header

	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	CompletedDate time.Time `json:"completedDate" validate:"required"`
}

func NewOrderCompleted(orderID uuid.UUID, completedDate, now time.Time) OrderCompleted {
	return OrderCompleted{
		Header:        NewHeader(now),
		OrderID:       orderID,
		CompletedDate: completedDate.UTC(),
	}
}

func (OrderCompleted) TypeTag() string { return TypeOrderCompleted }

type OrderCancelled struct {
	Header

	OrderID       uuid.UUID `json:"orderId" validate:"required"`
	CancelledDate time.Time `json:"cancelledDate" validate:"required"`
	Reason        string    `json:"reason,omitempty"`
}

func NewOrderCancelled(orderID uuid.UUID, cancelledDate time.Time, reason string, now time.Time) OrderCancelled {
	return OrderCancelled{
		Header:        NewHeader(now),
		OrderID:       orderID,
		CancelledDate: cancelledDate.UTC(),
		Reason:        reason,
	}
}

func (OrderCancelled) TypeTag() string { return TypeOrderCancelled }
