package order

import (
	"slices"
	"time"

	"orders/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// Event is a fact raised by the Order aggregate when a transition is applied.
// The set of implementations is closed: CreatedEvent, ProcessedEvent,
// ShippedEvent, CompletedEvent and CancelledEvent. Consumers switch over the
// concrete type.
type Event interface {
	OrderID() kernel.UUID
	OccurredAt() time.Time

	isOrderEvent()
}

type eventBase struct {
	orderID    kernel.UUID
	occurredAt time.Time
}

func (e eventBase) OrderID() kernel.UUID {
	return e.orderID
}

func (e eventBase) OccurredAt() time.Time {
	return e.occurredAt
}

func (eventBase) isOrderEvent() {}

// CreatedEvent is raised once, when the order is placed.
type CreatedEvent struct {
	eventBase

	customerID  string
	items       []LineItem
	totalAmount decimal.Decimal
}

func (e CreatedEvent) CustomerID() string {
	return e.customerID
}

func (e CreatedEvent) Items() []LineItem {
	return slices.Clone(e.items)
}

func (e CreatedEvent) TotalAmount() decimal.Decimal {
	return e.totalAmount
}

// ProcessedEvent is raised on Pending -> Processing.
type ProcessedEvent struct {
	eventBase
}

// ShippedEvent is raised on Processing -> Shipped.
type ShippedEvent struct {
	eventBase

	trackingNumber string
}

// TrackingNumber returns the carrier reference, empty if none was given.
func (e ShippedEvent) TrackingNumber() string {
	return e.trackingNumber
}

// CompletedEvent is raised on Shipped -> Completed.
type CompletedEvent struct {
	eventBase
}

// CancelledEvent is raised on Pending/Processing -> Cancelled.
type CancelledEvent struct {
	eventBase

	reason string
}

// Reason returns the cancellation reason, empty if none was given.
func (e CancelledEvent) Reason() string {
	return e.reason
}
