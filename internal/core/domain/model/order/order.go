package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Outcome classifies the result of a transition attempt.
type Outcome int

const (
	// Applied means the status changed and an event was raised.
	Applied Outcome = iota + 1

	// Unchanged means the request was already satisfied; nothing changed and
	// no event was raised. Only Cancel on a cancelled order produces it.
	Unchanged

	// Rejected means the transition is not allowed from the current status.
	// The order was left untouched.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "Applied"
	case Unchanged:
		return "Unchanged"
	case Rejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// TransitionResult is returned by every Order mutator. Applied results carry
// the raised event, Rejected results carry an error wrapping
// ErrTransitionIsNotAllowed.
type TransitionResult struct {
	outcome Outcome
	event   Event
	err     error
}

func (r TransitionResult) Outcome() Outcome {
	return r.outcome
}

// Event returns the raised event, nil unless the outcome is Applied.
func (r TransitionResult) Event() Event {
	return r.event
}

// Err returns the rejection reason, nil unless the outcome is Rejected.
func (r TransitionResult) Err() error {
	return r.err
}

func applied(event Event) TransitionResult {
	return TransitionResult{outcome: Applied, event: event}
}

func rejected(err error) TransitionResult {
	return TransitionResult{outcome: Rejected, err: err}
}

// Order is the aggregate root that tracks a customer order from placement to
// delivery or cancellation.
//
// Order follows these invariants:
//   - Must have a valid unique identifier
//   - Must belong to a customer (non-empty customer ID)
//   - Must contain at least one valid line item; the items never change after creation
//   - TotalAmount is always the sum of the item amounts and is never stored
//   - Status only changes through Process, Ship, Complete and Cancel
//   - Tracking number is only ever set on Ship, cancellation reason only on Cancel
//
// version is the persistence version used for optimistic concurrency; the
// aggregate only carries it between the repository's Get and Update.
type Order struct {
	id                 kernel.UUID
	customerID         string
	createdAt          time.Time
	items              []LineItem
	status             Status
	trackingNumber     string
	cancellationReason string
	version            int

	isConstructed bool
}

// NewOrder places a new order in Pending status.
//
// Parameters:
//   - id: unique identifier for the order (must be valid UUID)
//   - customerID: the customer placing the order (must not be empty)
//   - items: at least one line item built with NewLineItem
//   - createdAt: placement time, stored in UTC (must not be zero)
//
// Returns:
//   - *Order: the placed order
//   - error: every failed rule joined with errors.Join
//
// Example:
//
//	item, _ := order.NewLineItem(kernel.NewUUID(), "sku-42", 2, decimal.NewFromInt(10))
//	o, err := order.NewOrder(kernel.NewUUID(), "customer-7", []order.LineItem{item}, time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
//	event := o.CreatedEvent()
func NewOrder(id kernel.UUID, customerID string, items []LineItem, createdAt time.Time) (*Order, error) {
	order := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setCustomerID(customerID),
		order.setItems(items),
		order.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder rebuilds an order from storage. It validates the same
// invariants as NewOrder plus the persisted status, and keeps the stored
// version for the next optimistic update.
func RestoreOrder(
	id kernel.UUID,
	customerID string,
	items []LineItem,
	createdAt time.Time,
	status Status,
	trackingNumber string,
	cancellationReason string,
	version int,
) (*Order, error) {
	order := &Order{
		trackingNumber:     trackingNumber,
		cancellationReason: cancellationReason,
		isConstructed:      true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setCustomerID(customerID),
		order.setItems(items),
		order.setCreatedAt(createdAt),
		order.setStatus(status),
		order.setVersion(version),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate ensures the Order instance was properly constructed through NewOrder
// or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() string {
	return o.customerID
}

// CreatedAt returns the placement time in UTC.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []LineItem {
	return slices.Clone(o.items)
}

func (o *Order) Status() Status {
	return o.status
}

// TrackingNumber is empty until the order is shipped with one.
func (o *Order) TrackingNumber() string {
	return o.trackingNumber
}

// CancellationReason is empty unless the order was cancelled with a reason.
func (o *Order) CancellationReason() string {
	return o.cancellationReason
}

func (o *Order) Version() int {
	return o.version
}

// TotalAmount sums quantity × unit price over all items.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.Amount())
	}
	return total
}

// CreatedEvent describes the placement of the order. The command that placed
// the order raises it after the order has been stored.
func (o *Order) CreatedEvent() CreatedEvent {
	return CreatedEvent{
		eventBase:   eventBase{orderID: o.id, occurredAt: o.createdAt},
		customerID:  o.customerID,
		items:       o.Items(),
		totalAmount: o.TotalAmount(),
	}
}

// Process moves a Pending order to Processing.
//
// Returns:
//   - Applied with a ProcessedEvent stamped with at
//   - Rejected for any other current status
func (o *Order) Process(at time.Time) TransitionResult {
	next, err := o.status.Process()
	if err != nil {
		return rejected(err)
	}

	o.status = next
	return applied(ProcessedEvent{eventBase: eventBase{orderID: o.id, occurredAt: at.UTC()}})
}

// Ship moves a Processing order to Shipped. trackingNumber is optional; an
// empty value leaves the order without one.
//
// Returns:
//   - Applied with a ShippedEvent stamped with at
//   - Rejected for any other current status
func (o *Order) Ship(trackingNumber string, at time.Time) TransitionResult {
	next, err := o.status.Ship()
	if err != nil {
		return rejected(err)
	}

	o.status = next
	o.trackingNumber = trackingNumber
	return applied(ShippedEvent{
		eventBase:      eventBase{orderID: o.id, occurredAt: at.UTC()},
		trackingNumber: trackingNumber,
	})
}

// Complete moves a Shipped order to Completed.
//
// Returns:
//   - Applied with a CompletedEvent stamped with at
//   - Rejected for any other current status
func (o *Order) Complete(at time.Time) TransitionResult {
	next, err := o.status.Complete()
	if err != nil {
		return rejected(err)
	}

	o.status = next
	return applied(CompletedEvent{eventBase: eventBase{orderID: o.id, occurredAt: at.UTC()}})
}

// Cancel moves a Pending or Processing order to Cancelled. reason is optional.
//
// Returns:
//   - Applied with a CancelledEvent stamped with at
//   - Unchanged if the order is already cancelled; the stored reason is kept
//     and no event is raised
//   - Rejected for Shipped and Completed orders
func (o *Order) Cancel(reason string, at time.Time) TransitionResult {
	if o.status == Cancelled {
		return TransitionResult{outcome: Unchanged}
	}

	next, err := o.status.Cancel()
	if err != nil {
		return rejected(err)
	}

	o.status = next
	o.cancellationReason = reason
	return applied(CancelledEvent{
		eventBase: eventBase{orderID: o.id, occurredAt: at.UTC()},
		reason:    reason,
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID string) error {
	if customerID == "" {
		return errs.NewValueIsRequiredError("customerId")
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setItems(items []LineItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredErrorWithCause("items", errors.New("order must have at least one item"))
	}

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}

	o.items = slices.Clone(items)
	return nil
}

func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = createdAt.UTC()
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setVersion(version int) error {
	if version < 0 {
		return errs.NewValueIsInvalidErrorWithCause("version is invalid", fmt.Errorf("%d is negative", version))
	}
	o.version = version
	return nil
}
