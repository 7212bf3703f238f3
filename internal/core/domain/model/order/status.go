package order

import (
	"errors"
	"fmt"

	"orders/internal/pkg/errs"
)

// ErrTransitionIsNotAllowed is wrapped by every rejected status transition.
var ErrTransitionIsNotAllowed = errors.New("transition is not allowed")

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Processing ──> Shipped ──> Completed
//	   │            │
//	   └────────────┴──> Cancelled
//
// Completed and Cancelled are final. Cancelling an already cancelled order is
// handled by Order.Cancel as a no-op, the Status itself only knows real moves.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status of a freshly placed order.
	Pending

	// Processing means the order has been accepted for fulfilment.
	Processing

	// Shipped means the order left the warehouse, optionally with a tracking number.
	Shipped

	// Completed is a final state: the order was delivered.
	Completed

	// Cancelled is a final state: the order was withdrawn before shipping.
	Cancelled
)

var statusNames = map[Status]string{
	Pending:    "Pending",
	Processing: "Processing",
	Shipped:    "Shipped",
	Completed:  "Completed",
	Cancelled:  "Cancelled",
}

// Validate checks that s is one of the lifecycle statuses.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the status name, "Unknown" for invalid values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsFinal reports whether no further transition can leave s.
func (s Status) IsFinal() bool {
	return s == Completed || s == Cancelled
}

// Process transitions Pending -> Processing.
//
// Returns:
//   - (Processing, nil) on a valid transition
//   - (Unknown, error wrapping ErrTransitionIsNotAllowed) otherwise
func (s Status) Process() (Status, error) {
	if s != Pending {
		return Unknown, s.notAllowed("process")
	}
	return Processing, nil
}

// Ship transitions Processing -> Shipped.
//
// Returns:
//   - (Shipped, nil) on a valid transition
//   - (Unknown, error wrapping ErrTransitionIsNotAllowed) otherwise
func (s Status) Ship() (Status, error) {
	if s != Processing {
		return Unknown, s.notAllowed("ship")
	}
	return Shipped, nil
}

// Complete transitions Shipped -> Completed.
//
// Returns:
//   - (Completed, nil) on a valid transition
//   - (Unknown, error wrapping ErrTransitionIsNotAllowed) otherwise
func (s Status) Complete() (Status, error) {
	if s != Shipped {
		return Unknown, s.notAllowed("complete")
	}
	return Completed, nil
}

// Cancel transitions Pending or Processing -> Cancelled.
// Shipped and Completed orders can not be cancelled; neither can an already
// Cancelled one from the point of view of the status machine.
//
// Returns:
//   - (Cancelled, nil) on a valid transition
//   - (Unknown, error wrapping ErrTransitionIsNotAllowed) otherwise
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Processing {
		return Unknown, s.notAllowed("cancel")
	}
	return Cancelled, nil
}

func (s Status) notAllowed(action string) error {
	return fmt.Errorf("%w: cannot %s an order in %s status", ErrTransitionIsNotAllowed, action, s)
}
