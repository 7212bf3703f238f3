// Package order provides the Order aggregate of the order service: its line
// items, its lifecycle state machine and the domain events raised when the
// lifecycle moves.
//
// The package includes:
//   - Order: the aggregate root; identity, customer, items, status and the transition methods
//   - LineItem: a product line with quantity and unit price
//   - Status: the lifecycle state machine
//   - Event: the closed set of domain events (CreatedEvent, ProcessedEvent, ShippedEvent,
//     CompletedEvent, CancelledEvent)
//
// Key business rules:
//   - Orders must have a customer and at least one item; quantities are positive, prices non-negative
//   - Status follows Pending -> Processing -> Shipped -> Completed, with Cancel allowed
//     from Pending and Processing
//   - Every mutator returns a TransitionResult: Applied (with event), Unchanged or Rejected
//   - Cancelling a cancelled order succeeds without raising an event
//   - A rejected transition never modifies the order
package order
