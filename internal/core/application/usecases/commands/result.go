package commands

import (
	"errors"
)

// ErrEventPublishFailed is returned together with Applied when the new order
// state was committed but raising its domain event failed. The state change is
// not rolled back.
var ErrEventPublishFailed = errors.New("order state was saved but its event could not be published")

// Result is the business outcome of a transition command. Infrastructure
// failures are reported through the error return instead.
type Result int

const (
	// Applied means the order changed, was stored and its event was raised.
	Applied Result = iota + 1

	// Unchanged means the order was already in the requested state; nothing was
	// stored and no event was raised.
	Unchanged

	// NotFound means no order exists with the requested id.
	NotFound

	// NotAllowed means the order's current status does not allow the transition.
	NotAllowed
)

func (r Result) String() string {
	switch r {
	case Applied:
		return "Applied"
	case Unchanged:
		return "Unchanged"
	case NotFound:
		return "NotFound"
	case NotAllowed:
		return "NotAllowed"
	default:
		return "Unknown"
	}
}

// Succeeded reports whether the order ends up in the requested state.
func (r Result) Succeeded() bool {
	return r == Applied || r == Unchanged
}
