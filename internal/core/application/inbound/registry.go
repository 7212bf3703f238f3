// Package inbound consumes integration events from the transport: a registry
// maps type tags to typed handlers, and a dispatcher receives messages one at
// a time per session, decodes them and settles each delivery.
package inbound

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"orders/internal/core/integration"
)

// ErrHandlerAlreadyRegistered is returned when a second handler is registered
// for the same type tag.
var ErrHandlerAlreadyRegistered = errors.New("handler already registered for event type")

// HandlerFunc handles one decoded integration event of type T.
type HandlerFunc[T integration.Event] func(ctx context.Context, event T) error

// Route is the decoder and handler pair bound to one type tag.
type Route struct {
	typeTag string
	decode  func(body []byte) (integration.Event, error)
	handle  func(ctx context.Context, event integration.Event) error
}

func (r Route) TypeTag() string {
	return r.typeTag
}

// Decode deserializes body into the route's event type. Failures wrap
// integration.ErrMalformedPayload.
func (r Route) Decode(body []byte) (integration.Event, error) {
	return r.decode(body)
}

// Handle invokes the typed handler.
func (r Route) Handle(ctx context.Context, event integration.Event) error {
	return r.handle(ctx, event)
}

// Registry maps type tags to routes. It is filled once at startup and only
// read afterwards; concurrent readers are safe.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]Route
}

func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]Route)}
}

// Register binds the type tag of T to handler.
//
// Example:
//
//	registry := inbound.NewRegistry()
//	err := inbound.Register(registry, func(ctx context.Context, e integration.OrderShipped) error {
//	    return notifyCustomer(ctx, e.OrderID, e.TrackingNumber)
//	})
func Register[T integration.Event](r *Registry, handler HandlerFunc[T]) error {
	if handler == nil {
		return errors.New("handler is nil")
	}

	tag := integration.TypeTagOf[T]()
	route := Route{
		typeTag: tag,
		decode: func(body []byte) (integration.Event, error) {
			event, err := integration.Decode[T](body)
			if err != nil {
				return nil, err
			}
			return event, nil
		},
		handle: func(ctx context.Context, event integration.Event) error {
			typed, ok := event.(T)
			if !ok {
				return fmt.Errorf("route %s received %T", tag, event)
			}
			return handler(ctx, typed)
		},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[tag]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, tag)
	}
	r.routes[tag] = route
	return nil
}

// Resolve returns the route for typeTag, or false if none is registered.
func (r *Registry) Resolve(typeTag string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[typeTag]
	return route, ok
}

// TypeTags lists the registered tags in sorted order.
func (r *Registry) TypeTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.routes))
	for tag := range r.routes {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
