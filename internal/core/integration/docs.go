// Package integration defines the messages the order service exchanges with
// other services: one integration event per order lifecycle transition, the
// type tags that identify them on the wire and the JSON codec both the
// publisher and the consumer use.
//
// Payloads are camelCase JSON. Every event carries its own id and occurredOn
// next to the event specific fields; required fields are enforced on decode
// with go-playground/validator, so a consumer never sees a half-filled event.
package integration
