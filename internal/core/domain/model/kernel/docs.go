// Package kernel holds the value objects shared by every aggregate of the
// order service. Today that is UUID, the identifier used for orders, line
// items and integration events.
package kernel
